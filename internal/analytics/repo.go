package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
)

// Repository reads sold cars for rollup computations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to analytics queries.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListSold returns the garage's sold cars whose sale date falls inside the
// period, optionally narrowed to a single car.
func (r *Repository) ListSold(ctx context.Context, garageID uuid.UUID, from, to time.Time, carID *uuid.UUID) ([]models.Car, error) {
	q := r.db.WithContext(ctx).
		Where("garage_id = ?", garageID).
		Where("status = ?", enums.CarStatusSold).
		Where("sold_at >= ? AND sold_at < ?", from, to)
	if carID != nil {
		q = q.Where("id = ?", *carID)
	}
	var cars []models.Car
	if err := q.Order("sold_at ASC").Find(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}
