package cars

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
	"github.com/davidcalleja/garagebook-backend/pkg/money"
	"github.com/davidcalleja/garagebook-backend/pkg/pagination"
)

// Repository handles car and expense persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to car operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new car row.
func (r *Repository) Create(ctx context.Context, car *models.Car) error {
	if car == nil {
		return fmt.Errorf("car is required")
	}
	return r.db.WithContext(ctx).Create(car).Error
}

// FindByID loads a car by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Car, error) {
	var car models.Car
	if err := r.db.WithContext(ctx).First(&car, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &car, nil
}

// ListByGarage returns one page of the garage's cars, newest first. The
// returned cursor points at the next page, nil when this is the last one.
func (r *Repository) ListByGarage(ctx context.Context, garageID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Car, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(limit)
	query := r.db.WithContext(ctx).Where("garage_id = ?", garageID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var cars []models.Car
	err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&cars).Error
	if err != nil {
		return nil, nil, err
	}

	if len(cars) > normalized {
		cars = cars[:normalized]
		// The cursor marks the last row handed out; the next query's strict
		// `<` picks up right after it.
		last := cars[normalized-1]
		return cars, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return cars, nil, nil
}

// Update saves the provided car.
func (r *Repository) Update(ctx context.Context, car *models.Car) error {
	if car == nil {
		return fmt.Errorf("car is required")
	}
	return r.db.WithContext(ctx).Save(car).Error
}

// DeleteCascade removes the car together with its expense ledger.
func (r *Repository) DeleteCascade(ctx context.Context, carID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("car_id = ?", carID).Delete(&models.Expense{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Car{}, "id = ?", carID).Error
	})
}

// CountByGarage counts cars in the garage. Used by the garage delete guard.
func (r *Repository) CountByGarage(ctx context.Context, garageID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Car{}).
		Where("garage_id = ?", garageID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CreateExpense appends one ledger entry.
func (r *Repository) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense == nil {
		return fmt.Errorf("expense is required")
	}
	return r.db.WithContext(ctx).Create(expense).Error
}

// FindExpenseByID loads one ledger entry.
func (r *Repository) FindExpenseByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

// UpdateExpense saves the ledger entry.
func (r *Repository) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	if expense == nil {
		return fmt.Errorf("expense is required")
	}
	return r.db.WithContext(ctx).Save(expense).Error
}

// DeleteExpense removes one ledger entry.
func (r *Repository) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Expense{}, "id = ?", id).Error
}

// ListExpenses returns the car's ledger ordered by expense date.
func (r *Repository) ListExpenses(ctx context.Context, carID uuid.UUID) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).
		Where("car_id = ?", carID).
		Order("date ASC, created_at ASC").
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

// SumExpenses totals the car's ledger in cents.
func (r *Repository) SumExpenses(ctx context.Context, carID uuid.UUID) (money.Cents, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Where("car_id = ?", carID).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return money.Cents(total), nil
}

// SumExpensesByPayer totals the car's ledger split by who paid.
func (r *Repository) SumExpensesByPayer(ctx context.Context, carID uuid.UUID) (owner, partner money.Cents, err error) {
	type row struct {
		PaidBy enums.ExpensePayer
		Total  int64
	}
	var rows []row
	err = r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Where("car_id = ?", carID).
		Select("paid_by, COALESCE(SUM(amount_cents), 0) AS total").
		Group("paid_by").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	for _, r := range rows {
		switch r.PaidBy {
		case enums.ExpensePayerPartner:
			partner = money.Cents(r.Total)
		default:
			owner += money.Cents(r.Total)
		}
	}
	return owner, partner, nil
}

// SumExpensesByCar totals every ledger in the garage grouped by car, for
// list views that need per-car totals without N+1 queries.
func (r *Repository) SumExpensesByCar(ctx context.Context, garageID uuid.UUID) (map[uuid.UUID]money.Cents, error) {
	type row struct {
		CarID uuid.UUID
		Total int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Joins("JOIN cars ON cars.id = expenses.car_id").
		Where("cars.garage_id = ?", garageID).
		Select("expenses.car_id, COALESCE(SUM(expenses.amount_cents), 0) AS total").
		Group("expenses.car_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	totals := make(map[uuid.UUID]money.Cents, len(rows))
	for _, r := range rows {
		totals[r.CarID] = money.Cents(r.Total)
	}
	return totals, nil
}
