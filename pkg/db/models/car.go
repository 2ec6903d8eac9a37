package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidcalleja/garagebook-backend/pkg/enums"
	"github.com/davidcalleja/garagebook-backend/pkg/money"
)

// Car belongs to a garage and carries an expense ledger plus sale state.
// Sale columns are populated iff Status is sold; CancelSale nulls them all.
// Monetary columns are integer cents.
type Car struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GarageID     uuid.UUID       `gorm:"column:garage_id;type:uuid;not null;index"`
	Name         string          `gorm:"column:name;not null"`
	Year         int             `gorm:"column:year;not null;default:0"`
	PlateNumber  *string         `gorm:"column:plate_number"`
	Mileage      *int64          `gorm:"column:mileage"`
	PurchaseDate *time.Time      `gorm:"column:purchase_date"`
	Notes        *string         `gorm:"column:notes"`
	Status       enums.CarStatus `gorm:"column:status;type:car_status;not null;default:'available'"`

	SalePriceCents           *money.Cents `gorm:"column:sale_price_cents"`
	SaleTotalProfitCents     *money.Cents `gorm:"column:sale_total_profit_cents"`
	SaleYouReceiveCents      *money.Cents `gorm:"column:sale_you_receive_cents"`
	SalePartnerReceivesCents *money.Cents `gorm:"column:sale_partner_receives_cents"`
	SoldAt                   *time.Time   `gorm:"column:sold_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
