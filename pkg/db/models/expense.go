package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidcalleja/garagebook-backend/pkg/enums"
	"github.com/davidcalleja/garagebook-backend/pkg/money"
)

// Expense is one ledger entry on a car. Rows become read-only once the car is
// sold and are deleted with the car.
type Expense struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CarID       uuid.UUID          `gorm:"column:car_id;type:uuid;not null;index"`
	Description string             `gorm:"column:description;not null"`
	AmountCents money.Cents        `gorm:"column:amount_cents;not null"`
	Category    string             `gorm:"column:category;not null;default:''"`
	Date        time.Time          `gorm:"column:date;not null"`
	PaidBy      enums.ExpensePayer `gorm:"column:paid_by;type:expense_payer;not null;default:'you'"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
