package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/davidcalleja/garagebook-backend/pkg/enums"
)

// BillingPlan captures the metadata shown on the pricing page. Billing is
// manual (payment instructions), so the row carries presentation data and the
// resource limits enforced by entitlements. A limit of -1 means unlimited.
type BillingPlan struct {
	ID            enums.PlanType  `gorm:"column:id;type:plan_type;primaryKey"`
	Name          string          `gorm:"column:name;not null"`
	PriceAmount   decimal.Decimal `gorm:"column:price_amount;type:numeric(12,2);not null"`
	CurrencyCode  string          `gorm:"column:currency_code;not null;default:'EUR'"`
	GarageLimit   int64           `gorm:"column:garage_limit;not null"`
	CarLimit      int64           `gorm:"column:car_limit;not null"`
	PartnerLimit  int64           `gorm:"column:partner_limit;not null"`
	Features      pq.StringArray  `gorm:"column:features;type:text[];default:ARRAY[]::text[]"`
	IsDefault     bool            `gorm:"column:is_default;not null;default:false"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
