package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
)

// PlanDTO is one pricing-page entry. Limits use -1 for unlimited.
type PlanDTO struct {
	ID           enums.PlanType  `json:"id"`
	Name         string          `json:"name"`
	PriceAmount  decimal.Decimal `json:"price_amount"`
	CurrencyCode string          `json:"currency_code"`
	GarageLimit  int64           `json:"garage_limit"`
	CarLimit     int64           `json:"car_limit"`
	PartnerLimit int64           `json:"partner_limit"`
	Features     []string        `json:"features"`
	IsDefault    bool            `json:"is_default"`
}

// SubscriptionDTO is the account's current plan binding.
type SubscriptionDTO struct {
	PlanType           enums.PlanType           `json:"plan_type"`
	Status             enums.SubscriptionStatus `json:"status"`
	CurrentPeriodStart *time.Time               `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time               `json:"current_period_end,omitempty"`
	Plan               *PlanDTO                 `json:"plan,omitempty"`
}

// PlanFromModel maps a stored plan into its DTO.
func PlanFromModel(m *models.BillingPlan) *PlanDTO {
	if m == nil {
		return nil
	}
	return &PlanDTO{
		ID:           m.ID,
		Name:         m.Name,
		PriceAmount:  m.PriceAmount,
		CurrencyCode: m.CurrencyCode,
		GarageLimit:  m.GarageLimit,
		CarLimit:     m.CarLimit,
		PartnerLimit: m.PartnerLimit,
		Features:     append([]string(nil), m.Features...),
		IsDefault:    m.IsDefault,
	}
}

// SubscriptionFromModel maps a subscription plus its resolved plan.
func SubscriptionFromModel(m *models.Subscription, plan *models.BillingPlan) *SubscriptionDTO {
	if m == nil {
		return nil
	}
	return &SubscriptionDTO{
		PlanType:           m.PlanType,
		Status:             m.Status,
		CurrentPeriodStart: m.CurrentPeriodStart,
		CurrentPeriodEnd:   m.CurrentPeriodEnd,
		Plan:               PlanFromModel(plan),
	}
}
