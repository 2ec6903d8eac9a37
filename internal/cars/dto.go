package cars

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
	"github.com/davidcalleja/garagebook-backend/pkg/money"
)

// SaleInfoDTO is the payout block on a sold car.
type SaleInfoDTO struct {
	SalePriceCents       money.Cents  `json:"sale_price_cents"`
	TotalProfitCents     money.Cents  `json:"total_profit_cents"`
	YouReceiveCents      money.Cents  `json:"you_receive_cents"`
	PartnerReceivesCents *money.Cents `json:"partner_receives_cents,omitempty"`
	SoldAt               time.Time    `json:"sold_at"`
}

// CarDTO exposes a car with its derived ledger totals. Profit and margin are
// computed on read, never stored, except for the sale snapshot taken at sell
// time.
type CarDTO struct {
	ID                 uuid.UUID       `json:"id"`
	GarageID           uuid.UUID       `json:"garage_id"`
	Name               string          `json:"name"`
	Year               int             `json:"year"`
	PlateNumber        *string         `json:"plate_number,omitempty"`
	Mileage            *int64          `json:"mileage,omitempty"`
	PurchaseDate       *time.Time      `json:"purchase_date,omitempty"`
	Notes              *string         `json:"notes,omitempty"`
	Status             enums.CarStatus `json:"status"`
	TotalExpensesCents money.Cents     `json:"total_expenses_cents"`
	Sale               *SaleInfoDTO    `json:"sale,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ExpenseDTO is one ledger entry in API responses.
type ExpenseDTO struct {
	ID          uuid.UUID          `json:"id"`
	CarID       uuid.UUID          `json:"car_id"`
	Description string             `json:"description"`
	AmountCents money.Cents        `json:"amount_cents"`
	Category    string             `json:"category"`
	Date        time.Time          `json:"date"`
	PaidBy      enums.ExpensePayer `json:"paid_by"`
	CreatedAt   time.Time          `json:"created_at"`
}

// FromModel maps the persisted car plus its expense total into a DTO.
func FromModel(m *models.Car, totalExpenses money.Cents) *CarDTO {
	if m == nil {
		return nil
	}
	dto := &CarDTO{
		ID:                 m.ID,
		GarageID:           m.GarageID,
		Name:               m.Name,
		Year:               m.Year,
		PlateNumber:        m.PlateNumber,
		Mileage:            m.Mileage,
		PurchaseDate:       m.PurchaseDate,
		Notes:              m.Notes,
		Status:             m.Status,
		TotalExpensesCents: totalExpenses,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.Status == enums.CarStatusSold &&
		m.SalePriceCents != nil && m.SaleTotalProfitCents != nil &&
		m.SaleYouReceiveCents != nil && m.SoldAt != nil {
		dto.Sale = &SaleInfoDTO{
			SalePriceCents:       *m.SalePriceCents,
			TotalProfitCents:     *m.SaleTotalProfitCents,
			YouReceiveCents:      *m.SaleYouReceiveCents,
			PartnerReceivesCents: m.SalePartnerReceivesCents,
			SoldAt:               *m.SoldAt,
		}
	}
	return dto
}

// ExpenseFromModel maps a ledger row into its DTO.
func ExpenseFromModel(m *models.Expense) *ExpenseDTO {
	if m == nil {
		return nil
	}
	return &ExpenseDTO{
		ID:          m.ID,
		CarID:       m.CarID,
		Description: m.Description,
		AmountCents: m.AmountCents,
		Category:    m.Category,
		Date:        m.Date,
		PaidBy:      m.PaidBy,
		CreatedAt:   m.CreatedAt,
	}
}
