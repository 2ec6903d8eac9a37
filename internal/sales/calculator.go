package sales

import (
	pkgerrors "github.com/davidcalleja/garagebook-backend/pkg/errors"
	"github.com/davidcalleja/garagebook-backend/pkg/money"
)

// SaleInput is everything the payout computation needs. Expense totals are
// pre-aggregated by payer; OwnerSharePercent is the owner's cut of residual
// profit and only matters when HasPartner is set.
type SaleInput struct {
	SalePrice         money.Cents
	OwnerExpenses     money.Cents
	PartnerExpenses   money.Cents
	HasPartner        bool
	OwnerSharePercent int64
}

// Breakdown is the computed payout. PartnerReceives is nil for garages
// without a partner.
type Breakdown struct {
	TotalCosts      money.Cents
	TotalProfit     money.Cents
	YouReceive      money.Cents
	PartnerReceives *money.Cents
}

// Calculate computes the sale payout in integer cents.
//
// Without a partner all proceeds go to the owner and profit is informational.
// With a partner each side is first reimbursed the costs it paid in, then the
// residual profit is split owner/partner by the agreed percentage. The split
// is computed share-and-remainder so YouReceive + PartnerReceives always
// equals the sale price exactly when the expense totals cover all costs.
func Calculate(in SaleInput) (*Breakdown, error) {
	if in.SalePrice <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale price must be positive")
	}
	if in.OwnerExpenses < 0 || in.PartnerExpenses < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense totals cannot be negative")
	}

	totalCosts := in.OwnerExpenses + in.PartnerExpenses
	totalProfit := in.SalePrice - totalCosts

	if !in.HasPartner {
		return &Breakdown{
			TotalCosts:  totalCosts,
			TotalProfit: totalProfit,
			YouReceive:  in.SalePrice,
		}, nil
	}

	if in.OwnerSharePercent < 0 || in.OwnerSharePercent > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "split ratio must be between 0 and 100")
	}

	ownerProfit, partnerProfit := money.ShareByPercent(totalProfit, in.OwnerSharePercent)
	partnerReceives := in.PartnerExpenses + partnerProfit

	return &Breakdown{
		TotalCosts:      totalCosts,
		TotalProfit:     totalProfit,
		YouReceive:      in.OwnerExpenses + ownerProfit,
		PartnerReceives: &partnerReceives,
	}, nil
}
