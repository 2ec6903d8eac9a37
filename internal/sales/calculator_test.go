package sales

import (
	"testing"

	pkgerrors "github.com/davidcalleja/garagebook-backend/pkg/errors"
	"github.com/davidcalleja/garagebook-backend/pkg/money"
)

func TestCalculatePartnerScenario(t *testing.T) {
	// 60/40 split, owner paid 800, partner paid 200, sold for 3000.
	out, err := Calculate(SaleInput{
		SalePrice:         300000,
		OwnerExpenses:     80000,
		PartnerExpenses:   20000,
		HasPartner:        true,
		OwnerSharePercent: 60,
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if out.TotalCosts != 100000 {
		t.Fatalf("expected total costs 100000, got %d", out.TotalCosts)
	}
	if out.TotalProfit != 200000 {
		t.Fatalf("expected total profit 200000, got %d", out.TotalProfit)
	}
	if out.YouReceive != 200000 {
		t.Fatalf("expected owner payout 200000, got %d", out.YouReceive)
	}
	if out.PartnerReceives == nil || *out.PartnerReceives != 100000 {
		t.Fatalf("expected partner payout 100000, got %v", out.PartnerReceives)
	}
}

func TestCalculateNoPartnerPaysOwnerFullPrice(t *testing.T) {
	out, err := Calculate(SaleInput{
		SalePrice:     150000,
		OwnerExpenses: 40000,
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if out.YouReceive != 150000 {
		t.Fatalf("expected owner to receive full price, got %d", out.YouReceive)
	}
	if out.TotalProfit != 110000 {
		t.Fatalf("expected profit 110000, got %d", out.TotalProfit)
	}
	if out.PartnerReceives != nil {
		t.Fatalf("expected no partner payout, got %d", *out.PartnerReceives)
	}
}

func TestCalculateConservationAcrossRatios(t *testing.T) {
	// Payouts must sum to the sale price exactly for every ratio, including
	// ones where the profit split does not divide evenly.
	prices := []money.Cents{1, 99, 100001, 299999, 300000}
	for _, price := range prices {
		ownerExpenses := price / 3
		partnerExpenses := price / 4
		for ratio := int64(0); ratio <= 100; ratio++ {
			out, err := Calculate(SaleInput{
				SalePrice:         price,
				OwnerExpenses:     ownerExpenses,
				PartnerExpenses:   partnerExpenses,
				HasPartner:        true,
				OwnerSharePercent: ratio,
			})
			if err != nil {
				t.Fatalf("price=%d ratio=%d: %v", price, ratio, err)
			}
			sum := out.YouReceive + *out.PartnerReceives
			if sum != price {
				t.Fatalf("price=%d ratio=%d: payouts sum to %d", price, ratio, sum)
			}
		}
	}
}

func TestCalculateNegativeProfitStillConserves(t *testing.T) {
	// Costs exceeding the sale price produce a loss; the split still has to
	// hand out exactly the sale price.
	out, err := Calculate(SaleInput{
		SalePrice:         50000,
		OwnerExpenses:     60000,
		PartnerExpenses:   30000,
		HasPartner:        true,
		OwnerSharePercent: 55,
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if out.TotalProfit != -40000 {
		t.Fatalf("expected loss of 40000, got %d", out.TotalProfit)
	}
	if out.YouReceive+*out.PartnerReceives != 50000 {
		t.Fatalf("payouts do not sum to sale price")
	}
}

func TestCalculateRejectsNonPositivePrice(t *testing.T) {
	for _, price := range []money.Cents{0, -100} {
		_, err := Calculate(SaleInput{SalePrice: price})
		if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("price=%d: expected validation error, got %v", price, err)
		}
	}
}

func TestCalculateRejectsOutOfRangeRatio(t *testing.T) {
	for _, ratio := range []int64{-1, 101} {
		_, err := Calculate(SaleInput{
			SalePrice:         1000,
			HasPartner:        true,
			OwnerSharePercent: ratio,
		})
		if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("ratio=%d: expected validation error, got %v", ratio, err)
		}
	}
}
