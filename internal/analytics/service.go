package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	pkgerrors "github.com/davidcalleja/garagebook-backend/pkg/errors"
	"github.com/davidcalleja/garagebook-backend/pkg/money"
)

type analyticsRepository interface {
	ListSold(ctx context.Context, garageID uuid.UUID, from, to time.Time, carID *uuid.UUID) ([]models.Car, error)
}

type garagesRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Garage, error)
}

type membershipsRepository interface {
	GetMember(ctx context.Context, garageID, userID uuid.UUID) (*models.GarageMember, error)
}

// Query selects the rollup window. To is exclusive. A nil CarID means the
// whole garage.
type Query struct {
	From  time.Time
	To    time.Time
	CarID *uuid.UUID
}

// Summary is the rollup over sold cars in the window. Averages are zero when
// nothing qualifies, never NaN. Cars sold for zero are counted in TotalSold
// and TotalProfitCents but excluded from the price and margin averages.
type Summary struct {
	TotalSold         int         `json:"total_sold"`
	AvgSalePriceCents money.Cents `json:"avg_sale_price_cents"`
	TotalProfitCents  money.Cents `json:"total_profit_cents"`
	AvgMarginPercent  float64     `json:"avg_margin_percent"`
	AvgDaysToSell     float64     `json:"avg_days_to_sell"`
}

// Service computes read-only sale rollups.
type Service interface {
	Summarize(ctx context.Context, userID, garageID uuid.UUID, query Query) (*Summary, error)
}

type service struct {
	repo    analyticsRepository
	garages garagesRepository
	members membershipsRepository
}

// ServiceParams bundles the dependencies required to build the analytics service.
type ServiceParams struct {
	Repo    analyticsRepository
	Garages garagesRepository
	Members membershipsRepository
}

// NewService constructs an analytics service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("analytics repository is required")
	}
	if params.Garages == nil {
		return nil, fmt.Errorf("garages repository is required")
	}
	if params.Members == nil {
		return nil, fmt.Errorf("memberships repository is required")
	}
	return &service{repo: params.Repo, garages: params.Garages, members: params.Members}, nil
}

func (s *service) Summarize(ctx context.Context, userID, garageID uuid.UUID, query Query) (*Summary, error) {
	if _, err := s.garages.FindByID(ctx, garageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "garage not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load garage")
	}
	member, err := s.members.GetMember(ctx, garageID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this garage")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !member.Permissions.CanViewReports {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "missing permission to view reports")
	}

	if !query.To.After(query.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "period end must be after period start")
	}

	cars, err := s.repo.ListSold(ctx, garageID, query.From, query.To, query.CarID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sold cars")
	}
	return summarize(cars), nil
}

func summarize(cars []models.Car) *Summary {
	summary := &Summary{TotalSold: len(cars)}
	if len(cars) == 0 {
		return summary
	}

	var (
		priceSum    money.Cents
		priced      int
		marginSum   float64
		daysSum     float64
		datedCount  int
		marginCount int
	)
	for i := range cars {
		car := &cars[i]
		if car.SalePriceCents == nil || car.SaleTotalProfitCents == nil || car.SoldAt == nil {
			continue
		}
		price := *car.SalePriceCents
		profit := *car.SaleTotalProfitCents
		summary.TotalProfitCents += profit

		if price > 0 {
			priceSum += price
			priced++
			marginSum += float64(profit) / float64(price) * 100
			marginCount++
		}
		if car.PurchaseDate != nil {
			daysSum += car.SoldAt.Sub(*car.PurchaseDate).Hours() / 24
			datedCount++
		}
	}
	if priced > 0 {
		summary.AvgSalePriceCents = priceSum / money.Cents(priced)
	}
	if marginCount > 0 {
		summary.AvgMarginPercent = marginSum / float64(marginCount)
	}
	if datedCount > 0 {
		summary.AvgDaysToSell = daysSum / float64(datedCount)
	}
	return summary
}
