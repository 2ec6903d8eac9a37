package entitlements

import (
	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
)

// Unlimited is the sentinel limit value for plans without a ceiling.
const Unlimited int64 = -1

// Limits is the per-plan ceiling on countable resources.
type Limits struct {
	Garages  int64
	Cars     int64
	Partners int64
}

// Usage mirrors Limits with the account's live resource counts.
type Usage struct {
	Garages  int64
	Cars     int64
	Partners int64
}

// LimitsFromPlan extracts the resource ceilings from a billing plan row.
func LimitsFromPlan(plan *models.BillingPlan) Limits {
	if plan == nil {
		return Limits{}
	}
	return Limits{
		Garages:  plan.GarageLimit,
		Cars:     plan.CarLimit,
		Partners: plan.PartnerLimit,
	}
}

// For returns the ceiling for one resource kind.
func (l Limits) For(kind enums.LimitedResource) int64 {
	switch kind {
	case enums.LimitedResourceGarages:
		return l.Garages
	case enums.LimitedResourceCars:
		return l.Cars
	case enums.LimitedResourcePartners:
		return l.Partners
	default:
		return 0
	}
}

// For returns the live count for one resource kind.
func (u Usage) For(kind enums.LimitedResource) int64 {
	switch kind {
	case enums.LimitedResourceGarages:
		return u.Garages
	case enums.LimitedResourceCars:
		return u.Cars
	case enums.LimitedResourcePartners:
		return u.Partners
	default:
		return 0
	}
}

// CanCreate reports whether one more resource of the given kind fits under
// the plan ceiling. Unlimited plans always admit.
func CanCreate(kind enums.LimitedResource, usage Usage, limits Limits) bool {
	limit := limits.For(kind)
	if limit == Unlimited {
		return true
	}
	return usage.For(kind) < limit
}
