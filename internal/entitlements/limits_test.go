package entitlements

import (
	"testing"

	"github.com/davidcalleja/garagebook-backend/pkg/enums"
)

var freeLimits = Limits{Garages: 1, Cars: 5, Partners: 0}
var starterLimits = Limits{Garages: 3, Cars: 20, Partners: 5}
var proLimits = Limits{Garages: Unlimited, Cars: Unlimited, Partners: Unlimited}

func TestCanCreateRejectsExactlyAtLimit(t *testing.T) {
	kinds := []enums.LimitedResource{
		enums.LimitedResourceGarages,
		enums.LimitedResourceCars,
		enums.LimitedResourcePartners,
	}
	for _, limits := range []Limits{freeLimits, starterLimits} {
		for _, kind := range kinds {
			limit := limits.For(kind)
			for used := int64(0); used <= limit+1; used++ {
				usage := Usage{}
				switch kind {
				case enums.LimitedResourceGarages:
					usage.Garages = used
				case enums.LimitedResourceCars:
					usage.Cars = used
				case enums.LimitedResourcePartners:
					usage.Partners = used
				}
				got := CanCreate(kind, usage, limits)
				want := used < limit
				if got != want {
					t.Fatalf("kind=%s used=%d limit=%d: got %v want %v", kind, used, limit, got, want)
				}
			}
		}
	}
}

func TestCanCreateUnlimitedAlwaysAdmits(t *testing.T) {
	usage := Usage{Garages: 1 << 40, Cars: 1 << 40, Partners: 1 << 40}
	for _, kind := range []enums.LimitedResource{
		enums.LimitedResourceGarages,
		enums.LimitedResourceCars,
		enums.LimitedResourcePartners,
	} {
		if !CanCreate(kind, usage, proLimits) {
			t.Fatalf("unlimited plan rejected %s", kind)
		}
	}
}

func TestCanCreateUnknownKindRejects(t *testing.T) {
	if CanCreate(enums.LimitedResource("boats"), Usage{}, starterLimits) {
		t.Fatal("unknown resource kind should never admit")
	}
}
