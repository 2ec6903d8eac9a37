package enums

import "fmt"

// LimitedResource enumerates the resource kinds gated by plan limits.
type LimitedResource string

const (
	LimitedResourceGarages  LimitedResource = "garages"
	LimitedResourceCars     LimitedResource = "cars"
	LimitedResourcePartners LimitedResource = "partners"
)

var validLimitedResources = []LimitedResource{
	LimitedResourceGarages,
	LimitedResourceCars,
	LimitedResourcePartners,
}

// String implements fmt.Stringer.
func (r LimitedResource) String() string {
	return string(r)
}

// IsValid reports whether the value is known.
func (r LimitedResource) IsValid() bool {
	for _, candidate := range validLimitedResources {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseLimitedResource converts raw input into a LimitedResource.
func ParseLimitedResource(value string) (LimitedResource, error) {
	for _, candidate := range validLimitedResources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid limited resource %q", value)
}
