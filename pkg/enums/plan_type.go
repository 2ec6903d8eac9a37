package enums

import "fmt"

// PlanType is the subscription tier attached to an account.
type PlanType string

const (
	PlanTypeFree    PlanType = "free"
	PlanTypeStarter PlanType = "starter"
	PlanTypePro     PlanType = "pro"
)

var validPlanTypes = []PlanType{
	PlanTypeFree,
	PlanTypeStarter,
	PlanTypePro,
}

// String implements fmt.Stringer.
func (p PlanType) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p PlanType) IsValid() bool {
	for _, candidate := range validPlanTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlanType converts raw input into a PlanType.
func ParsePlanType(value string) (PlanType, error) {
	for _, candidate := range validPlanTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan type %q", value)
}
