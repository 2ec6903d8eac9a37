package enums

import "fmt"

// CarStatus is the lifecycle state of a car in a garage.
type CarStatus string

const (
	CarStatusAvailable CarStatus = "available"
	CarStatusPending   CarStatus = "pending"
	CarStatusSold      CarStatus = "sold"
)

var validCarStatuses = []CarStatus{
	CarStatusAvailable,
	CarStatusPending,
	CarStatusSold,
}

// String implements fmt.Stringer.
func (s CarStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s CarStatus) IsValid() bool {
	for _, candidate := range validCarStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCarStatus converts raw input into a CarStatus.
func ParseCarStatus(value string) (CarStatus, error) {
	for _, candidate := range validCarStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid car status %q", value)
}
