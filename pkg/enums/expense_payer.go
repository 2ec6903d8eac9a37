package enums

import "fmt"

// ExpensePayer identifies which side of a partnership paid an expense.
type ExpensePayer string

const (
	ExpensePayerYou     ExpensePayer = "you"
	ExpensePayerPartner ExpensePayer = "partner"
)

var validExpensePayers = []ExpensePayer{
	ExpensePayerYou,
	ExpensePayerPartner,
}

// String implements fmt.Stringer.
func (p ExpensePayer) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p ExpensePayer) IsValid() bool {
	for _, candidate := range validExpensePayers {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseExpensePayer converts raw input into an ExpensePayer.
func ParseExpensePayer(value string) (ExpensePayer, error) {
	for _, candidate := range validExpensePayers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid expense payer %q", value)
}
