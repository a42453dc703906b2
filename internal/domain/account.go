package domain

import (
	"regexp"
	"time"
)

// Account numbers are exactly six numeric digits.
var accountNumberPattern = regexp.MustCompile(`^\d{6}$`)

func ValidAccountNumber(s string) bool {
	return accountNumberPattern.MatchString(s)
}

// Account is a balance-holding record. Balance stays within
// [0, balance cap] at all times; mutation happens only through the
// account store's Mutate/MutateTwo primitives.
type Account struct {
	Number          string
	Balance         Money
	Version         int64
	CreatedAt       time.Time
	LastTransaction *time.Time
}
