package timedeposit

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/atmcore/ledger/internal/domain"
)

// RateTable maps supported deposit durations in months to annual simple
// interest rates. The rate is selected once at creation and frozen on
// the deposit; later table changes never affect existing deposits.
type RateTable map[int]decimal.Decimal

// DefaultRates is the canonical tier table.
func DefaultRates() RateTable {
	return RateTable{
		1:  decimal.NewFromFloat(0.010),
		3:  decimal.NewFromFloat(0.015),
		6:  decimal.NewFromFloat(0.020),
		12: decimal.NewFromFloat(0.025),
		18: decimal.NewFromFloat(0.035),
		24: decimal.NewFromFloat(0.030),
		36: decimal.NewFromFloat(0.035),
		48: decimal.NewFromFloat(0.040),
		60: decimal.NewFromFloat(0.045),
	}
}

// Rate returns the annual rate for an exactly matching tier.
func (t RateTable) Rate(durationMonths int) (decimal.Decimal, error) {
	rate, ok := t[durationMonths]
	if !ok {
		return decimal.Zero, fmt.Errorf("Rate: %d months: %w", durationMonths, domain.ErrUnsupportedDuration)
	}
	return rate, nil
}
