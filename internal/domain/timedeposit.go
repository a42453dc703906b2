package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DepositStatus string

const (
	DepositStatusActive  DepositStatus = "active"
	DepositStatusMatured DepositStatus = "matured"
)

// TimeDeposit is a principal sum locked for a fixed duration in exchange
// for simple interest at maturity. The state machine is Active -> Matured,
// one way; the interest rate is frozen at creation.
type TimeDeposit struct {
	DepositID      string
	AccountNumber  string
	Principal      Money
	DurationMonths int
	InterestRate   decimal.Decimal // annual rate, e.g. 0.025
	CreatedAt      time.Time
	MaturityAt     time.Time
	Status         DepositStatus
	MaturedAt      *time.Time
	FinalAmount    *Money // principal plus interest, set on maturity
}

// Interest returns the simple interest earned over the full term:
// principal * rate * (months/12), rounded half-up to cents.
func (d *TimeDeposit) Interest() Money {
	return d.Principal.MulRateOverMonths(d.InterestRate, d.DurationMonths)
}
