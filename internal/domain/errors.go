package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrDepositNotFound     = errors.New("time deposit not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrBalanceCapExceeded  = errors.New("account balance cap exceeded")
	ErrSameAccount         = errors.New("sender and recipient are the same account")
	ErrUnsupportedDuration = errors.New("unsupported deposit duration")
	ErrVersionConflict     = errors.New("optimistic lock conflict")

	// ErrMoneyUnderflow is the Money-level failure; the ledger translates
	// it into an InsufficientFundsError with balance context.
	ErrMoneyUnderflow = errors.New("money: result would be negative")
)

// InsufficientFundsError carries the balance context callers report back
// to the user. errors.Is(err, ErrInsufficientFunds) matches it.
type InsufficientFundsError struct {
	AccountID string
	Current   Money
	Requested Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in account %s: balance %s, requested %s",
		e.AccountID, e.Current, e.Requested)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
