package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrAccountNotFound     = &AppError{http.StatusNotFound, "ACCOUNT_NOT_FOUND", "The specified account does not exist"}
	ErrDepositNotFound     = &AppError{http.StatusNotFound, "DEPOSIT_NOT_FOUND", "The specified time deposit does not exist"}
	ErrInvalidAmount       = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be positive with at most 2 decimal places and within the per-transaction cap"}
	ErrInsufficientFunds   = &AppError{http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", "Transaction amount exceeds available balance"}
	ErrBalanceCapExceeded  = &AppError{http.StatusUnprocessableEntity, "BALANCE_CAP_EXCEEDED", "Resulting balance would exceed the account balance cap"}
	ErrSameAccount         = &AppError{http.StatusUnprocessableEntity, "SAME_ACCOUNT", "Cannot transfer to the same account"}
	ErrUnsupportedDuration = &AppError{http.StatusBadRequest, "UNSUPPORTED_DURATION", "Duration is not a supported deposit tier"}
)
