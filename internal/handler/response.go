package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/atmcore/ledger/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

// RespondDomainError maps engine errors onto transport responses. Only
// domain fields ever reach the payload; insufficient-funds responses
// include the current balance and requested amount.
func RespondDomainError(w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientFundsError
	if errors.As(err, &insufficient) {
		RespondAppError(w, ErrInsufficientFunds, map[string]any{
			"current_balance":  insufficient.Current,
			"requested_amount": insufficient.Requested,
		})
		return
	}

	var appErr *AppError
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		appErr = ErrAccountNotFound
	case errors.Is(err, domain.ErrDepositNotFound):
		appErr = ErrDepositNotFound
	case errors.Is(err, domain.ErrInvalidAmount):
		appErr = ErrInvalidAmount
	case errors.Is(err, domain.ErrInsufficientFunds):
		appErr = ErrInsufficientFunds
	case errors.Is(err, domain.ErrBalanceCapExceeded):
		appErr = ErrBalanceCapExceeded
	case errors.Is(err, domain.ErrSameAccount):
		appErr = ErrSameAccount
	case errors.Is(err, domain.ErrUnsupportedDuration):
		appErr = ErrUnsupportedDuration
	default:
		slog.Error("unhandled domain error", "error", err)
		appErr = ErrInternalError
	}

	RespondAppError(w, appErr, nil)
}
