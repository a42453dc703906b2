package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/atmcore/ledger/internal/domain"
	"github.com/atmcore/ledger/internal/logging"
)

type timeDepositService interface {
	Create(ctx context.Context, accountNumber string, principal domain.Money, durationMonths int, isTest bool) (*domain.TimeDeposit, error)
	Mature(ctx context.Context, depositID string) (*domain.TimeDeposit, error)
	List(ctx context.Context, accountNumber string) ([]domain.TimeDeposit, error)
}

type TimeDepositHandler struct {
	deposits timeDepositService
}

func NewTimeDepositHandler(deposits timeDepositService) *TimeDepositHandler {
	return &TimeDepositHandler{deposits: deposits}
}

type createDepositRequest struct {
	AccountNumber  string       `json:"account_number"`
	Amount         domain.Money `json:"amount"`
	DurationMonths int          `json:"duration_months"`
	IsTestDeposit  bool         `json:"is_test_deposit"`
}

func (r createDepositRequest) Validate() []FieldError {
	var errs []FieldError
	if !domain.ValidAccountNumber(r.AccountNumber) {
		errs = append(errs, FieldError{Field: "account_number", Message: "must be exactly 6 digits"})
	}
	if r.DurationMonths < 1 {
		errs = append(errs, FieldError{Field: "duration_months", Message: "must be a positive number of months"})
	}
	return errs
}

type depositDTO struct {
	DepositID      string        `json:"deposit_id"`
	AccountNumber  string        `json:"account_number"`
	Amount         domain.Money  `json:"amount"`
	DurationMonths int           `json:"duration_months"`
	InterestRate   string        `json:"interest_rate"`
	CreatedAt      time.Time     `json:"created_at"`
	MaturityAt     time.Time     `json:"maturity_date"`
	Status         string        `json:"status"`
	MaturedAt      *time.Time    `json:"matured_at,omitempty"`
	FinalAmount    *domain.Money `json:"final_amount,omitempty"`
}

func toDepositDTO(d *domain.TimeDeposit) depositDTO {
	return depositDTO{
		DepositID:      d.DepositID,
		AccountNumber:  d.AccountNumber,
		Amount:         d.Principal,
		DurationMonths: d.DurationMonths,
		InterestRate:   d.InterestRate.String(),
		CreatedAt:      d.CreatedAt,
		MaturityAt:     d.MaturityAt,
		Status:         string(d.Status),
		MaturedAt:      d.MaturedAt,
		FinalAmount:    d.FinalAmount,
	}
}

func (h *TimeDepositHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDepositRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	deposit, err := h.deposits.Create(r.Context(), req.AccountNumber, req.Amount, req.DurationMonths, req.IsTestDeposit)
	if err != nil {
		logging.FromContext(r.Context()).Warn("time deposit rejected",
			"account", req.AccountNumber, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toDepositDTO(deposit))
}

func (h *TimeDepositHandler) Mature(w http.ResponseWriter, r *http.Request) {
	depositID := r.PathValue("deposit")
	if depositID == "" {
		RespondValidationError(w, []FieldError{
			{Field: "deposit", Message: "required"},
		})
		return
	}

	deposit, err := h.deposits.Mature(r.Context(), depositID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("maturity rejected", "deposit_id", depositID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toDepositDTO(deposit))
}

func (h *TimeDepositHandler) List(w http.ResponseWriter, r *http.Request) {
	number, ok := accountFromPath(w, r)
	if !ok {
		return
	}

	deposits, err := h.deposits.List(r.Context(), number)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]depositDTO, len(deposits))
	for i := range deposits {
		dtos[i] = toDepositDTO(&deposits[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
