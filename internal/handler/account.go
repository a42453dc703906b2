package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/atmcore/ledger/internal/domain"
	"github.com/atmcore/ledger/internal/logging"
)

type ledgerService interface {
	GetBalance(ctx context.Context, number string) (*domain.Account, error)
	Deposit(ctx context.Context, number string, amount domain.Money) (*domain.TransactionReceipt, error)
	Withdraw(ctx context.Context, number string, amount domain.Money) (*domain.TransactionReceipt, error)
	Transfer(ctx context.Context, senderNumber, recipientNumber string, amount domain.Money, message *string) (*domain.TransactionReceipt, error)
}

type AccountHandler struct {
	ledger ledgerService
}

func NewAccountHandler(ledger ledgerService) *AccountHandler {
	return &AccountHandler{ledger: ledger}
}

type amountRequest struct {
	Amount domain.Money `json:"amount"`
}

type transferRequest struct {
	Amount           domain.Money `json:"amount"`
	RecipientAccount string       `json:"recipient_account"`
	Message          *string      `json:"message"`
}

func (r transferRequest) Validate() []FieldError {
	var errs []FieldError
	if !domain.ValidAccountNumber(r.RecipientAccount) {
		errs = append(errs, FieldError{Field: "recipient_account", Message: "must be exactly 6 digits"})
	}
	if r.Message != nil && len(*r.Message) > 100 {
		errs = append(errs, FieldError{Field: "message", Message: "must be at most 100 characters"})
	}
	return errs
}

type balanceDTO struct {
	AccountNumber   string       `json:"account_number"`
	Balance         domain.Money `json:"balance"`
	LastTransaction *time.Time   `json:"last_transaction"`
}

type receiptDTO struct {
	ID                  string       `json:"id"`
	ReferenceID         string       `json:"reference_id"`
	AccountNumber       string       `json:"account_number"`
	Type                string       `json:"type"`
	Amount              domain.Money `json:"amount"`
	BalanceBefore       domain.Money `json:"balance_before"`
	BalanceAfter        domain.Money `json:"balance_after"`
	CounterpartyAccount *string      `json:"counterparty_account,omitempty"`
	Message             *string      `json:"message,omitempty"`
	Timestamp           time.Time    `json:"timestamp"`
}

func toReceiptDTO(r *domain.TransactionReceipt) receiptDTO {
	return receiptDTO{
		ID:                  r.ID.String(),
		ReferenceID:         r.ReferenceID.String(),
		AccountNumber:       r.AccountNumber,
		Type:                string(r.Type),
		Amount:              r.Amount,
		BalanceBefore:       r.BalanceBefore,
		BalanceAfter:        r.BalanceAfter,
		CounterpartyAccount: r.CounterpartyAccount,
		Message:             r.Message,
		Timestamp:           r.Timestamp,
	}
}

type transactionResponse struct {
	AccountNumber string       `json:"account_number"`
	NewBalance    domain.Money `json:"new_balance"`
	Receipt       receiptDTO   `json:"receipt"`
}

func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	number, ok := accountFromPath(w, r)
	if !ok {
		return
	}

	account, err := h.ledger.GetBalance(r.Context(), number)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, balanceDTO{
		AccountNumber:   account.Number,
		Balance:         account.Balance,
		LastTransaction: account.LastTransaction,
	})
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	number, ok := accountFromPath(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.ledger.Deposit(r.Context(), number, req.Amount)
	if err != nil {
		logging.FromContext(r.Context()).Warn("deposit rejected", "account", number, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, transactionResponse{
		AccountNumber: number,
		NewBalance:    receipt.BalanceAfter,
		Receipt:       toReceiptDTO(receipt),
	})
}

func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	number, ok := accountFromPath(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.ledger.Withdraw(r.Context(), number, req.Amount)
	if err != nil {
		logging.FromContext(r.Context()).Warn("withdrawal rejected", "account", number, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, transactionResponse{
		AccountNumber: number,
		NewBalance:    receipt.BalanceAfter,
		Receipt:       toReceiptDTO(receipt),
	})
}

func (h *AccountHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	number, ok := accountFromPath(w, r)
	if !ok {
		return
	}

	var req transferRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	receipt, err := h.ledger.Transfer(r.Context(), number, req.RecipientAccount, req.Amount, req.Message)
	if err != nil {
		logging.FromContext(r.Context()).Warn("transfer rejected",
			"sender", number, "recipient", req.RecipientAccount, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, transactionResponse{
		AccountNumber: number,
		NewBalance:    receipt.BalanceAfter,
		Receipt:       toReceiptDTO(receipt),
	})
}

// accountFromPath extracts and validates the {account} path parameter.
func accountFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	number := r.PathValue("account")
	if !domain.ValidAccountNumber(number) {
		RespondValidationError(w, []FieldError{
			{Field: "account", Message: "must be exactly 6 digits"},
		})
		return "", false
	}
	return number, true
}

// decodeBody decodes JSON, distinguishing malformed bodies from amounts
// that fail the money precision rules.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			RespondDomainError(w, err)
			return false
		}
		RespondAppError(w, ErrInvalidRequest, nil)
		return false
	}
	return true
}
