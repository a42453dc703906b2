// Package ledger implements the balance-mutating operations: deposit,
// withdrawal and transfer. It is the only caller of the account store's
// mutation primitives besides the time-deposit engine, which goes through
// the uncapped credit/debit paths defined here.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atmcore/ledger/internal/audit"
	"github.com/atmcore/ledger/internal/config"
	"github.com/atmcore/ledger/internal/domain"
	"github.com/atmcore/ledger/internal/logging"
	"github.com/atmcore/ledger/internal/store"
)

type Service struct {
	accounts store.AccountStore
	audit    audit.Recorder
	config   *config.Config
	now      func() time.Time
}

func NewService(accounts store.AccountStore, recorder audit.Recorder, cfg *config.Config) *Service {
	return &Service{
		accounts: accounts,
		audit:    recorder,
		config:   cfg,
		now:      time.Now,
	}
}

// GetBalance returns the current account snapshot.
func (s *Service) GetBalance(ctx context.Context, number string) (*domain.Account, error) {
	a, err := s.accounts.Get(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("GetBalance: %w", err)
	}
	return a, nil
}

// Deposit credits amount to the account. The amount must be positive,
// within the per-transaction cap, and must not push the balance over the
// account balance cap.
func (s *Service) Deposit(ctx context.Context, number string, amount domain.Money) (*domain.TransactionReceipt, error) {
	if err := s.validateAmount(amount); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	receipt, err := s.credit(ctx, number, amount, domain.TransactionTypeDeposit)
	if err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	logging.FromContext(ctx).Info("deposit completed",
		"account", number,
		"amount", amount.String(),
		"balance", receipt.BalanceAfter.String(),
	)
	return receipt, nil
}

// Withdraw debits amount from the account. Fails with an
// InsufficientFundsError when the balance cannot cover it; the stored
// balance is never driven negative.
func (s *Service) Withdraw(ctx context.Context, number string, amount domain.Money) (*domain.TransactionReceipt, error) {
	if err := s.validateAmount(amount); err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	receipt, err := s.debit(ctx, number, amount, domain.TransactionTypeWithdrawal)
	if err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	logging.FromContext(ctx).Info("withdrawal completed",
		"account", number,
		"amount", amount.String(),
		"balance", receipt.BalanceAfter.String(),
	)
	return receipt, nil
}

// Transfer atomically moves amount from sender to recipient. Both
// balances update or neither does, even under concurrent competing
// transfers touching overlapping accounts. The returned receipt is the
// sender's transfer_out leg; the recipient's transfer_in leg shares its
// reference id and goes to the audit recorder.
func (s *Service) Transfer(ctx context.Context, senderNumber, recipientNumber string, amount domain.Money, message *string) (*domain.TransactionReceipt, error) {
	if senderNumber == recipientNumber {
		return nil, fmt.Errorf("Transfer: %w", domain.ErrSameAccount)
	}
	if err := s.validateAmount(amount); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	var (
		referenceID = uuid.New()
		outReceipt  *domain.TransactionReceipt
		inReceipt   *domain.TransactionReceipt
	)

	_, _, err := s.accounts.MutateTwo(ctx, senderNumber, recipientNumber, func(sender, recipient *domain.Account) error {
		debited, err := sender.Balance.Sub(amount)
		if err != nil {
			if errors.Is(err, domain.ErrMoneyUnderflow) {
				return &domain.InsufficientFundsError{
					AccountID: sender.Number,
					Current:   sender.Balance,
					Requested: amount,
				}
			}
			return err
		}

		credited := recipient.Balance.Add(amount)
		if credited.Cmp(s.balanceCap()) > 0 {
			return domain.ErrBalanceCapExceeded
		}

		now := s.now().UTC()
		outReceipt = &domain.TransactionReceipt{
			ID:                  uuid.New(),
			ReferenceID:         referenceID,
			AccountNumber:       sender.Number,
			Type:                domain.TransactionTypeTransferOut,
			Amount:              amount,
			BalanceBefore:       sender.Balance,
			BalanceAfter:        debited,
			CounterpartyAccount: &recipient.Number,
			Message:             message,
			Timestamp:           now,
		}
		inReceipt = &domain.TransactionReceipt{
			ID:                  uuid.New(),
			ReferenceID:         referenceID,
			AccountNumber:       recipient.Number,
			Type:                domain.TransactionTypeTransferIn,
			Amount:              amount,
			BalanceBefore:       recipient.Balance,
			BalanceAfter:        credited,
			CounterpartyAccount: &sender.Number,
			Message:             message,
			Timestamp:           now,
		}

		sender.Balance = debited
		recipient.Balance = credited
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	s.audit.Record(ctx, outReceipt)
	s.audit.Record(ctx, inReceipt)

	logging.FromContext(ctx).Info("transfer completed",
		"reference_id", referenceID,
		"sender", senderNumber,
		"recipient", recipientNumber,
		"amount", amount.String(),
	)
	return outReceipt, nil
}

// CreditUncapped is the time-deposit payout path: deposit semantics
// without the per-transaction cap. A matured deposit must be payable in
// full, but the account balance cap still holds.
func (s *Service) CreditUncapped(ctx context.Context, number string, amount domain.Money) (*domain.TransactionReceipt, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("CreditUncapped: %w", domain.ErrInvalidAmount)
	}
	receipt, err := s.credit(ctx, number, amount, domain.TransactionTypeDeposit)
	if err != nil {
		return nil, fmt.Errorf("CreditUncapped: %w", err)
	}
	return receipt, nil
}

// DebitUncapped is the time-deposit principal path: withdrawal semantics
// without the per-transaction cap.
func (s *Service) DebitUncapped(ctx context.Context, number string, amount domain.Money) (*domain.TransactionReceipt, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("DebitUncapped: %w", domain.ErrInvalidAmount)
	}
	receipt, err := s.debit(ctx, number, amount, domain.TransactionTypeWithdrawal)
	if err != nil {
		return nil, fmt.Errorf("DebitUncapped: %w", err)
	}
	return receipt, nil
}

func (s *Service) credit(ctx context.Context, number string, amount domain.Money, txType domain.TransactionType) (*domain.TransactionReceipt, error) {
	var receipt *domain.TransactionReceipt

	_, err := s.accounts.Mutate(ctx, number, func(a *domain.Account) error {
		credited := a.Balance.Add(amount)
		if credited.Cmp(s.balanceCap()) > 0 {
			return domain.ErrBalanceCapExceeded
		}

		id := uuid.New()
		receipt = &domain.TransactionReceipt{
			ID:            id,
			ReferenceID:   id,
			AccountNumber: a.Number,
			Type:          txType,
			Amount:        amount,
			BalanceBefore: a.Balance,
			BalanceAfter:  credited,
			Timestamp:     s.now().UTC(),
		}
		a.Balance = credited
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, receipt)
	return receipt, nil
}

func (s *Service) debit(ctx context.Context, number string, amount domain.Money, txType domain.TransactionType) (*domain.TransactionReceipt, error) {
	var receipt *domain.TransactionReceipt

	_, err := s.accounts.Mutate(ctx, number, func(a *domain.Account) error {
		debited, err := a.Balance.Sub(amount)
		if err != nil {
			if errors.Is(err, domain.ErrMoneyUnderflow) {
				return &domain.InsufficientFundsError{
					AccountID: a.Number,
					Current:   a.Balance,
					Requested: amount,
				}
			}
			return err
		}

		id := uuid.New()
		receipt = &domain.TransactionReceipt{
			ID:            id,
			ReferenceID:   id,
			AccountNumber: a.Number,
			Type:          txType,
			Amount:        amount,
			BalanceBefore: a.Balance,
			BalanceAfter:  debited,
			Timestamp:     s.now().UTC(),
		}
		a.Balance = debited
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, receipt)
	return receipt, nil
}

func (s *Service) validateAmount(amount domain.Money) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if amount.Cmp(s.txCap()) > 0 {
		return domain.ErrInvalidAmount
	}
	return nil
}

func (s *Service) txCap() domain.Money {
	return domain.MoneyFromCents(s.config.TxCapCents)
}

func (s *Service) balanceCap() domain.Money {
	return domain.MoneyFromCents(s.config.BalanceCapCents)
}
