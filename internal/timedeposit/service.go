// Package timedeposit manages fixed-term deposits: creation debits the
// principal from the owning account, maturity credits principal plus
// simple interest back. Deposits follow a one-way Active -> Matured state
// machine with an idempotent mature transition.
package timedeposit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atmcore/ledger/internal/config"
	"github.com/atmcore/ledger/internal/domain"
	"github.com/atmcore/ledger/internal/logging"
)

type ledgerEngine interface {
	DebitUncapped(ctx context.Context, number string, amount domain.Money) (*domain.TransactionReceipt, error)
	CreditUncapped(ctx context.Context, number string, amount domain.Money) (*domain.TransactionReceipt, error)
}

type accountReader interface {
	Get(ctx context.Context, number string) (*domain.Account, error)
}

type Service struct {
	ledger   ledgerEngine
	accounts accountReader
	rates    RateTable
	config   *config.Config
	now      func() time.Time

	// mu guards the deposit registry and serializes maturity so a
	// deposit can never be credited twice.
	mu        sync.Mutex
	deposits  map[string]*domain.TimeDeposit
	byAccount map[string][]string
}

func NewService(ledger ledgerEngine, accounts accountReader, rates RateTable, cfg *config.Config) *Service {
	return &Service{
		ledger:    ledger,
		accounts:  accounts,
		rates:     rates,
		config:    cfg,
		now:       time.Now,
		deposits:  make(map[string]*domain.TimeDeposit),
		byAccount: make(map[string][]string),
	}
}

// Create opens a new time deposit, debiting the principal from the
// account. Test deposits skip the principal floor and mature one second
// after creation.
func (s *Service) Create(ctx context.Context, accountNumber string, principal domain.Money, durationMonths int, isTest bool) (*domain.TimeDeposit, error) {
	rate, err := s.rates.Rate(durationMonths)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	if err := s.validatePrincipal(principal, isTest); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	if _, err := s.ledger.DebitUncapped(ctx, accountNumber, principal); err != nil {
		return nil, fmt.Errorf("Create: debit principal: %w", err)
	}

	createdAt := s.now().UTC()
	maturityAt := createdAt.AddDate(0, durationMonths, 0)
	if isTest {
		maturityAt = createdAt.Add(s.config.TestDepositMaturity)
	}

	deposit := &domain.TimeDeposit{
		DepositID:      uuid.NewString()[:8],
		AccountNumber:  accountNumber,
		Principal:      principal,
		DurationMonths: durationMonths,
		InterestRate:   rate,
		CreatedAt:      createdAt,
		MaturityAt:     maturityAt,
		Status:         domain.DepositStatusActive,
	}

	s.mu.Lock()
	s.deposits[deposit.DepositID] = deposit
	s.byAccount[accountNumber] = append(s.byAccount[accountNumber], deposit.DepositID)
	s.mu.Unlock()

	logging.FromContext(ctx).Info("time deposit created",
		"deposit_id", deposit.DepositID,
		"account", accountNumber,
		"principal", principal.String(),
		"duration_months", durationMonths,
		"rate", rate.String(),
		"maturity_at", maturityAt,
	)

	snapshot := *deposit
	return &snapshot, nil
}

// Mature pays out a deposit: principal plus simple interest over the full
// contracted term, credited to the owning account. Calling it on an
// already matured deposit returns the final record unchanged and credits
// nothing. Maturity before maturity_at is allowed and pays the full
// contracted interest.
func (s *Service) Mature(ctx context.Context, depositID string) (*domain.TimeDeposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deposit, ok := s.deposits[depositID]
	if !ok {
		return nil, fmt.Errorf("Mature: %s: %w", depositID, domain.ErrDepositNotFound)
	}

	if deposit.Status == domain.DepositStatusMatured {
		snapshot := *deposit
		return &snapshot, nil
	}

	finalAmount := deposit.Principal.Add(deposit.Interest())

	if _, err := s.ledger.CreditUncapped(ctx, deposit.AccountNumber, finalAmount); err != nil {
		return nil, fmt.Errorf("Mature: credit payout: %w", err)
	}

	maturedAt := s.now().UTC()
	deposit.Status = domain.DepositStatusMatured
	deposit.MaturedAt = &maturedAt
	deposit.FinalAmount = &finalAmount

	logging.FromContext(ctx).Info("time deposit matured",
		"deposit_id", deposit.DepositID,
		"account", deposit.AccountNumber,
		"principal", deposit.Principal.String(),
		"final_amount", finalAmount.String(),
	)

	snapshot := *deposit
	return &snapshot, nil
}

// List returns the account's deposits in creation order.
func (s *Service) List(ctx context.Context, accountNumber string) ([]domain.TimeDeposit, error) {
	if _, err := s.accounts.Get(ctx, accountNumber); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.byAccount[accountNumber]
	out := make([]domain.TimeDeposit, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.deposits[id])
	}
	return out, nil
}

func (s *Service) validatePrincipal(principal domain.Money, isTest bool) error {
	if !principal.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if !isTest && principal.Cmp(domain.MoneyFromCents(s.config.DepositMinCents)) < 0 {
		return domain.ErrInvalidAmount
	}
	if principal.Cmp(domain.MoneyFromCents(s.config.DepositMaxCents)) > 0 {
		return domain.ErrInvalidAmount
	}
	return nil
}
