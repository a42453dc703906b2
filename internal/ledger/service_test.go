package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atmcore/ledger/internal/audit"
	"github.com/atmcore/ledger/internal/config"
	"github.com/atmcore/ledger/internal/domain"
	"github.com/atmcore/ledger/internal/ledger"
	"github.com/atmcore/ledger/internal/store"
	"github.com/atmcore/ledger/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		TxCapCents:      1_000_000,
		BalanceCapCents: 100_000_000,
	}
}

func newTestService(t *testing.T) (*ledger.Service, *store.MemoryStore, *audit.MemoryRecorder) {
	t.Helper()
	s := store.NewMemoryStore()
	recorder := audit.NewMemoryRecorder()
	return ledger.NewService(s, recorder, testConfig()), s, recorder
}

func money(t *testing.T, s string) domain.Money {
	t.Helper()
	m, err := domain.ParseMoney(s)
	require.NoError(t, err)
	return m
}

func TestDepositThenWithdraw(t *testing.T) {
	svc, s, _ := newTestService(t)
	ctx := context.Background()
	testutil.SeedAccount(t, s, "123456", 100_000)

	receipt, err := svc.Deposit(ctx, "123456", money(t, "75.50"))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeDeposit, receipt.Type)
	assert.Equal(t, "1000.00", receipt.BalanceBefore.String())
	assert.Equal(t, "1075.50", receipt.BalanceAfter.String())

	receipt, err = svc.Withdraw(ctx, "123456", money(t, "25.25"))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeWithdrawal, receipt.Type)
	assert.Equal(t, "1050.25", receipt.BalanceAfter.String())

	a, err := svc.GetBalance(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, "1050.25", a.Balance.String())
}

func TestDepositValidation(t *testing.T) {
	svc, s, _ := newTestService(t)
	ctx := context.Background()
	testutil.SeedAccount(t, s, "123456", 0)

	tests := []struct {
		name      string
		account   string
		amount    string
		wantErrIs error
	}{
		{name: "zero amount", account: "123456", amount: "0", wantErrIs: domain.ErrInvalidAmount},
		{name: "over transaction cap", account: "123456", amount: "50000.00", wantErrIs: domain.ErrInvalidAmount},
		{name: "unknown account", account: "999999", amount: "10.00", wantErrIs: domain.ErrAccountNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Deposit(ctx, tc.account, money(t, tc.amount))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErrIs)
		})
	}
}

func TestDepositBalanceCap(t *testing.T) {
	svc, s, _ := newTestService(t)
	ctx := context.Background()
	testutil.SeedAccount(t, s, "123456", 99_999_950)

	_, err := svc.Deposit(ctx, "123456", money(t, "0.50"))
	require.NoError(t, err)

	_, err = svc.Deposit(ctx, "123456", money(t, "0.01"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBalanceCapExceeded)

	a, err := svc.GetBalance(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, int64(100_000_000), a.Balance.Cents())
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	svc, s, _ := newTestService(t)
	ctx := context.Background()
	testutil.SeedAccount(t, s, "555444", 0)

	_, err := svc.Withdraw(ctx, "555444", money(t, "100.00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	var insufficient *domain.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "555444", insufficient.AccountID)
	assert.Equal(t, "0.00", insufficient.Current.String())
	assert.Equal(t, "100.00", insufficient.Requested.String())

	a, err := svc.GetBalance(ctx, "555444")
	require.NoError(t, err)
	assert.True(t, a.Balance.IsZero())
}

func TestTransfer(t *testing.T) {
	svc, s, recorder := newTestService(t)
	ctx := context.Background()
	testutil.SeedAccount(t, s, "123456", 100_000)
	testutil.SeedAccount(t, s, "789012", 50_000)

	msg := "rent"
	receipt, err := svc.Transfer(ctx, "123456", "789012", money(t, "200.00"), &msg)
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionTypeTransferOut, receipt.Type)
	assert.Equal(t, "123456", receipt.AccountNumber)
	assert.Equal(t, "800.00", receipt.BalanceAfter.String())
	require.NotNil(t, receipt.CounterpartyAccount)
	assert.Equal(t, "789012", *receipt.CounterpartyAccount)
	require.NotNil(t, receipt.Message)
	assert.Equal(t, "rent", *receipt.Message)

	recipient, err := svc.GetBalance(ctx, "789012")
	require.NoError(t, err)
	assert.Equal(t, "700.00", recipient.Balance.String())

	// Both legs are recorded and share one reference id.
	receipts := recorder.Receipts()
	require.Len(t, receipts, 2)
	assert.Equal(t, domain.TransactionTypeTransferOut, receipts[0].Type)
	assert.Equal(t, domain.TransactionTypeTransferIn, receipts[1].Type)
	assert.Equal(t, receipts[0].ReferenceID, receipts[1].ReferenceID)
	assert.NotEqual(t, receipts[0].ID, receipts[1].ID)
}

func TestTransferFailures(t *testing.T) {
	svc, s, _ := newTestService(t)
	ctx := context.Background()
	testutil.SeedAccount(t, s, "123456", 100_000)
	testutil.SeedAccount(t, s, "789012", 99_999_999)

	tests := []struct {
		name      string
		sender    string
		recipient string
		amount    string
		wantErrIs error
	}{
		{name: "same account", sender: "123456", recipient: "123456", amount: "10.00", wantErrIs: domain.ErrSameAccount},
		{name: "insufficient funds", sender: "123456", recipient: "789012", amount: "5000.00", wantErrIs: domain.ErrInsufficientFunds},
		{name: "recipient over balance cap", sender: "123456", recipient: "789012", amount: "10.00", wantErrIs: domain.ErrBalanceCapExceeded},
		{name: "unknown recipient", sender: "123456", recipient: "999999", amount: "10.00", wantErrIs: domain.ErrAccountNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Transfer(ctx, tc.sender, tc.recipient, money(t, tc.amount), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErrIs)
		})
	}

	// No failure may have touched either balance.
	sender, err := svc.GetBalance(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), sender.Balance.Cents())
	recipient, err := svc.GetBalance(ctx, "789012")
	require.NoError(t, err)
	assert.Equal(t, int64(99_999_999), recipient.Balance.Cents())
}

func TestConcurrentTransfersPreserveTotal(t *testing.T) {
	svc, s, _ := newTestService(t)
	ctx := context.Background()
	testutil.SeedAccount(t, s, "111111", 500_000)
	testutil.SeedAccount(t, s, "222222", 500_000)

	const rounds = 50
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range rounds {
			_, err := svc.Transfer(ctx, "111111", "222222", domain.MoneyFromCents(100), nil)
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for range rounds {
			_, err := svc.Transfer(ctx, "222222", "111111", domain.MoneyFromCents(100), nil)
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	a, err := svc.GetBalance(ctx, "111111")
	require.NoError(t, err)
	b, err := svc.GetBalance(ctx, "222222")
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), a.Balance.Cents()+b.Balance.Cents())
}

func TestUncappedPaths(t *testing.T) {
	svc, s, _ := newTestService(t)
	ctx := context.Background()
	testutil.SeedAccount(t, s, "123456", 5_000_000)

	// 20,000.00 exceeds the per-transaction cap but the uncapped debit
	// and credit paths accept it.
	amount := money(t, "20000.00")

	_, err := svc.DebitUncapped(ctx, "123456", amount)
	require.NoError(t, err)

	_, err = svc.CreditUncapped(ctx, "123456", amount)
	require.NoError(t, err)

	a, err := svc.GetBalance(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, int64(5_000_000), a.Balance.Cents())

	// The balance cap still applies to uncapped credits.
	_, err = svc.CreditUncapped(ctx, "123456", domain.MoneyFromCents(100_000_000))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBalanceCapExceeded)
}
