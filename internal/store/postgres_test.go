package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atmcore/ledger/internal/domain"
	"github.com/atmcore/ledger/internal/store"
	"github.com/atmcore/ledger/internal/testutil"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed store test in short mode")
	}

	db := testutil.SetupTestDB(t, testutil.WithAccounts(map[string]int64{
		"123456": 100_000,
		"789012": 50_000,
	}))
	s := store.NewPostgresStore(db)
	ctx := context.Background()

	t.Run("get", func(t *testing.T) {
		a, err := s.Get(ctx, "123456")
		require.NoError(t, err)
		assert.Equal(t, int64(100_000), a.Balance.Cents())

		_, err = s.Get(ctx, "000000")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})

	t.Run("mutate commits and bumps version", func(t *testing.T) {
		updated, err := s.Mutate(ctx, "123456", func(a *domain.Account) error {
			a.Balance = a.Balance.Add(domain.MoneyFromCents(2_500))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(102_500), updated.Balance.Cents())
		assert.Equal(t, int64(1), updated.Version)
		assert.Equal(t, int64(102_500), testutil.GetAccountBalance(t, db, "123456"))
	})

	t.Run("mutate rolls back on error", func(t *testing.T) {
		before := testutil.GetAccountBalance(t, db, "789012")

		_, err := s.Mutate(ctx, "789012", func(a *domain.Account) error {
			a.Balance = domain.MoneyFromCents(0)
			return domain.ErrInvalidAmount
		})
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
		assert.Equal(t, before, testutil.GetAccountBalance(t, db, "789012"))
	})

	t.Run("mutate two rejects equal accounts", func(t *testing.T) {
		_, _, err := s.MutateTwo(ctx, "123456", "123456", func(a, b *domain.Account) error {
			return nil
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrSameAccount)
	})

	t.Run("mutate two moves funds atomically", func(t *testing.T) {
		amount := domain.MoneyFromCents(1_000)
		a, b, err := s.MutateTwo(ctx, "123456", "789012", func(sender, recipient *domain.Account) error {
			debited, err := sender.Balance.Sub(amount)
			if err != nil {
				return err
			}
			sender.Balance = debited
			recipient.Balance = recipient.Balance.Add(amount)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, a.Balance.Cents(), testutil.GetAccountBalance(t, db, "123456"))
		assert.Equal(t, b.Balance.Cents(), testutil.GetAccountBalance(t, db, "789012"))
	})

	t.Run("opposing concurrent transfers preserve total", func(t *testing.T) {
		totalBefore := testutil.GetAccountBalance(t, db, "123456") +
			testutil.GetAccountBalance(t, db, "789012")

		move := func(from, to string) error {
			_, _, err := s.MutateTwo(ctx, from, to, func(a, b *domain.Account) error {
				debited, err := a.Balance.Sub(domain.MoneyFromCents(100))
				if err != nil {
					return err
				}
				a.Balance = debited
				b.Balance = b.Balance.Add(domain.MoneyFromCents(100))
				return nil
			})
			return err
		}

		const rounds = 20
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range rounds {
				assert.NoError(t, move("123456", "789012"))
			}
		}()
		go func() {
			defer wg.Done()
			for range rounds {
				assert.NoError(t, move("789012", "123456"))
			}
		}()
		wg.Wait()

		totalAfter := testutil.GetAccountBalance(t, db, "123456") +
			testutil.GetAccountBalance(t, db, "789012")
		assert.Equal(t, totalBefore, totalAfter)
	})
}
