package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/atmcore/ledger/internal/domain"
	"github.com/atmcore/ledger/internal/store"
)

// SeedAccount creates an account with the given balance in any AccountStore.
func SeedAccount(t *testing.T, s store.AccountStore, number string, cents int64) *domain.Account {
	t.Helper()

	a := &domain.Account{
		Number:    number,
		Balance:   domain.MoneyFromCents(cents),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Create(context.Background(), a); err != nil {
		t.Fatalf("seed account %s: %v", number, err)
	}
	return a
}

func GetAccountBalance(t *testing.T, db *sql.DB, number string) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(`SELECT balance FROM accounts WHERE account_number = $1`, number).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %s: %v", number, err)
	}
	return balance
}
