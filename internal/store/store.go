// Package store owns account records and their mutation discipline.
// Every balance change in the system flows through Mutate or MutateTwo;
// no other component writes balances.
package store

import (
	"context"

	"github.com/atmcore/ledger/internal/domain"
)

// MutateFunc is applied to a copy of the account while its exclusive
// lock is held. Returning nil commits the mutated copy; returning an
// error discards it and leaves the stored account untouched.
type MutateFunc func(a *domain.Account) error

// MutateTwoFunc is the joint variant used for transfers. Both mutations
// commit together or not at all.
type MutateTwoFunc func(a, b *domain.Account) error

type AccountStore interface {
	// Get returns a snapshot of the account, or domain.ErrAccountNotFound.
	Get(ctx context.Context, number string) (*domain.Account, error)

	// Create adds a new account record.
	Create(ctx context.Context, account *domain.Account) error

	// Mutate applies fn under the account's exclusive lock and returns
	// the committed state.
	Mutate(ctx context.Context, number string, fn MutateFunc) (*domain.Account, error)

	// MutateTwo applies fn under both accounts' locks, acquired in
	// ascending account-number order so that concurrent transfers moving
	// money in opposite directions cannot deadlock. The accounts must be
	// distinct; equal numbers fail with domain.ErrSameAccount.
	MutateTwo(ctx context.Context, numberA, numberB string, fn MutateTwoFunc) (*domain.Account, *domain.Account, error)
}
