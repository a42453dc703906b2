package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atmcore/ledger/internal/domain"
)

const accountColumns = `account_number, balance, version, created_at, last_transaction`

// PostgresStore implements AccountStore on a SQL database, using
// SELECT ... FOR UPDATE row locks in place of the in-memory per-account
// mutex. Lock acquisition order matches MemoryStore: ascending account
// number.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, number string) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`, number,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("Get: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) Create(ctx context.Context, account *domain.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (account_number, balance, version, created_at, last_transaction)
		 VALUES ($1, $2, $3, $4, $5)`,
		account.Number, account.Balance.Cents(), account.Version,
		account.CreatedAt, account.LastTransaction,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (s *PostgresStore) Mutate(ctx context.Context, number string, fn MutateFunc) (*domain.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Mutate: begin tx: %w", err)
	}
	defer tx.Rollback()

	a, err := getForUpdate(ctx, tx, number)
	if err != nil {
		return nil, fmt.Errorf("Mutate: %w", err)
	}

	if err := fn(a); err != nil {
		return nil, err
	}

	if err := updateAccount(ctx, tx, a); err != nil {
		return nil, fmt.Errorf("Mutate: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Mutate: commit: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) MutateTwo(ctx context.Context, numberA, numberB string, fn MutateTwoFunc) (*domain.Account, *domain.Account, error) {
	// Two copies of one row would race each other's version bump.
	if numberA == numberB {
		return nil, nil, fmt.Errorf("MutateTwo: %w", domain.ErrSameAccount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("MutateTwo: begin tx: %w", err)
	}
	defer tx.Rollback()

	first, second := numberA, numberB
	if numberA > numberB {
		first, second = numberB, numberA
	}

	firstAcct, err := getForUpdate(ctx, tx, first)
	if err != nil {
		return nil, nil, fmt.Errorf("MutateTwo: %s: %w", first, err)
	}
	secondAcct, err := getForUpdate(ctx, tx, second)
	if err != nil {
		return nil, nil, fmt.Errorf("MutateTwo: %s: %w", second, err)
	}

	a, b := firstAcct, secondAcct
	if first != numberA {
		a, b = secondAcct, firstAcct
	}

	if err := fn(a, b); err != nil {
		return nil, nil, err
	}

	if err := updateAccount(ctx, tx, a); err != nil {
		return nil, nil, fmt.Errorf("MutateTwo: %w", err)
	}
	if err := updateAccount(ctx, tx, b); err != nil {
		return nil, nil, fmt.Errorf("MutateTwo: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("MutateTwo: commit: %w", err)
	}
	return a, b, nil
}

func getForUpdate(ctx context.Context, tx *sql.Tx, number string) (*domain.Account, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_number = $1 FOR UPDATE`, number,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return a, nil
}

func updateAccount(ctx context.Context, tx *sql.Tx, a *domain.Account) error {
	now := time.Now().UTC()
	a.Version++
	a.LastTransaction = &now

	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = $1, version = $2, last_transaction = $3
		 WHERE account_number = $4 AND version = $5`,
		a.Balance.Cents(), a.Version, a.LastTransaction, a.Number, a.Version-1,
	)
	if err != nil {
		return fmt.Errorf("updateAccount: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updateAccount: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("updateAccount: %w", domain.ErrVersionConflict)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*domain.Account, error) {
	var (
		a     domain.Account
		cents int64
	)
	err := s.Scan(&a.Number, &cents, &a.Version, &a.CreatedAt, &a.LastTransaction)
	if err != nil {
		return nil, err
	}
	a.Balance = domain.MoneyFromCents(cents)
	return &a, nil
}
