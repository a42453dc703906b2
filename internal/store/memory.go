package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atmcore/ledger/internal/domain"
)

// MemoryStore keeps accounts in a map guarded by a registry lock, with a
// per-account mutex serializing mutations. Lock scope is limited to the
// in-memory read-modify-write; fn never runs while any I/O is pending.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*memAccount
}

type memAccount struct {
	mu   sync.Mutex
	acct domain.Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]*memAccount)}
}

func (s *MemoryStore) Get(_ context.Context, number string) (*domain.Account, error) {
	entry, err := s.lookup(number)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	snapshot := entry.acct
	return &snapshot, nil
}

func (s *MemoryStore) Create(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.Number]; exists {
		return fmt.Errorf("Create: account %s already exists", account.Number)
	}
	s.accounts[account.Number] = &memAccount{acct: *account}
	return nil
}

func (s *MemoryStore) Mutate(_ context.Context, number string, fn MutateFunc) (*domain.Account, error) {
	entry, err := s.lookup(number)
	if err != nil {
		return nil, fmt.Errorf("Mutate: %w", err)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	working := entry.acct
	if err := fn(&working); err != nil {
		return nil, err
	}
	commit(&working)
	entry.acct = working

	snapshot := working
	return &snapshot, nil
}

func (s *MemoryStore) MutateTwo(_ context.Context, numberA, numberB string, fn MutateTwoFunc) (*domain.Account, *domain.Account, error) {
	// Taking the same per-account mutex twice would self-deadlock.
	if numberA == numberB {
		return nil, nil, fmt.Errorf("MutateTwo: %w", domain.ErrSameAccount)
	}

	entryA, err := s.lookup(numberA)
	if err != nil {
		return nil, nil, fmt.Errorf("MutateTwo: %s: %w", numberA, err)
	}
	entryB, err := s.lookup(numberB)
	if err != nil {
		return nil, nil, fmt.Errorf("MutateTwo: %s: %w", numberB, err)
	}

	// Total order on account numbers prevents deadlock between opposing
	// transfers over the same pair.
	first, second := entryA, entryB
	if numberA > numberB {
		first, second = entryB, entryA
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	workingA := entryA.acct
	workingB := entryB.acct
	if err := fn(&workingA, &workingB); err != nil {
		return nil, nil, err
	}
	commit(&workingA)
	commit(&workingB)
	entryA.acct = workingA
	entryB.acct = workingB

	snapA, snapB := workingA, workingB
	return &snapA, &snapB, nil
}

func (s *MemoryStore) lookup(number string) (*memAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.accounts[number]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return entry, nil
}

func commit(a *domain.Account) {
	now := time.Now().UTC()
	a.Version++
	a.LastTransaction = &now
}
