package memory

import (
	"context"
	"sync"
	"time"

	"draftpad-backend/internal/domain"
	"draftpad-backend/internal/repository"
)

// LedgerStore is an in-memory LedgerStore. The map insert under the write
// lock stands in for the uniqueness constraint a real store provides.
type LedgerStore struct {
	mu       sync.Mutex
	entries  map[string]domain.LedgerEntry
	balances map[string]domain.Balance

	// failInsert simulates an unavailable store in tests.
	failInsert error
}

// NewLedgerStore creates an empty in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		entries:  make(map[string]domain.LedgerEntry),
		balances: make(map[string]domain.Balance),
	}
}

// SeedBalance sets a user's starting balance.
func (s *LedgerStore) SeedBalance(userID string, credits int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] = domain.Balance{UserID: userID, Credits: credits, UpdatedAt: time.Now()}
}

// FailInserts makes subsequent InsertEntry calls return err.
func (s *LedgerStore) FailInserts(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failInsert = err
}

// InsertEntry implements repository.LedgerStore.
func (s *LedgerStore) InsertEntry(ctx context.Context, entry domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failInsert != nil {
		return s.failInsert
	}
	if _, exists := s.entries[entry.TaskID]; exists {
		return repository.ErrDuplicateTask
	}
	s.entries[entry.TaskID] = entry
	return nil
}

// GetBalance implements repository.LedgerStore.
func (s *LedgerStore) GetBalance(ctx context.Context, userID string) (domain.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, exists := s.balances[userID]
	if !exists {
		return domain.Balance{}, repository.ErrBalanceNotFound
	}
	return balance, nil
}

// UpdateBalance implements repository.LedgerStore.
func (s *LedgerStore) UpdateBalance(ctx context.Context, userID string, credits int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[userID] = domain.Balance{UserID: userID, Credits: credits, UpdatedAt: time.Now()}
	return nil
}

// EntryCount returns the number of ledger entries. Test helper.
func (s *LedgerStore) EntryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
