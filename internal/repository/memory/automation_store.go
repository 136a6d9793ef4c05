package memory

import (
	"context"
	"sync"

	"draftpad-backend/internal/domain"

	appErrors "draftpad-backend/pkg/errors"
)

// AutomationStore is an in-memory AutomationStore.
type AutomationStore struct {
	mu    sync.RWMutex
	specs map[string]domain.AutomationSpec
}

// NewAutomationStore creates an empty in-memory automation store.
func NewAutomationStore() *AutomationStore {
	return &AutomationStore{specs: make(map[string]domain.AutomationSpec)}
}

// Create implements repository.AutomationStore.
func (s *AutomationStore) Create(ctx context.Context, spec domain.AutomationSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs[spec.ID] = spec
	return nil
}

// Get implements repository.AutomationStore.
func (s *AutomationStore) Get(ctx context.Context, id string) (domain.AutomationSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spec, exists := s.specs[id]
	if !exists {
		return domain.AutomationSpec{}, appErrors.NewNotFound("automation not found: " + id)
	}
	return spec, nil
}

// Count returns the number of stored automations. Test helper.
func (s *AutomationStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.specs)
}
