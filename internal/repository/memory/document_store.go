// Package memory provides in-memory implementations of the persistence
// contracts, used by tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"draftpad-backend/internal/domain"
)

// DocumentStore is an in-memory DocumentRepository.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

// NewDocumentStore creates an empty in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]domain.Document)}
}

// GetByIDs implements repository.DocumentRepository.
func (s *DocumentStore) GetByIDs(ctx context.Context, ids []string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Document
	for _, id := range ids {
		if doc, ok := s.docs[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

// UpsertBatch implements repository.DocumentRepository. Writes follow
// last-write-wins-by-timestamp semantics.
func (s *DocumentStore) UpsertBatch(ctx context.Context, docs []domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		current, exists := s.docs[doc.ID]
		if exists && current.UpdatedAt.After(doc.UpdatedAt) {
			continue
		}
		s.docs[doc.ID] = doc
	}
	return nil
}

// QueryByOwner implements repository.DocumentRepository.
func (s *DocumentStore) QueryByOwner(ctx context.Context, ownerScope string, limit int) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Document
	for _, doc := range s.docs {
		if doc.OwnerScope == ownerScope {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count returns the number of stored documents. Test helper.
func (s *DocumentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
