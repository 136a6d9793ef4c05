// Package repository defines the persistence contracts the pipeline
// consumes and their shared error values. Concrete implementations live in
// the ddb and memory subpackages.
package repository

import (
	"context"
	"errors"

	"draftpad-backend/internal/domain"
)

// ErrDuplicateTask signals that a ledger entry with the same task id already
// exists. Callers treat it as "already billed", not as a failure.
var ErrDuplicateTask = errors.New("ledger entry already exists for task")

// ErrBalanceNotFound signals that no balance record exists for a user.
var ErrBalanceNotFound = errors.New("balance not found")

// DocumentRepository is the structured-document store contract.
type DocumentRepository interface {
	// GetByIDs loads the documents with the given ids, skipping unknown ids.
	GetByIDs(ctx context.Context, ids []string) ([]domain.Document, error)

	// UpsertBatch persists all documents as one batch write.
	UpsertBatch(ctx context.Context, docs []domain.Document) error

	// QueryByOwner returns up to limit documents in an owner scope.
	QueryByOwner(ctx context.Context, ownerScope string, limit int) ([]domain.Document, error)
}

// LedgerStore is the credit ledger contract. InsertEntry must be atomic on
// the task id uniqueness constraint; that constraint is the only mutual
// exclusion billing relies on.
type LedgerStore interface {
	// InsertEntry inserts a ledger entry keyed uniquely by task id.
	// Returns ErrDuplicateTask when an entry for the task already exists.
	InsertEntry(ctx context.Context, entry domain.LedgerEntry) error

	// GetBalance returns the user's current balance.
	GetBalance(ctx context.Context, userID string) (domain.Balance, error)

	// UpdateBalance sets the user's balance to the given credit amount.
	UpdateBalance(ctx context.Context, userID string, credits int) error
}

// AutomationStore persists inferred automations for the external scheduler.
type AutomationStore interface {
	Create(ctx context.Context, spec domain.AutomationSpec) error
	Get(ctx context.Context, id string) (domain.AutomationSpec, error)
}

// TurnRecorder appends turns to the conversation transcript. The transcript
// schema itself is owned by the chat history service; the pipeline only
// needs append.
type TurnRecorder interface {
	AppendTurn(ctx context.Context, userID string, turn domain.ChatTurn) error
}
