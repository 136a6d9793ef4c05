// Package billing deducts usage credits for completed model calls exactly
// once per logical task id. Insert-first-then-update against a unique task
// id is what keeps billing idempotent under at-least-once delivery.
package billing

import (
	"context"
	"errors"
	"time"

	"draftpad-backend/internal/domain"
	"draftpad-backend/internal/repository"

	"go.uber.org/zap"
)

// CostFunc maps a model key to its credit cost.
type CostFunc func(modelKey string) int

// Receipt reports the outcome of a charge attempt. A billing failure is
// reported as zero credits charged; it never blocks delivery of the reply.
type Receipt struct {
	CreditsCharged int  `json:"credits_charged"`
	AlreadyBilled  bool `json:"already_billed"`
	NewBalance     int  `json:"new_balance"`
}

// Service charges credit balances through the ledger store.
type Service struct {
	store  repository.LedgerStore
	cost   CostFunc
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a billing service.
func NewService(store repository.LedgerStore, cost CostFunc, logger *zap.Logger) *Service {
	return &Service{store: store, cost: cost, logger: logger, now: time.Now}
}

// Charge bills one completed model call for the given task id. Zero-cost
// models are skipped. A uniqueness conflict on the task id means the task
// was already billed (a retried or reconnected request) and yields a no-op
// receipt.
func (s *Service) Charge(ctx context.Context, taskID, userID, modelKey string) Receipt {
	cost := s.cost(modelKey)
	if cost <= 0 {
		return Receipt{}
	}

	balance, err := s.store.GetBalance(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrBalanceNotFound) {
		s.logger.Error("billing skipped: balance unavailable",
			zap.String("task_id", taskID),
			zap.String("user_id", userID),
			zap.Error(err))
		return Receipt{}
	}

	resulting := balance.Credits - cost
	entry := domain.LedgerEntry{
		TaskID:           taskID,
		UserID:           userID,
		Delta:            -cost,
		ResultingBalance: resulting,
		CreatedAt:        s.now(),
	}

	if err := s.store.InsertEntry(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateTask) {
			return Receipt{AlreadyBilled: true, NewBalance: balance.Credits}
		}
		s.logger.Error("billing skipped: ledger insert failed",
			zap.String("task_id", taskID),
			zap.String("user_id", userID),
			zap.Error(err))
		return Receipt{}
	}

	if err := s.store.UpdateBalance(ctx, userID, resulting); err != nil {
		// The ledger row exists, so a retry of the same task will not
		// double-charge; the balance record catches up on the next write.
		s.logger.Error("balance update failed after ledger insert",
			zap.String("task_id", taskID),
			zap.String("user_id", userID),
			zap.Error(err))
	}

	return Receipt{CreditsCharged: cost, NewBalance: resulting}
}
