package memory

import (
	"context"
	"sync"

	"draftpad-backend/internal/domain"
)

// TurnLog is an in-memory TurnRecorder.
type TurnLog struct {
	mu    sync.RWMutex
	turns map[string][]domain.ChatTurn
}

// NewTurnLog creates an empty in-memory turn log.
func NewTurnLog() *TurnLog {
	return &TurnLog{turns: make(map[string][]domain.ChatTurn)}
}

// AppendTurn implements repository.TurnRecorder.
func (l *TurnLog) AppendTurn(ctx context.Context, userID string, turn domain.ChatTurn) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns[userID] = append(l.turns[userID], turn)
	return nil
}

// Turns returns the recorded turns for a user. Test helper.
func (l *TurnLog) Turns(userID string) []domain.ChatTurn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	recorded := l.turns[userID]
	out := make([]domain.ChatTurn, len(recorded))
	copy(out, recorded)
	return out
}
