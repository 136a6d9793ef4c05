package domain

import "time"

// LedgerEntry records one credit deduction. TaskID is the idempotency key:
// at most one entry per logical task id ever exists, and a uniqueness
// violation on insert means "already billed", not an error.
type LedgerEntry struct {
	TaskID           string    `json:"task_id"`
	UserID           string    `json:"user_id"`
	Delta            int       `json:"delta"`
	ResultingBalance int       `json:"resulting_balance"`
	CreatedAt        time.Time `json:"created_at"`
}

// Balance is a user's current credit balance.
type Balance struct {
	UserID    string    `json:"user_id"`
	Credits   int       `json:"credits"`
	UpdatedAt time.Time `json:"updated_at"`
}
