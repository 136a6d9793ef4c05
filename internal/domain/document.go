// Package domain holds the core types of the chat-edit pipeline.
package domain

import (
	"strings"
	"time"

	"draftpad-backend/internal/diff"
)

// DocumentKind classifies the structured documents the agent can edit.
type DocumentKind string

const (
	KindProfile DocumentKind = "profile"
	KindPost    DocumentKind = "post"
	KindAlbum   DocumentKind = "album"
	KindGeneric DocumentKind = "generic"
)

// Document is a structured document owned by a user or a persona.
// Identity is stable across edits; UpdatedAt is the optimistic-concurrency
// signal used by the store's last-write-wins semantics.
type Document struct {
	ID         string       `json:"id"`
	OwnerScope string       `json:"owner_scope"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	Kind       DocumentKind `json:"kind"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// ChatTurn is one entry of a conversation history. Immutable once recorded.
type ChatTurn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// EditProposal is a proposed document edit as parsed from model output,
// before reconciliation. TargetID and TargetTitle are optional; absence
// triggers fallback matching in the reconciler.
type EditProposal struct {
	TargetID    string `json:"target_id"`
	TargetTitle string `json:"target_title"`
	Kind        string `json:"kind"`
	Content     string `json:"content"`
}

// DocumentChange is a reconciled, persisted delta returned to the caller
// for audit and visualization. Summary is a line-level rendering of the
// content change.
type DocumentChange struct {
	ID            string       `json:"id"`
	TitleBefore   string       `json:"title_before"`
	TitleAfter    string       `json:"title_after"`
	ContentBefore string       `json:"content_before"`
	ContentAfter  string       `json:"content_after"`
	KindBefore    DocumentKind `json:"kind_before"`
	KindAfter     DocumentKind `json:"kind_after"`
	Created       bool         `json:"created"`
	Summary       []diff.Line  `json:"summary,omitempty"`
}

// NormalizeTitle is the comparison key used for title-fallback matching:
// case-insensitive and trimmed, otherwise exact.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
