package contextsvc

import (
	"context"

	"draftpad-backend/internal/domain"
)

// SearchResult is one ranked web-search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// RetrievalIndex is the retrieval-augmentation collaborator: a semantic
// index over the user's documents.
type RetrievalIndex interface {
	// EnsureFresh gives the index a chance to ingest recent writes before
	// querying.
	EnsureFresh(ctx context.Context, ownerScope string) error

	// Query returns the top-k documents semantically similar to the query
	// within an owner scope.
	Query(ctx context.Context, ownerScope, query string, topK int) ([]domain.Document, error)
}

// WebSearcher is the web-search collaborator.
type WebSearcher interface {
	Search(ctx context.Context, query string, count int) ([]SearchResult, error)
}
