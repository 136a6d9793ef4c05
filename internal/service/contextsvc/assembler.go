// Package contextsvc assembles the bounded prompt context for a chat-edit
// request: attached documents, retrieval-augmented candidates, and
// web-search snippets. Retrieval and search failures are non-fatal; they
// degrade to "no extra context" and surface a machine-readable tag.
package contextsvc

import (
	"context"
	"time"

	"draftpad-backend/internal/cache"
	"draftpad-backend/internal/domain"
	"draftpad-backend/internal/repository"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Machine-readable degradation tags surfaced to the caller instead of raw
// upstream errors.
const (
	TagRetrievalUnavailable = "retrieval_unavailable"
	TagSearchUnavailable    = "search_unavailable"
)

// Options bounds the assembled context.
type Options struct {
	EnableRetrieval bool
	EnableWebSearch bool
	HeadChars       int
	TailChars       int
	RetrievalTopK   int
	SearchCount     int
	RetrievalBudget time.Duration
	SearchBudget    time.Duration
}

// Assembled is the bounded context handed to prompt building.
type Assembled struct {
	Documents     []domain.Document
	AttachedCount int
	SearchResults []SearchResult
	// Warnings carries degradation tags, not raw errors.
	Warnings []string
}

// Assembler gathers context from the document store and the optional
// retrieval and search collaborators.
type Assembler struct {
	docs        repository.DocumentRepository
	retrieval   RetrievalIndex
	search      WebSearcher
	results     *cache.Cache
	retrievalCB *gobreaker.CircuitBreaker
	searchCB    *gobreaker.CircuitBreaker
	logger      *zap.Logger
}

// retrievalResultTTL bounds how long retrieval candidates are reused for
// the same owner and instruction, so rapid follow-up turns skip the index.
const retrievalResultTTL = 30 * time.Second

// NewAssembler creates an assembler. Retrieval and search collaborators may
// be nil when the corresponding features are disabled; results may be nil
// to disable retrieval-result caching.
func NewAssembler(docs repository.DocumentRepository, retrieval RetrievalIndex, search WebSearcher, results *cache.Cache, logger *zap.Logger) *Assembler {
	return &Assembler{
		docs:      docs,
		retrieval: retrieval,
		search:    search,
		results:   results,
		retrievalCB: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "retrieval-index",
			Timeout: 30 * time.Second,
		}),
		searchCB: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "web-search",
			Timeout: 30 * time.Second,
		}),
		logger: logger,
	}
}

// Assemble loads attached documents, merges retrieval candidates and
// fetches search snippets, within the given options.
func (a *Assembler) Assemble(ctx context.Context, instruction string, history []domain.ChatTurn, attachedIDs []string, ownerScope string, opts Options) (Assembled, error) {
	attached, err := a.docs.GetByIDs(ctx, attachedIDs)
	if err != nil {
		return Assembled{}, err
	}

	assembled := Assembled{AttachedCount: len(attached)}
	seen := make(map[string]bool, len(attached))
	for _, doc := range attached {
		doc.Content = truncateHeadTail(doc.Content, opts.HeadChars, opts.TailChars)
		assembled.Documents = append(assembled.Documents, doc)
		seen[doc.ID] = true
	}

	if opts.EnableRetrieval && a.retrieval != nil {
		candidates, tag := a.retrieve(ctx, instruction, ownerScope, opts)
		if tag != "" {
			assembled.Warnings = append(assembled.Warnings, tag)
		}
		for _, doc := range candidates {
			if seen[doc.ID] {
				continue
			}
			doc.Content = truncateHeadTail(doc.Content, opts.HeadChars, opts.TailChars)
			assembled.Documents = append(assembled.Documents, doc)
			seen[doc.ID] = true
		}
	}

	if opts.EnableWebSearch && a.search != nil {
		results, tag := a.webSearch(ctx, instruction, history, assembled.Documents[:assembled.AttachedCount], opts)
		if tag != "" {
			assembled.Warnings = append(assembled.Warnings, tag)
		}
		assembled.SearchResults = results
	}

	return assembled, nil
}

func (a *Assembler) retrieve(ctx context.Context, instruction, ownerScope string, opts Options) ([]domain.Document, string) {
	cacheKey := "retrieval:" + ownerScope + ":" + instruction
	if a.results != nil {
		if cached, ok := a.results.Get(cacheKey); ok {
			return cached.([]domain.Document), ""
		}
	}

	subCtx, cancel := context.WithTimeout(ctx, opts.RetrievalBudget)
	defer cancel()

	result, err := a.retrievalCB.Execute(func() (interface{}, error) {
		if err := a.retrieval.EnsureFresh(subCtx, ownerScope); err != nil {
			return nil, err
		}
		return a.retrieval.Query(subCtx, ownerScope, instruction, opts.RetrievalTopK)
	})
	if err != nil {
		a.logger.Warn("retrieval degraded to empty context",
			zap.String("owner_scope", ownerScope),
			zap.Error(err))
		return nil, TagRetrievalUnavailable
	}

	candidates := result.([]domain.Document)
	if a.results != nil {
		a.results.Set(cacheKey, candidates, retrievalResultTTL)
	}
	return candidates, ""
}

func (a *Assembler) webSearch(ctx context.Context, instruction string, history []domain.ChatTurn, attached []domain.Document, opts Options) ([]SearchResult, string) {
	subCtx, cancel := context.WithTimeout(ctx, opts.SearchBudget)
	defer cancel()

	query := DeriveSearchQuery(instruction, history, attached)

	result, err := a.searchCB.Execute(func() (interface{}, error) {
		return a.search.Search(subCtx, query, opts.SearchCount)
	})
	if err != nil {
		a.logger.Warn("web search degraded to empty context",
			zap.String("query", query),
			zap.Error(err))
		return nil, TagSearchUnavailable
	}
	return result.([]SearchResult), ""
}

// truncateHeadTail caps a single document's text to a head+tail window so
// one large document cannot blow the prompt budget.
func truncateHeadTail(content string, headChars, tailChars int) string {
	if headChars <= 0 {
		return content
	}
	runes := []rune(content)
	if len(runes) <= headChars+tailChars {
		return content
	}
	head := string(runes[:headChars])
	if tailChars <= 0 {
		return head + "\n…\n"
	}
	tail := string(runes[len(runes)-tailChars:])
	return head + "\n…\n" + tail
}
