// Package reconcile matches proposed document edits to existing documents
// (or decides to create new ones), persists the result as a single batch,
// and optionally attaches generated media.
package reconcile

import (
	"context"
	"strings"
	"time"

	"draftpad-backend/internal/diff"
	"draftpad-backend/internal/domain"
	"draftpad-backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Result is the outcome of reconciling one request's proposals.
type Result struct {
	Documents []domain.Document
	Changes   []domain.DocumentChange
	// MediaNote explains a failed image attachment; it is appended to the
	// reply and never rolls back text edits.
	MediaNote string
}

// Reconciler resolves edit proposals against loaded documents.
type Reconciler struct {
	docs   repository.DocumentRepository
	media  *MediaAttacher
	logger *zap.Logger
	now    func() time.Time
}

// NewReconciler creates a reconciler. media may be nil when image
// attachment is disabled.
func NewReconciler(docs repository.DocumentRepository, media *MediaAttacher, logger *zap.Logger) *Reconciler {
	return &Reconciler{docs: docs, media: media, logger: logger, now: time.Now}
}

// Reconcile plans and persists in one call.
func (r *Reconciler) Reconcile(ctx context.Context, proposals []domain.EditProposal, loaded []domain.Document, fallbackScope string) (Result, error) {
	result := r.Plan(proposals, loaded, fallbackScope)
	if err := r.Persist(ctx, &result); err != nil {
		return Result{}, err
	}
	return result, nil
}

// Plan resolves each proposal against the loaded documents and computes
// the before/after pairs, without touching the store. The caller can show
// the draft result before persistence confirms it.
//
// Resolution order per proposal: exact id match, then case-insensitive
// trimmed title match, then single-loaded-document binding, then creation
// under the first loaded document's owner (or fallbackScope when none were
// loaded).
func (r *Reconciler) Plan(proposals []domain.EditProposal, loaded []domain.Document, fallbackScope string) Result {
	if len(proposals) == 0 {
		return Result{}
	}

	working := make([]domain.Document, len(loaded))
	copy(working, loaded)

	var result Result
	updated := make(map[string]int) // doc id -> index into result.Documents

	for _, proposal := range proposals {
		target, found := resolve(proposal, working, len(loaded))

		var before domain.Document
		if found {
			before = target
		} else {
			target = domain.Document{
				ID:         uuid.New().String(),
				OwnerScope: scopeForNew(loaded, fallbackScope),
				Kind:       domain.KindGeneric,
			}
		}

		target.Content = proposal.Content
		if proposal.TargetTitle != "" {
			target.Title = proposal.TargetTitle
		}
		if target.Title == "" {
			target.Title = deriveTitle(proposal.Content)
		}
		if proposal.Kind != "" {
			target.Kind = domain.DocumentKind(proposal.Kind)
		}
		target.UpdatedAt = r.now()

		change := domain.DocumentChange{
			ID:            target.ID,
			TitleBefore:   before.Title,
			TitleAfter:    target.Title,
			ContentBefore: before.Content,
			ContentAfter:  target.Content,
			KindBefore:    before.Kind,
			KindAfter:     target.Kind,
			Created:       !found,
			Summary:       diff.LineSummary(before.Content, target.Content),
		}

		if idx, exists := updated[target.ID]; exists {
			// A later proposal for the same document wins; keep the
			// original "before" side of the change.
			change.TitleBefore = result.Changes[idx].TitleBefore
			change.ContentBefore = result.Changes[idx].ContentBefore
			change.KindBefore = result.Changes[idx].KindBefore
			change.Created = result.Changes[idx].Created
			change.Summary = diff.LineSummary(change.ContentBefore, change.ContentAfter)
			result.Documents[idx] = target
			result.Changes[idx] = change
		} else {
			updated[target.ID] = len(result.Documents)
			result.Documents = append(result.Documents, target)
			result.Changes = append(result.Changes, change)
		}

		if !found {
			// Newly created documents participate in matching for
			// subsequent proposals of the same request.
			working = append(working, target)
		} else {
			for i := range working {
				if working[i].ID == target.ID {
					working[i] = target
					break
				}
			}
		}
	}

	return result
}

// Persist writes the planned documents as a single batch upsert, then
// attempts media attachment. Persistence failure is fatal; media failure
// only sets MediaNote.
func (r *Reconciler) Persist(ctx context.Context, result *Result) error {
	if len(result.Documents) == 0 {
		return nil
	}

	if err := r.docs.UpsertBatch(ctx, result.Documents); err != nil {
		return err
	}

	if r.media != nil {
		result.MediaNote = r.media.Attach(ctx, result, r.docs)
	}
	return nil
}

// resolve finds the document a proposal targets, if any. loadedCount is
// the number of documents that came from the request's attachments; the
// single-document binding rule only applies to those.
func resolve(proposal domain.EditProposal, working []domain.Document, loadedCount int) (domain.Document, bool) {
	if proposal.TargetID != "" {
		for _, doc := range working {
			if doc.ID == proposal.TargetID {
				return doc, true
			}
		}
		return domain.Document{}, false
	}

	if proposal.TargetTitle != "" {
		wanted := domain.NormalizeTitle(proposal.TargetTitle)
		for _, doc := range working {
			if domain.NormalizeTitle(doc.Title) == wanted {
				return doc, true
			}
		}
	}

	// No id and no title match: a request that attached exactly one
	// document can only mean that document.
	if loadedCount == 1 && len(working) >= 1 {
		return working[0], true
	}

	return domain.Document{}, false
}

func scopeForNew(loaded []domain.Document, fallbackScope string) string {
	if len(loaded) > 0 {
		return loaded[0].OwnerScope
	}
	return fallbackScope
}

func deriveTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line != "" {
			if runes := []rune(line); len(runes) > 64 {
				return string(runes[:64])
			}
			return line
		}
	}
	return "Untitled"
}
