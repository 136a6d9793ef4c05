package reconcile

import (
	"context"
	"fmt"
	"strings"

	"draftpad-backend/internal/diff"
	"draftpad-backend/internal/domain"
	"draftpad-backend/internal/repository"

	"go.uber.org/zap"
)

// ImageGenerator is the media-generation collaborator.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// ObjectStore uploads generated media and returns a public URL.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
}

// MediaAttacher generates a cover image for album documents that lack one.
// Image generation and text edits are independent units of work: a media
// failure yields an explanatory note, never a rollback.
type MediaAttacher struct {
	images ImageGenerator
	store  ObjectStore
	logger *zap.Logger
}

// NewMediaAttacher creates a media attacher.
func NewMediaAttacher(images ImageGenerator, store ObjectStore, logger *zap.Logger) *MediaAttacher {
	return &MediaAttacher{images: images, store: store, logger: logger}
}

// Attach generates and uploads cover images for eligible documents, updates
// their content in place in result, and re-persists the touched documents.
// Returns a note describing any failure, or "" on success.
func (m *MediaAttacher) Attach(ctx context.Context, result *Result, repo repository.DocumentRepository) string {
	var touched []domain.Document
	for i := range result.Documents {
		doc := result.Documents[i]
		if !eligible(doc) {
			continue
		}

		data, err := m.images.Generate(ctx, imagePrompt(doc))
		if err != nil {
			m.logger.Warn("image generation failed",
				zap.String("document_id", doc.ID),
				zap.Error(err))
			return "Note: the cover image could not be generated this time; the text changes were saved."
		}

		url, err := m.store.Upload(ctx, "covers/"+doc.ID+".png", data)
		if err != nil {
			m.logger.Warn("image upload failed",
				zap.String("document_id", doc.ID),
				zap.Error(err))
			return "Note: the cover image could not be stored this time; the text changes were saved."
		}

		doc.Content = doc.Content + fmt.Sprintf("\n\n![cover](%s)", url)
		touched = append(touched, doc)

		result.Documents[i] = doc
		result.Changes[i].ContentAfter = doc.Content
		result.Changes[i].Summary = diff.LineSummary(result.Changes[i].ContentBefore, doc.Content)
	}

	if len(touched) == 0 {
		return ""
	}
	if err := repo.UpsertBatch(ctx, touched); err != nil {
		m.logger.Warn("failed to persist attached media", zap.Error(err))
		return "Note: the cover image could not be saved; the text changes were saved."
	}
	return ""
}

func eligible(doc domain.Document) bool {
	return doc.Kind == domain.KindAlbum && !strings.Contains(doc.Content, "![")
}

func imagePrompt(doc domain.Document) string {
	return "Cover illustration for: " + doc.Title
}
