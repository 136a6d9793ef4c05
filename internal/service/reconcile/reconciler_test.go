package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"draftpad-backend/internal/domain"
	"draftpad-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedDocs(t *testing.T, store *memory.DocumentStore, docs ...domain.Document) {
	t.Helper()
	require.NoError(t, store.UpsertBatch(context.Background(), docs))
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("ExactIDMatch", func(t *testing.T) {
		store := memory.NewDocumentStore()
		existing := domain.Document{ID: "d1", OwnerScope: "user:u1", Title: "Profile", Content: "old", Kind: domain.KindProfile}
		seedDocs(t, store, existing)
		r := NewReconciler(store, nil, zap.NewNop())

		result, err := r.Reconcile(ctx, []domain.EditProposal{
			{TargetID: "d1", Content: "new"},
		}, []domain.Document{existing}, "user:u1")

		require.NoError(t, err)
		require.Len(t, result.Changes, 1)
		assert.Equal(t, "d1", result.Changes[0].ID)
		assert.Equal(t, "old", result.Changes[0].ContentBefore)
		assert.Equal(t, "new", result.Changes[0].ContentAfter)
		assert.False(t, result.Changes[0].Created)

		stored, err := store.GetByIDs(ctx, []string{"d1"})
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "new", stored[0].Content)
	})

	t.Run("TitleMatchIsCaseInsensitive", func(t *testing.T) {
		store := memory.NewDocumentStore()
		a := domain.Document{ID: "d1", OwnerScope: "user:u1", Title: "Launch Post", Content: "a"}
		b := domain.Document{ID: "d2", OwnerScope: "user:u1", Title: "Other", Content: "b"}
		seedDocs(t, store, a, b)
		r := NewReconciler(store, nil, zap.NewNop())

		result, err := r.Reconcile(ctx, []domain.EditProposal{
			{TargetTitle: "  launch post ", Content: "updated"},
		}, []domain.Document{a, b}, "user:u1")

		require.NoError(t, err)
		require.Len(t, result.Changes, 1)
		assert.Equal(t, "d1", result.Changes[0].ID)
	})

	t.Run("SingleLoadedDocumentBinds", func(t *testing.T) {
		store := memory.NewDocumentStore()
		only := domain.Document{ID: "d1", OwnerScope: "user:u1", Title: "Notes", Content: "x"}
		seedDocs(t, store, only)
		r := NewReconciler(store, nil, zap.NewNop())

		result, err := r.Reconcile(ctx, []domain.EditProposal{
			{TargetTitle: "No Such Title", Content: "y"},
		}, []domain.Document{only}, "user:u1")

		require.NoError(t, err)
		require.Len(t, result.Changes, 1)
		assert.Equal(t, "d1", result.Changes[0].ID)
		assert.False(t, result.Changes[0].Created)
	})

	t.Run("NoLoadedDocumentsCreatesUnderCallerScope", func(t *testing.T) {
		store := memory.NewDocumentStore()
		r := NewReconciler(store, nil, zap.NewNop())

		result, err := r.Reconcile(ctx, []domain.EditProposal{
			{TargetTitle: "Fresh Post", Kind: "post", Content: "hello world"},
		}, nil, "user:u1")

		require.NoError(t, err)
		require.Len(t, result.Changes, 1)
		assert.True(t, result.Changes[0].Created)
		assert.NotEmpty(t, result.Changes[0].ID)
		assert.Equal(t, domain.KindPost, result.Changes[0].KindAfter)
		assert.Equal(t, "user:u1", result.Documents[0].OwnerScope)
		assert.Equal(t, 1, store.Count())
	})

	t.Run("CreationInheritsFirstLoadedOwner", func(t *testing.T) {
		store := memory.NewDocumentStore()
		a := domain.Document{ID: "d1", OwnerScope: "persona:p9", Title: "A", Content: "a"}
		b := domain.Document{ID: "d2", OwnerScope: "persona:p9", Title: "B", Content: "b"}
		seedDocs(t, store, a, b)
		r := NewReconciler(store, nil, zap.NewNop())

		result, err := r.Reconcile(ctx, []domain.EditProposal{
			{TargetTitle: "Brand New", Content: "c"},
		}, []domain.Document{a, b}, "user:u1")

		require.NoError(t, err)
		require.Len(t, result.Documents, 1)
		assert.Equal(t, "persona:p9", result.Documents[0].OwnerScope)
	})

	t.Run("LaterProposalForSameDocumentWins", func(t *testing.T) {
		store := memory.NewDocumentStore()
		existing := domain.Document{ID: "d1", OwnerScope: "user:u1", Title: "Notes", Content: "v0"}
		seedDocs(t, store, existing)
		r := NewReconciler(store, nil, zap.NewNop())

		result, err := r.Reconcile(ctx, []domain.EditProposal{
			{TargetID: "d1", Content: "v1"},
			{TargetID: "d1", Content: "v2"},
		}, []domain.Document{existing}, "user:u1")

		require.NoError(t, err)
		require.Len(t, result.Changes, 1)
		assert.Equal(t, "v0", result.Changes[0].ContentBefore)
		assert.Equal(t, "v2", result.Changes[0].ContentAfter)
	})

	t.Run("SecondProposalMatchesDocumentCreatedInSameRequest", func(t *testing.T) {
		store := memory.NewDocumentStore()
		a := domain.Document{ID: "d1", OwnerScope: "user:u1", Title: "A", Content: "a"}
		b := domain.Document{ID: "d2", OwnerScope: "user:u1", Title: "B", Content: "b"}
		seedDocs(t, store, a, b)
		r := NewReconciler(store, nil, zap.NewNop())

		result, err := r.Reconcile(ctx, []domain.EditProposal{
			{TargetTitle: "Series Intro", Content: "part one"},
			{TargetTitle: "series intro", Content: "part one, revised"},
		}, []domain.Document{a, b}, "user:u1")

		require.NoError(t, err)
		require.Len(t, result.Changes, 1)
		assert.True(t, result.Changes[0].Created)
		assert.Equal(t, "part one, revised", result.Changes[0].ContentAfter)
	})

	t.Run("EmptyProposalsIsNoOp", func(t *testing.T) {
		store := memory.NewDocumentStore()
		r := NewReconciler(store, nil, zap.NewNop())

		result, err := r.Reconcile(ctx, nil, nil, "user:u1")
		require.NoError(t, err)
		assert.Empty(t, result.Documents)
		assert.Equal(t, 0, store.Count())
	})
}

type stubImages struct {
	data []byte
	err  error
}

func (s *stubImages) Generate(ctx context.Context, prompt string) ([]byte, error) {
	return s.data, s.err
}

type stubObjects struct {
	url string
	err error
}

func (s *stubObjects) Upload(ctx context.Context, key string, data []byte) (string, error) {
	return s.url, s.err
}

func TestMediaAttach(t *testing.T) {
	ctx := context.Background()

	albumProposal := []domain.EditProposal{
		{TargetTitle: "Summer Album", Kind: "album", Content: "photos from the trip"},
	}

	t.Run("AttachesCoverToNewAlbum", func(t *testing.T) {
		store := memory.NewDocumentStore()
		media := NewMediaAttacher(&stubImages{data: []byte{1}}, &stubObjects{url: "https://cdn.example.com/c.png"}, zap.NewNop())
		r := NewReconciler(store, media, zap.NewNop())

		result, err := r.Reconcile(ctx, albumProposal, nil, "user:u1")
		require.NoError(t, err)
		assert.Empty(t, result.MediaNote)
		assert.Contains(t, result.Documents[0].Content, "https://cdn.example.com/c.png")
		assert.Contains(t, result.Changes[0].ContentAfter, "![cover]")

		// The audit summary covers the attached cover line too.
		summarized := false
		for _, line := range result.Changes[0].Summary {
			if strings.Contains(line.Text, "![cover]") {
				summarized = true
			}
		}
		assert.True(t, summarized, "line summary must include the attached cover")
	})

	t.Run("GenerationFailureLeavesTextEdits", func(t *testing.T) {
		store := memory.NewDocumentStore()
		media := NewMediaAttacher(&stubImages{err: errors.New("no capacity")}, &stubObjects{}, zap.NewNop())
		r := NewReconciler(store, media, zap.NewNop())

		result, err := r.Reconcile(ctx, albumProposal, nil, "user:u1")
		require.NoError(t, err)
		assert.NotEmpty(t, result.MediaNote)

		stored, err := store.GetByIDs(ctx, []string{result.Documents[0].ID})
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "photos from the trip", stored[0].Content)
	})

	t.Run("NonAlbumDocumentsAreSkipped", func(t *testing.T) {
		store := memory.NewDocumentStore()
		media := NewMediaAttacher(&stubImages{data: []byte{1}}, &stubObjects{url: "https://cdn.example.com/c.png"}, zap.NewNop())
		r := NewReconciler(store, media, zap.NewNop())

		result, err := r.Reconcile(ctx, []domain.EditProposal{
			{TargetTitle: "Plain Post", Kind: "post", Content: "text"},
		}, nil, "user:u1")
		require.NoError(t, err)
		assert.NotContains(t, result.Documents[0].Content, "![")
	})
}

func TestPlanDoesNotPersist(t *testing.T) {
	store := memory.NewDocumentStore()
	r := NewReconciler(store, nil, zap.NewNop())

	result := r.Plan([]domain.EditProposal{{TargetTitle: "Drafted", Content: "body"}}, nil, "user:u1")
	require.Len(t, result.Documents, 1)
	assert.Equal(t, 0, store.Count(), "planning must not touch the store")

	require.NoError(t, r.Persist(context.Background(), &result))
	assert.Equal(t, 1, store.Count())
}

func TestReconcileRefreshesTimestamp(t *testing.T) {
	store := memory.NewDocumentStore()
	old := time.Now().Add(-time.Hour)
	existing := domain.Document{ID: "d1", OwnerScope: "user:u1", Title: "Notes", Content: "x", UpdatedAt: old}
	seedDocs(t, store, existing)
	r := NewReconciler(store, nil, zap.NewNop())

	result, err := r.Reconcile(context.Background(), []domain.EditProposal{
		{TargetID: "d1", Content: "y"},
	}, []domain.Document{existing}, "user:u1")

	require.NoError(t, err)
	assert.True(t, result.Documents[0].UpdatedAt.After(old))
}
