package matcher

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/checklist"
	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/embedding"
	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/storage"
)

const testDims = 16

func newTestMatcher(t *testing.T, dbPath string, opts ...Option) (*Matcher, *embedding.MockVectorizer) {
	t.Helper()
	mock := embedding.NewMockVectorizer(testDims)
	embedder := embedding.NewEmbedder(mock, embedding.NewCache(100))
	store, err := storage.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return New(embedder, store, opts...), mock
}

func testItems() []checklist.Item {
	return []checklist.Item{
		{
			ID:          "SOL-RE-1",
			Category:    "Reentrancy",
			Question:    "Is the checks-effects-interactions pattern followed?",
			Description: "State updates after external calls can be re-entered.",
			Remediation: "Update state before external calls.",
		},
		{
			ID:       "SOL-AC-1",
			Category: "Access Control",
			Question: "Are privileged functions gated by access control?",
		},
		{
			ID:       "SOL-OR-1",
			Category: "Oracle",
			Question: "Are price feeds resistant to single-block manipulation?",
		},
	}
}

func TestMatcher_SyncThenMatch(t *testing.T) {
	m, _ := newTestMatcher(t, filepath.Join(t.TempDir(), "m.db"))
	ctx := context.Background()

	stats, err := m.Sync(ctx, testItems(), false)
	require.NoError(t, err)
	assert.Equal(t, SyncStats{Total: 3, Added: 3}, stats)
	assert.Equal(t, 3, m.Size())

	// A query identical to an item's embedding text must rank that item
	// first with similarity 1.
	query := testItems()[0].EmbeddingText()
	results := m.Match(ctx, query, 3)
	require.Len(t, results, 3)
	assert.Equal(t, "SOL-RE-1", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
}

func TestMatcher_MatchBlankQuery(t *testing.T) {
	m, mock := newTestMatcher(t, filepath.Join(t.TempDir(), "m.db"))
	ctx := context.Background()
	_, err := m.Sync(ctx, testItems(), false)
	require.NoError(t, err)

	calls := mock.Calls()
	assert.Empty(t, m.Match(ctx, "", 5))
	assert.Empty(t, m.Match(ctx, "   \t", 5))
	assert.Equal(t, calls, mock.Calls(), "blank queries should not reach the vectorizer")
}

func TestMatcher_MatchEmptyCorpus(t *testing.T) {
	m, _ := newTestMatcher(t, filepath.Join(t.TempDir(), "m.db"))
	assert.Empty(t, m.Match(context.Background(), "anything", 5))
}

func TestMatcher_MatchTopKCaps(t *testing.T) {
	m, _ := newTestMatcher(t, filepath.Join(t.TempDir(), "m.db"))
	ctx := context.Background()
	_, err := m.Sync(ctx, testItems(), false)
	require.NoError(t, err)

	assert.Len(t, m.Match(ctx, "reentrancy", 2), 2)
	assert.Len(t, m.Match(ctx, "reentrancy", 50), 3)
	assert.Empty(t, m.Match(ctx, "reentrancy", 0))
}

func TestMatcher_MinScoreFilters(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	strict, _ := newTestMatcher(t, filepath.Join(dir, "strict.db"), WithMinScore(0.9999))
	_, err := strict.Sync(ctx, testItems(), false)
	require.NoError(t, err)

	query := testItems()[0].EmbeddingText()
	results := strict.Match(ctx, query, 10)
	require.Len(t, results, 1, "only the exact match should clear the threshold")
	assert.Equal(t, "SOL-RE-1", results[0].ID)

	open, _ := newTestMatcher(t, filepath.Join(dir, "open.db"))
	_, err = open.Sync(ctx, testItems(), false)
	require.NoError(t, err)
	assert.Len(t, open.Match(ctx, query, 10), 3)
}

func TestMatcher_ResyncReusesStoredEmbeddings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	ctx := context.Background()

	first, mock1 := newTestMatcher(t, path)
	_, err := first.Sync(ctx, testItems(), false)
	require.NoError(t, err)
	assert.Positive(t, mock1.Calls())

	// A fresh process with a cold cache must still skip unchanged items:
	// reuse is keyed on the stored fingerprint, not the in-memory cache.
	second, mock2 := newTestMatcher(t, path)
	stats, err := second.Sync(ctx, testItems(), false)
	require.NoError(t, err)
	assert.Equal(t, SyncStats{Total: 3, Unchanged: 3}, stats)
	assert.Zero(t, mock2.Calls())
}

func TestMatcher_SyncDetectsChangedText(t *testing.T) {
	m, _ := newTestMatcher(t, filepath.Join(t.TempDir(), "m.db"))
	ctx := context.Background()
	_, err := m.Sync(ctx, testItems(), false)
	require.NoError(t, err)

	changed := testItems()
	changed[1].Question = "Are privileged functions gated by a timelock?"
	stats, err := m.Sync(ctx, changed, false)
	require.NoError(t, err)
	assert.Equal(t, SyncStats{Total: 3, Updated: 1, Unchanged: 2}, stats)
}

func TestMatcher_SyncRemovesStaleItems(t *testing.T) {
	m, _ := newTestMatcher(t, filepath.Join(t.TempDir(), "m.db"))
	ctx := context.Background()
	_, err := m.Sync(ctx, testItems(), false)
	require.NoError(t, err)

	stats, err := m.Sync(ctx, testItems()[:2], false)
	require.NoError(t, err)
	assert.Equal(t, SyncStats{Total: 2, Unchanged: 2, Removed: 1}, stats)
	assert.Equal(t, 2, m.Size())

	_, err = m.store.GetItem(ctx, "SOL-OR-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMatcher_SyncEmptyDocumentClearsCorpus(t *testing.T) {
	m, _ := newTestMatcher(t, filepath.Join(t.TempDir(), "m.db"))
	ctx := context.Background()
	_, err := m.Sync(ctx, testItems(), false)
	require.NoError(t, err)

	stats, err := m.Sync(ctx, nil, false)
	require.NoError(t, err)
	assert.Equal(t, SyncStats{Removed: 3}, stats)
	assert.Zero(t, m.Size())
	assert.Empty(t, m.Match(ctx, "reentrancy", 5))
}

func TestMatcher_SyncSkipsInvalidAndDuplicate(t *testing.T) {
	m, _ := newTestMatcher(t, filepath.Join(t.TempDir(), "m.db"))
	ctx := context.Background()

	items := []checklist.Item{
		{ID: "SOL-1", Question: "the original question"},
		{ID: "", Question: "missing id"},
		{ID: "SOL-1", Question: "a duplicate that must lose"},
		{ID: "SOL-2"}, // missing question
	}
	stats, err := m.Sync(ctx, items, false)
	require.NoError(t, err)
	assert.Equal(t, SyncStats{Total: 1, Added: 1, Skipped: 3}, stats)

	got, err := m.store.GetItem(ctx, "SOL-1")
	require.NoError(t, err)
	assert.Equal(t, "the original question", got.Question, "first occurrence wins")
}

func TestMatcher_ForceResyncsEverything(t *testing.T) {
	m, mock := newTestMatcher(t, filepath.Join(t.TempDir(), "m.db"))
	ctx := context.Background()
	_, err := m.Sync(ctx, testItems(), false)
	require.NoError(t, err)

	stats, err := m.Sync(ctx, testItems(), true)
	require.NoError(t, err)
	assert.Equal(t, SyncStats{Total: 3, Updated: 3}, stats)
	// Texts are unchanged so the cache serves them, but they must at least
	// pass back through the embedder rather than reusing stored rows.
	assert.Positive(t, mock.Calls())
}

func TestMatcher_EmbeddingFailureIsRetriedOnNextSync(t *testing.T) {
	m, mock := newTestMatcher(t, filepath.Join(t.TempDir(), "m.db"))
	ctx := context.Background()

	mock.SetFailing(true)
	stats, err := m.Sync(ctx, testItems(), false)
	require.NoError(t, err, "embedding failure must not fail the sync")
	assert.Equal(t, 3, stats.Added)

	stored, err := m.store.GetItem(ctx, "SOL-RE-1")
	require.NoError(t, err)
	assert.True(t, embedding.IsZero(stored.Embedding), "failed embeds degrade to the zero sentinel")

	mock.SetFailing(false)
	degraded := m.Match(ctx, testItems()[0].EmbeddingText(), 3)
	require.Len(t, degraded, 3)
	assert.Zero(t, degraded[0].Score, "zero embeddings stay in the pool scoring zero")

	stats, err = m.Sync(ctx, testItems(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Updated, "zero embeddings count as changed and are re-embedded")

	stored, err = m.store.GetItem(ctx, "SOL-RE-1")
	require.NoError(t, err)
	assert.False(t, embedding.IsZero(stored.Embedding))
}

func TestMatcher_LoadFromStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	ctx := context.Background()

	first, _ := newTestMatcher(t, path)
	_, err := first.Sync(ctx, testItems(), false)
	require.NoError(t, err)

	second, mock2 := newTestMatcher(t, path)
	n, err := second.LoadFromStore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, second.Size())

	results := second.Match(ctx, testItems()[0].EmbeddingText(), 1)
	require.Len(t, results, 1)
	assert.Equal(t, "SOL-RE-1", results[0].ID)
	assert.Equal(t, 1, mock2.Calls(), "only the query should be embedded")
}

func TestMatcher_ResultCarriesFullItem(t *testing.T) {
	m, _ := newTestMatcher(t, filepath.Join(t.TempDir(), "m.db"))
	ctx := context.Background()
	_, err := m.Sync(ctx, testItems(), false)
	require.NoError(t, err)

	results := m.Match(ctx, testItems()[0].EmbeddingText(), 1)
	require.Len(t, results, 1)
	want := testItems()[0]
	assert.Equal(t, want.Category, results[0].Category)
	assert.Equal(t, want.Question, results[0].Question)
	assert.Equal(t, want.Remediation, results[0].Remediation)
}
