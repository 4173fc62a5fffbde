// Package matcher wires checklist loading, embedding, persistence, and
// ranking into the matching engine behind the CLI.
package matcher

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/checklist"
	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/embedding"
	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/ranking"
	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/storage"
)

// DefaultTopK is the default number of matches returned.
const DefaultTopK = 10

// Result is one matched checklist item with its similarity score.
type Result struct {
	checklist.Item
	Score float64 `json:"score"`
}

// Matcher holds the synced checklist corpus in memory and answers match
// queries against it. The corpus is swapped wholesale on sync, so queries
// never observe a half-updated state and the matcher lock is never held
// while the model runs.
type Matcher struct {
	embedder *embedding.Embedder
	store    storage.Store
	logger   *zap.Logger
	minScore float64

	mu     sync.RWMutex
	corpus []ranking.Entry           // document order
	items  map[string]checklist.Item // id -> item, for result assembly
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMinScore drops matches scoring below min. Zero disables filtering.
func WithMinScore(min float64) Option {
	return func(m *Matcher) {
		m.minScore = min
	}
}

// New creates a Matcher over the given embedder and store. Call
// LoadFromStore to restore a previously synced corpus.
func New(embedder *embedding.Embedder, store storage.Store, opts ...Option) *Matcher {
	m := &Matcher{
		embedder: embedder,
		store:    store,
		logger:   zap.NewNop(),
		items:    make(map[string]checklist.Item),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match embeds text and returns the topK most similar checklist items,
// best first. A blank query, an unembeddable query, or an empty corpus
// yields no matches; the match path never fails.
func (m *Matcher) Match(ctx context.Context, text string, topK int) []Result {
	query := m.embedder.Embed(ctx, embedding.NormalizeFields(text))
	if embedding.IsZero(query) {
		return nil
	}

	m.mu.RLock()
	corpus := m.corpus
	items := m.items
	m.mu.RUnlock()

	matches := ranking.Rank(query, corpus, topK)
	results := make([]Result, 0, len(matches))
	for _, match := range matches {
		if m.minScore > 0 && match.Score < m.minScore {
			continue
		}
		results = append(results, Result{Item: items[match.ID], Score: match.Score})
	}
	return results
}

// LoadFromStore replaces the in-memory corpus with the persisted one and
// returns the number of items loaded.
func (m *Matcher) LoadFromStore(ctx context.Context) (int, error) {
	stored, err := m.store.ListItems(ctx)
	if err != nil {
		return 0, err
	}
	corpus := make([]ranking.Entry, 0, len(stored))
	items := make(map[string]checklist.Item, len(stored))
	for _, s := range stored {
		corpus = append(corpus, ranking.Entry{ID: s.ID, Vector: s.Embedding})
		items[s.ID] = s.Item
	}
	m.swap(corpus, items)
	return len(corpus), nil
}

// Size returns the number of items in the in-memory corpus.
func (m *Matcher) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.corpus)
}

func (m *Matcher) swap(corpus []ranking.Entry, items map[string]checklist.Item) {
	m.mu.Lock()
	m.corpus = corpus
	m.items = items
	m.mu.Unlock()
}
