package matcher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/checklist"
	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/embedding"
	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/ranking"
	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/storage"
)

// SyncStats summarizes what a sync changed.
type SyncStats struct {
	Total     int // valid items in the document
	Added     int // items not previously stored
	Updated   int // items whose embedding text changed
	Unchanged int // items reusing their stored embedding
	Removed   int // stored items no longer in the document
	Skipped   int // invalid or duplicate items dropped at the boundary
}

func (s SyncStats) String() string {
	return fmt.Sprintf("total=%d added=%d updated=%d unchanged=%d removed=%d skipped=%d",
		s.Total, s.Added, s.Updated, s.Unchanged, s.Removed, s.Skipped)
}

// Sync reconciles the checklist document with the store and the in-memory
// corpus. Items whose embedding text fingerprint is unchanged keep their
// stored embedding; new and changed items are embedded in batch. Stored
// items absent from the document are removed. With force set, every item is
// re-embedded regardless of fingerprint.
//
// Invalid and duplicate items are skipped with a warning rather than
// failing the sync; embedding failures degrade to zero vectors, which are
// retried on the next sync. Only storage failures abort.
func (m *Matcher) Sync(ctx context.Context, items []checklist.Item, force bool) (SyncStats, error) {
	var stats SyncStats

	clean := make([]checklist.Item, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			m.logger.Warn("skipping invalid checklist item", zap.Error(err))
			stats.Skipped++
			continue
		}
		if seen[item.ID] {
			m.logger.Warn("skipping duplicate checklist item", zap.String("id", item.ID))
			stats.Skipped++
			continue
		}
		seen[item.ID] = true
		clean = append(clean, item)
	}
	stats.Total = len(clean)

	prev, err := m.store.ListItems(ctx)
	if err != nil {
		return stats, fmt.Errorf("list stored items: %w", err)
	}
	prevByID := make(map[string]storage.StoredItem, len(prev))
	for _, p := range prev {
		prevByID[p.ID] = p
	}

	// Decide per item whether the stored embedding can be reused. A stored
	// zero vector is a degraded embedding from an earlier failure, so it is
	// always retried.
	type pending struct {
		position int
		text     string
	}
	stored := make([]storage.StoredItem, len(clean))
	var toEmbed []pending
	for i, item := range clean {
		text := item.EmbeddingText()
		fp := embedding.Fingerprint(text)
		stored[i] = storage.StoredItem{
			Item:        item,
			Fingerprint: fp,
			Position:    i,
		}
		p, exists := prevByID[item.ID]
		switch {
		case !exists:
			stats.Added++
		case force || p.Fingerprint != fp || embedding.IsZero(p.Embedding):
			stats.Updated++
		default:
			stats.Unchanged++
			stored[i].Embedding = p.Embedding
			continue
		}
		toEmbed = append(toEmbed, pending{position: i, text: text})
	}

	// Embed outside any matcher lock; inference may take a while.
	if len(toEmbed) > 0 {
		texts := make([]string, len(toEmbed))
		for i, p := range toEmbed {
			texts[i] = p.text
		}
		m.logger.Info("embedding checklist items",
			zap.Int("count", len(texts)),
			zap.Bool("force", force))
		vectors := m.embedder.EmbedBatch(ctx, texts)
		for i, p := range toEmbed {
			stored[p.position].Embedding = vectors[i]
		}
	}

	if err := m.store.UpsertItems(ctx, stored); err != nil {
		return stats, fmt.Errorf("persist items: %w", err)
	}

	var remove []string
	for id := range prevByID {
		if !seen[id] {
			remove = append(remove, id)
		}
	}
	if len(remove) > 0 {
		if err := m.store.DeleteItems(ctx, remove); err != nil {
			return stats, fmt.Errorf("remove stale items: %w", err)
		}
		stats.Removed = len(remove)
	}

	corpus := make([]ranking.Entry, len(stored))
	itemsByID := make(map[string]checklist.Item, len(stored))
	for i, s := range stored {
		corpus[i] = ranking.Entry{ID: s.ID, Vector: s.Embedding}
		itemsByID[s.ID] = s.Item
	}
	m.swap(corpus, itemsByID)

	m.logger.Info("checklist synced", zap.String("stats", stats.String()))
	return stats, nil
}

// SyncFile loads the checklist document at path and syncs it.
func (m *Matcher) SyncFile(ctx context.Context, path string, force bool) (SyncStats, error) {
	items, err := checklist.Load(path)
	if err != nil {
		return SyncStats{}, err
	}
	return m.Sync(ctx, items, force)
}
