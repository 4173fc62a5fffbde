// Package storage persists synced checklist items and their embeddings.
package storage

import (
	"context"
	"errors"

	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/checklist"
)

// ErrNotFound is returned when a requested item does not exist.
var ErrNotFound = errors.New("checklist item not found")

// StoredItem is a checklist item as persisted: the record itself plus the
// fingerprint of its embedding text, the embedding vector, and the item's
// position in the checklist document. Position keeps ranking ties stable
// across restarts.
type StoredItem struct {
	checklist.Item
	Fingerprint uint64
	Embedding   []float32
	Position    int
}

// Store defines checklist item persistence.
type Store interface {
	// UpsertItems inserts or replaces items in one transaction.
	UpsertItems(ctx context.Context, items []StoredItem) error
	// GetItem returns the item with the given ID, or ErrNotFound.
	GetItem(ctx context.Context, id string) (*StoredItem, error)
	// ListItems returns every item ordered by document position.
	ListItems(ctx context.Context) ([]StoredItem, error)
	// DeleteItems removes the given IDs; missing IDs are not an error.
	DeleteItems(ctx context.Context, ids []string) error
	// CountItems returns the number of persisted items.
	CountItems(ctx context.Context) (int64, error)

	Close() error
}
