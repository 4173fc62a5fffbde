package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not
// exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS checklist_items (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL DEFAULT '',
		question TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		remediation TEXT NOT NULL DEFAULT '',
		references_json TEXT NOT NULL DEFAULT '[]',
		fingerprint INTEGER NOT NULL,
		embedding BLOB,
		position INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_checklist_items_position ON checklist_items(position);
	`
	_, err := db.Exec(schema)
	return err
}

// UpsertItems inserts or replaces items in one transaction. Existing rows
// keep their created_at; everything else is overwritten.
func (s *SQLiteStore) UpsertItems(ctx context.Context, items []StoredItem) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO checklist_items
		 (id, category, question, description, remediation, references_json, fingerprint, embedding, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		 category = excluded.category,
		 question = excluded.question,
		 description = excluded.description,
		 remediation = excluded.remediation,
		 references_json = excluded.references_json,
		 fingerprint = excluded.fingerprint,
		 embedding = excluded.embedding,
		 position = excluded.position,
		 updated_at = CURRENT_TIMESTAMP`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		referencesJSON, err := json.Marshal(item.References)
		if err != nil {
			return fmt.Errorf("failed to marshal references for %s: %w", item.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			item.ID, item.Category, item.Question, item.Description, item.Remediation,
			string(referencesJSON), int64(item.Fingerprint), encodeEmbedding(item.Embedding), item.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert %s: %w", item.ID, err)
		}
	}
	return tx.Commit()
}

// GetItem returns the item with the given ID, or ErrNotFound.
func (s *SQLiteStore) GetItem(ctx context.Context, id string) (*StoredItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, category, question, description, remediation, references_json, fingerprint, embedding, position
		 FROM checklist_items WHERE id = ?`, id,
	)
	item, err := scanItem(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns every item ordered by document position.
func (s *SQLiteStore) ListItems(ctx context.Context) ([]StoredItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, question, description, remediation, references_json, fingerprint, embedding, position
		 FROM checklist_items ORDER BY position, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []StoredItem
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// DeleteItems removes the given IDs in one transaction.
func (s *SQLiteStore) DeleteItems(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM checklist_items WHERE id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// CountItems returns the number of persisted items.
func (s *SQLiteStore) CountItems(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM checklist_items`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanItem(scan func(dest ...any) error) (*StoredItem, error) {
	var (
		item           StoredItem
		referencesJSON string
		fingerprint    int64
		embedding      []byte
	)
	err := scan(&item.ID, &item.Category, &item.Question, &item.Description, &item.Remediation,
		&referencesJSON, &fingerprint, &embedding, &item.Position)
	if err != nil {
		return nil, err
	}
	if referencesJSON != "" {
		if err := json.Unmarshal([]byte(referencesJSON), &item.References); err != nil {
			return nil, fmt.Errorf("failed to unmarshal references for %s: %w", item.ID, err)
		}
	}
	item.Fingerprint = uint64(fingerprint)
	item.Embedding = decodeEmbedding(embedding)
	return &item, nil
}

// Embeddings are stored as little-endian float32 BLOBs, 4 bytes per
// component.

func encodeEmbedding(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	out := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(out[i*4:(i+1)*4], math.Float32bits(v))
	}
	return out
}

func decodeEmbedding(b []byte) []float32 {
	if len(b) < 4 {
		return nil
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4 : (i+1)*4]))
	}
	return out
}

var _ Store = (*SQLiteStore)(nil)
