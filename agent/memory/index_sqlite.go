package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var openDB = sql.Open

// SQLiteIndex keeps vectors in a single table inside the storage directory
// and ranks them in process.
type SQLiteIndex struct {
	db *sql.DB
}

func OpenSQLiteIndex(dir string) (*SQLiteIndex, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("memory: create storage dir: %w", err)
	}
	db, err := openDB("sqlite", filepath.Join(dir, "vectors.db"))
	if err != nil {
		return nil, fmt.Errorf("memory: open vector database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("memory: pragma %q: %w", p, err)
		}
	}

	idx := &SQLiteIndex{db: db}
	if err := idx.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("memory: migration: %w", err)
	}
	return idx, nil
}

func (s *SQLiteIndex) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS memory_vectors (
			id         TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			document   TEXT NOT NULL,
			embedding  BLOB NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_memory_vectors_collection ON memory_vectors(collection);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteIndex) Name() string { return BackendSQLite }

func (s *SQLiteIndex) Add(ctx context.Context, collection string, entry IndexEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO memory_vectors (id, collection, document, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID, collection, entry.Document, encodeVector(entry.Embedding),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("memory: insert vector %s: %w", entry.ID, err)
	}
	return nil
}

func (s *SQLiteIndex) Delete(ctx context.Context, collection string, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM memory_vectors WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("memory: delete vector %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteIndex) Query(ctx context.Context, collection string, vec []float32, n int) ([]IndexMatch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document, embedding FROM memory_vectors WHERE collection = ? ORDER BY created_at`, collection)
	if err != nil {
		return nil, fmt.Errorf("memory: query vectors: %w", err)
	}
	defer rows.Close()

	var candidates []IndexMatch
	for rows.Next() {
		var (
			id, doc string
			blob    []byte
		)
		if err := rows.Scan(&id, &doc, &blob); err != nil {
			return nil, fmt.Errorf("memory: scan vector: %w", err)
		}
		stored, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("memory: decode vector %s: %w", id, err)
		}
		candidates = append(candidates, IndexMatch{ID: id, Document: doc, Distance: squaredL2(vec, stored)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rankMatches(candidates, n), nil
}

func (s *SQLiteIndex) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memory_vectors WHERE collection = ?`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("memory: count vectors: %w", err)
	}
	return n, nil
}

func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}
