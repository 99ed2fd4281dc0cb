// Package store persists the ingested corpus: document provenance records
// plus chunks and their embedding vectors, in a single SQLite database.
// The vector index itself stays in memory; the store exists so separate CLI
// invocations see the same corpus.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/gillopy/economics-agent/internal/chunker"
	"github.com/gillopy/economics-agent/internal/index"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	source_path TEXT NOT NULL,
	content_sha TEXT NOT NULL,
	chunk_count INTEGER NOT NULL,
	ingested_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	text TEXT NOT NULL,
	start_offset INTEGER NOT NULL,
	end_offset INTEGER NOT NULL,
	embedding BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
`

// Document is a provenance record for one ingested source file.
type Document struct {
	ID         string
	SourcePath string
	ContentSHA string
	ChunkCount int
	IngestedAt time.Time
}

// Store is the SQLite-backed corpus store.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the corpus database under dataDir, enabling WAL
// mode and foreign keys, and applies the schema.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "corpus.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SaveDocument stores or replaces a document provenance record.
func (s *Store) SaveDocument(ctx context.Context, doc Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, source_path, content_sha, chunk_count, ingested_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_path = excluded.source_path,
			content_sha = excluded.content_sha,
			chunk_count = excluded.chunk_count,
			ingested_at = excluded.ingested_at
	`, doc.ID, doc.SourcePath, doc.ContentSHA, doc.ChunkCount, doc.IngestedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// SaveChunks stores index entries for a document in a single transaction.
func (s *Store) SaveChunks(ctx context.Context, entries []index.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, position, text, start_offset, end_offset, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			position = excluded.position,
			text = excluded.text,
			start_offset = excluded.start_offset,
			end_offset = excluded.end_offset,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		blob := float32SliceToBytes(e.Vector)
		if _, err := stmt.ExecContext(ctx, e.Chunk.ID, e.Chunk.DocumentID, e.Chunk.Index,
			e.Chunk.Text, e.Chunk.StartOffset, e.Chunk.EndOffset, blob); err != nil {
			return fmt.Errorf("saving chunk %s: %w", e.Chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteDocument removes a document and, via cascade, its chunks. Deleting
// an unknown id is a no-op.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocuments returns provenance records ordered by ingestion time,
// oldest first.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_path, content_sha, chunk_count, ingested_at
		FROM documents ORDER BY ingested_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.SourcePath, &d.ContentSHA, &d.ChunkCount, &d.IngestedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// LoadEntries reads every stored chunk with its embedding, in original
// insertion order, for warm-loading the in-memory index at startup.
func (s *Store) LoadEntries(ctx context.Context) ([]index.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, position, text, start_offset, end_offset, embedding
		FROM chunks ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var entries []index.Entry
	for rows.Next() {
		var c chunker.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Text,
			&c.StartOffset, &c.EndOffset, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		entries = append(entries, index.Entry{Chunk: c, Vector: bytesToFloat32Slice(blob)})
	}
	return entries, rows.Err()
}
