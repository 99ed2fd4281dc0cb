// Package ingest orchestrates the write path: extract source text, chunk,
// embed, and insert into the vector index, recording provenance for each
// document.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gillopy/economics-agent/internal/chunker"
	"github.com/gillopy/economics-agent/internal/extract"
	"github.com/gillopy/economics-agent/internal/index"
	"github.com/gillopy/economics-agent/internal/store"
)

// TextExtractor provides raw text for a source file of a resolved type.
type TextExtractor interface {
	Extract(path string, typ extract.Type) (string, error)
}

// Embedder produces one vector per input text, order preserved.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Result summarizes a multi-file ingest run.
type Result struct {
	RunID       string
	TotalFiles  int
	Ingested    []store.Document
	Failed      []FailedFile
	TotalChunks int
	Duration    time.Duration
}

// FailedFile records a source file that could not be ingested.
type FailedFile struct {
	Path   string
	Reason string
}

// Pipeline runs the full ingestion flow for source files.
type Pipeline struct {
	extractor TextExtractor
	chunker   *chunker.Chunker
	embedder  Embedder
	index     *index.Index
	store     *store.Store
	logger    *slog.Logger
}

// NewPipeline creates an ingestion pipeline from its collaborators.
func NewPipeline(
	extractor TextExtractor,
	ck *chunker.Chunker,
	embedder Embedder,
	ix *index.Index,
	st *store.Store,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extractor: extractor,
		chunker:   ck,
		embedder:  embedder,
		index:     ix,
		store:     st,
		logger:    logger,
	}
}

// Ingest processes one source file: resolve its type (from declaredType or
// the extension), extract text, chunk, embed, and insert. The document id
// is derived from the source path and content hash, so re-ingesting an
// unchanged file is idempotent; a changed or unchanged file alike replaces
// any previous entries recorded under its id.
func (p *Pipeline) Ingest(ctx context.Context, path, declaredType string) (*store.Document, error) {
	typ, err := extract.ResolveType(path, declaredType)
	if err != nil {
		return nil, err
	}

	text, err := p.extractor.Extract(path, typ)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	contentSHA := sha256.Sum256([]byte(text))
	docID := documentID(path, text)
	p.logger.Debug("Extracted document", "path", path, "type", typ, "chars", len(text), "id", docID)

	// Replace-by-document-id: drop whatever an earlier ingest recorded.
	if err := p.store.DeleteDocument(ctx, docID); err != nil {
		return nil, fmt.Errorf("replace document %s: %w", docID, err)
	}
	p.index.RemoveDocument(docID)

	chunks := p.chunker.Split(docID, text)

	var entries []index.Entry
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		vectors, err := p.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed %s: %w", path, err)
		}

		entries = make([]index.Entry, len(chunks))
		for i, c := range chunks {
			entries[i] = index.Entry{Chunk: c, Vector: vectors[i]}
		}
		if err := p.index.Insert(entries); err != nil {
			return nil, fmt.Errorf("index %s: %w", path, err)
		}
	}

	doc := store.Document{
		ID:         docID,
		SourcePath: path,
		ContentSHA: hex.EncodeToString(contentSHA[:]),
		ChunkCount: len(chunks),
		IngestedAt: time.Now().UTC(),
	}
	if err := p.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("store document %s: %w", docID, err)
	}
	if len(entries) > 0 {
		if err := p.store.SaveChunks(ctx, entries); err != nil {
			return nil, fmt.Errorf("store chunks %s: %w", docID, err)
		}
	}

	p.logger.Info("Ingested document", "path", path, "id", docID, "chunks", len(chunks))
	return &doc, nil
}

// IngestAll processes each file independently: a file that fails is
// reported in the result and does not abort the rest of the batch.
func (p *Pipeline) IngestAll(ctx context.Context, paths []string, declaredType string) *Result {
	start := time.Now()
	result := &Result{
		RunID:      uuid.New().String(),
		TotalFiles: len(paths),
	}
	p.logger.Info("Starting ingest run", "run_id", result.RunID, "files", len(paths))

	for _, path := range paths {
		doc, err := p.Ingest(ctx, path, declaredType)
		if err != nil {
			p.logger.Warn("Failed to ingest file", "path", path, "error", err)
			result.Failed = append(result.Failed, FailedFile{Path: path, Reason: err.Error()})
			continue
		}
		result.Ingested = append(result.Ingested, *doc)
		result.TotalChunks += doc.ChunkCount
	}

	result.Duration = time.Since(start)
	p.logger.Info("Ingest run complete",
		"run_id", result.RunID,
		"ingested", len(result.Ingested),
		"failed", len(result.Failed),
		"chunks", result.TotalChunks,
		"duration", result.Duration,
	)
	return result
}

// ListIngested returns provenance records for every ingested document,
// oldest first.
func (p *Pipeline) ListIngested(ctx context.Context) ([]store.Document, error) {
	return p.store.ListDocuments(ctx)
}

// documentID derives a deterministic id from the source path and extracted
// content, so identical content at the same path maps to the same id.
func documentID(path, text string) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
