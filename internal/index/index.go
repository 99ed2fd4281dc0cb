// Package index provides an in-process vector index over embedded chunks
// with brute-force cosine similarity search. Results are ordered by
// descending score with ties broken by insertion order, so a future
// implementation may swap in an ANN structure without changing observable
// behavior.
package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/gillopy/economics-agent/internal/chunker"
)

// Entry pairs a chunk with its embedding vector. Entries are never mutated
// after insertion; they are removed only by re-ingestion or Clear.
type Entry struct {
	Chunk  chunker.Chunk
	Vector []float32
}

// Result is a retrieved chunk with its cosine similarity to the query.
type Result struct {
	Chunk chunker.Chunk
	Score float64
}

// Index stores entries in insertion order behind a read-write lock:
// searches may run concurrently, insert/remove/clear are exclusive.
type Index struct {
	mu        sync.RWMutex
	dimension int
	declared  bool
	entries   []Entry
}

// New creates an Index. A positive dimension fixes the expected vector
// length up front; zero lets the first insert establish it.
func New(dimension int) *Index {
	return &Index{
		dimension: dimension,
		declared:  dimension > 0,
	}
}

// Insert adds entries to the index. The batch is validated before anything
// is appended: if any vector's length differs from the index's dimension
// the whole insert fails with ErrDimensionMismatch and the index is
// unchanged.
func (ix *Index) Insert(entries []Entry) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	dim := ix.dimension
	for _, e := range entries {
		if len(e.Vector) == 0 {
			return fmt.Errorf("%w: chunk %s has an empty vector", ErrDimensionMismatch, e.Chunk.ID)
		}
		if dim == 0 {
			dim = len(e.Vector)
		}
		if len(e.Vector) != dim {
			return fmt.Errorf("%w: chunk %s has dimension %d, index expects %d",
				ErrDimensionMismatch, e.Chunk.ID, len(e.Vector), dim)
		}
	}

	ix.dimension = dim
	ix.entries = append(ix.entries, entries...)
	return nil
}

// Search returns the min(k, size) entries most similar to query, sorted by
// strictly non-increasing cosine similarity. Entries with equal scores rank
// in insertion order, earliest first.
func (ix *Index) Search(query []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("top-k must be positive, got %d", k)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.entries) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			ErrDimensionMismatch, len(query), ix.dimension)
	}

	scores := make([]float64, len(ix.entries))
	order := make([]int, len(ix.entries))
	for i := range ix.entries {
		scores[i] = cosine(ix.entries[i].Vector, query)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	results := make([]Result, k)
	for i := 0; i < k; i++ {
		j := order[i]
		results[i] = Result{Chunk: ix.entries[j].Chunk, Score: scores[j]}
	}
	return results, nil
}

// Size returns the number of stored entries.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Clear drops all entries, typically before a full re-ingestion. A
// dimension established by insertion (rather than declared at construction)
// is reset as well.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries = nil
	if !ix.declared {
		ix.dimension = 0
	}
}

// RemoveDocument drops all entries belonging to the given document,
// preserving the relative order of the rest. It returns the number of
// entries removed. Used by re-ingestion to replace a document's chunks.
func (ix *Index) RemoveDocument(documentID string) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	kept := ix.entries[:0]
	removed := 0
	for _, e := range ix.entries {
		if e.Chunk.DocumentID == documentID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	ix.entries = kept
	if len(ix.entries) == 0 && !ix.declared {
		ix.dimension = 0
	}
	return removed
}

// cosine computes dot(a,b)/(|a||b|) with float64 accumulation. A zero
// vector has no direction and scores 0.
func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
