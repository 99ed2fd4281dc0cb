package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gillopy/economics-agent/internal/chunker"
)

func entry(id, docID string, vector ...float32) Entry {
	return Entry{
		Chunk:  chunker.Chunk{ID: id, DocumentID: docID, Text: "text " + id},
		Vector: vector,
	}
}

func TestInsert_DimensionMismatchLeavesIndexUnchanged(t *testing.T) {
	ix := New(0)
	require.NoError(t, ix.Insert([]Entry{entry("a:0", "a", 1, 0, 0)}))
	require.Equal(t, 1, ix.Size())

	err := ix.Insert([]Entry{
		entry("b:0", "b", 0, 1, 0),
		entry("b:1", "b", 0, 1), // wrong dimension
	})
	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 1, ix.Size(), "failed insert must not change index size")
}

func TestInsert_DeclaredDimensionEnforced(t *testing.T) {
	ix := New(3)
	err := ix.Insert([]Entry{entry("a:0", "a", 1, 2)})
	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 0, ix.Size())
}

func TestSearch_EmptyIndex(t *testing.T) {
	ix := New(3)
	_, err := ix.Search([]float32{1, 0, 0}, 5)
	assert.ErrorIs(t, err, ErrEmptyIndex)
}

func TestSearch_OrderedByDescendingScore(t *testing.T) {
	ix := New(0)
	require.NoError(t, ix.Insert([]Entry{
		entry("a:0", "a", 1, 0),   // orthogonal to query
		entry("a:1", "a", 1, 1),   // cos = 0.707...
		entry("a:2", "a", 0, 2),   // cos = 1.0 (magnitude irrelevant)
		entry("a:3", "a", -1, -1), // cos = -0.707...
	}))

	results, err := ix.Search([]float32{0, 1}, 4)
	require.NoError(t, err)
	require.Len(t, results, 4)

	wantOrder := []string{"a:2", "a:1", "a:0", "a:3"}
	for i, want := range wantOrder {
		assert.Equal(t, want, results[i].Chunk.ID, "result %d", i)
	}
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
	assert.InDelta(t, 1.0, results[0].Score, 1e-9, "self-direction similarity must be 1.0")
}

func TestSearch_TieBrokenByInsertionOrder(t *testing.T) {
	ix := New(0)
	// Three entries with identical vectors all score the same.
	require.NoError(t, ix.Insert([]Entry{entry("x:0", "x", 1, 1)}))
	require.NoError(t, ix.Insert([]Entry{entry("y:0", "y", 1, 1)}))
	require.NoError(t, ix.Insert([]Entry{entry("z:0", "z", 1, 1)}))

	results, err := ix.Search([]float32{1, 1}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "x:0", results[0].Chunk.ID)
	assert.Equal(t, "y:0", results[1].Chunk.ID)
	assert.Equal(t, "z:0", results[2].Chunk.ID)
}

func TestSearch_KLargerThanSize(t *testing.T) {
	ix := New(0)
	require.NoError(t, ix.Insert([]Entry{entry("a:0", "a", 1, 0), entry("a:1", "a", 0, 1)}))

	results, err := ix.Search([]float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_SelfSimilarityIsOne(t *testing.T) {
	ix := New(0)
	vec := []float32{0.3, -1.2, 0.05, 4}
	require.NoError(t, ix.Insert([]Entry{{Chunk: chunker.Chunk{ID: "d:0", DocumentID: "d"}, Vector: vec}}))

	results, err := ix.Search(vec, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestSearch_ZeroVectorScoresZero(t *testing.T) {
	ix := New(0)
	require.NoError(t, ix.Insert([]Entry{entry("a:0", "a", 0, 0)}))

	results, err := ix.Search([]float32{1, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, results[0].Score)
}

func TestRemoveDocument(t *testing.T) {
	ix := New(0)
	require.NoError(t, ix.Insert([]Entry{
		entry("a:0", "a", 1, 0),
		entry("b:0", "b", 0, 1),
		entry("a:1", "a", 1, 1),
	}))

	removed := ix.RemoveDocument("a")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, ix.Size())

	results, err := ix.Search([]float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b:0", results[0].Chunk.ID)
}

func TestClear(t *testing.T) {
	ix := New(0)
	require.NoError(t, ix.Insert([]Entry{entry("a:0", "a", 1, 0)}))
	ix.Clear()
	assert.Equal(t, 0, ix.Size())

	// A fresh dimension may be established after Clear.
	require.NoError(t, ix.Insert([]Entry{entry("b:0", "b", 1, 2, 3)}))
	assert.Equal(t, 1, ix.Size())
}
