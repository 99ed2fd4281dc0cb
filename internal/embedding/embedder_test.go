package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCapability records batches and returns a deterministic vector per text.
type fakeCapability struct {
	batches [][]string
	err     error
}

func (f *fakeCapability) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, append([]string(nil), texts...))
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), float32(len(t)) * 2}
	}
	return out, nil
}

func TestEmbed_OrderPreserving(t *testing.T) {
	fake := &fakeCapability{}
	e := NewEmbedder(fake, 0)

	texts := []string{"a", "bb", "ccc"}
	vectors, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	for i, text := range texts {
		assert.Equal(t, []float32{float32(len(text)), float32(len(text)) * 2}, vectors[i],
			"vector %d does not match its input text", i)
	}
}

func TestEmbed_BatchesBoundedBySize(t *testing.T) {
	fake := &fakeCapability{}
	e := NewEmbedder(fake, 2)

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	_, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)

	require.Len(t, fake.batches, 3)
	assert.Equal(t, []string{"a", "bb"}, fake.batches[0])
	assert.Equal(t, []string{"ccc", "dddd"}, fake.batches[1])
	assert.Equal(t, []string{"eeeee"}, fake.batches[2])
}

func TestEmbed_CacheAvoidsRecomputation(t *testing.T) {
	fake := &fakeCapability{}
	e := NewEmbedder(fake, 10)

	_, err := e.Embed(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, fake.batches, 1)
	assert.Equal(t, 2, e.CacheSize())

	// Second call mixes cached and new texts; only the new one is sent.
	vectors, err := e.Embed(context.Background(), []string{"alpha", "gamma", "beta"})
	require.NoError(t, err)
	require.Len(t, fake.batches, 2)
	assert.Equal(t, []string{"gamma"}, fake.batches[1])

	assert.Equal(t, []float32{5, 10}, vectors[0]) // "alpha"
	assert.Equal(t, []float32{5, 10}, vectors[1]) // "gamma"
	assert.Equal(t, []float32{4, 8}, vectors[2])  // "beta"
}

func TestEmbed_CapabilityFailureSurfaced(t *testing.T) {
	fake := &fakeCapability{err: errors.New("connection refused")}
	e := NewEmbedder(fake, 10)

	vectors, err := e.Embed(context.Background(), []string{"x"})
	assert.Nil(t, vectors, "no partial result on failure")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestEmbed_EmptyInput(t *testing.T) {
	fake := &fakeCapability{}
	e := NewEmbedder(fake, 10)

	vectors, err := e.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Empty(t, fake.batches)
}
