// Package embedding maps text segments to fixed-dimension numeric vectors.
// Numeric computation is delegated to an external embedding capability; the
// package owns batching and session caching policy.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
)

// ErrUnavailable reports that the external embedding capability failed or
// timed out. It is surfaced to the caller, never silently replaced with a
// zero vector.
var ErrUnavailable = errors.New("embedding capability unavailable")

// DefaultBatchSize balances requests-per-minute vs tokens-per-minute rate
// limits. OpenAI supports up to 2048 texts per batch, but smaller batches
// reduce TPM pressure.
const DefaultBatchSize = 500

// BatchEmbedder is the external capability that turns a batch of texts into
// vectors, one per input, order preserved.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Embedder generates embeddings through a BatchEmbedder. It groups requests
// into bounded batches, retries rate-limited batches with exponential
// backoff, and caches vectors by exact text for the life of the process.
type Embedder struct {
	capability BatchEmbedder
	batchSize  int

	mu    sync.Mutex
	cache map[string][]float32
}

// NewEmbedder creates an Embedder over the given capability. If batchSize
// is not positive, DefaultBatchSize is used.
func NewEmbedder(capability BatchEmbedder, batchSize int) *Embedder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Embedder{
		capability: capability,
		batchSize:  batchSize,
		cache:      make(map[string][]float32),
	}
}

// Embed returns one vector per input text, in input order. Cached texts are
// served without recomputation. Any capability failure aborts the whole
// call with ErrUnavailable.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int
	e.mu.Lock()
	for i, t := range texts {
		if v, ok := e.cache[t]; ok {
			out[i] = v
			continue
		}
		missing = append(missing, t)
		missingIdx = append(missingIdx, i)
	}
	e.mu.Unlock()

	for start := 0; start < len(missing); start += e.batchSize {
		end := min(start+e.batchSize, len(missing))
		batch := missing[start:end]

		vectors, err := e.embedBatchWithRetry(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("%w: batch %d-%d: %v", ErrUnavailable, start, end, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: batch %d-%d: got %d vectors for %d texts",
				ErrUnavailable, start, end, len(vectors), len(batch))
		}

		e.mu.Lock()
		for j, v := range vectors {
			out[missingIdx[start+j]] = v
			e.cache[batch[j]] = v
		}
		e.mu.Unlock()
	}

	return out, nil
}

// CacheSize returns the number of distinct texts cached this session.
func (e *Embedder) CacheSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}

// embedBatchWithRetry embeds a single batch, retrying with exponential
// backoff on rate limit errors (HTTP 429). Other errors fail immediately.
func (e *Embedder) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32

	operation := func() error {
		v, err := e.capability.EmbedBatch(ctx, texts)
		if err != nil {
			if isRateLimitError(err) {
				return err // will retry with backoff
			}
			return backoff.Permanent(err)
		}
		vectors = v
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return vectors, nil
}

// isRateLimitError checks for an OpenAI rate limit error (HTTP 429).
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
