// Package agent composes retrieval, conversational memory, and the
// completion capability into grounded research operations.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gillopy/economics-agent/internal/chunker"
	"github.com/gillopy/economics-agent/internal/index"
	"github.com/gillopy/economics-agent/internal/llm"
	"github.com/gillopy/economics-agent/internal/memory"
)

// ErrNoRelevantContext reports an answer attempt in retrieval-required
// mode against an empty index. Callers may retry without the requirement
// to fall back to conversation memory alone.
var ErrNoRelevantContext = errors.New("no relevant context: vector index is empty")

// Embedder produces one vector per input text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Searcher is the read side of the vector index.
type Searcher interface {
	Search(query []float32, k int) ([]index.Result, error)
	Size() int
}

// Config holds the agent's retrieval and generation settings.
type Config struct {
	Model            string
	Temperature      float64
	MaxTokens        int
	TopK             int // default retrieval depth when a call passes topK <= 0
	MemoryBudget     int // token budget for conversation context per prompt
	RequireRetrieval bool
}

// ResearchAgent answers queries grounded in retrieved document chunks
// while maintaining multi-turn conversational context.
type ResearchAgent struct {
	embedder   Embedder
	index      Searcher
	memory     memory.Store
	completion llm.Completion
	cfg        Config
	logger     *slog.Logger
}

// New creates a ResearchAgent from its collaborators.
func New(
	embedder Embedder,
	ix Searcher,
	mem memory.Store,
	completion llm.Completion,
	cfg Config,
	logger *slog.Logger,
) *ResearchAgent {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return &ResearchAgent{
		embedder:   embedder,
		index:      ix,
		memory:     mem,
		completion: completion,
		cfg:        cfg,
		logger:     logger,
	}
}

// Memory exposes the agent's conversation store, so the caller can persist
// and restore it across sessions.
func (a *ResearchAgent) Memory() memory.Store {
	return a.memory
}

// Answer is the result of one grounded conversational turn.
type Answer struct {
	Text      string
	Citations []chunker.Chunk
}

// Answer runs one conversational turn: the query is embedded, the top-k
// most similar chunks retrieved, and a prompt composed from the retrieved
// passages, recent conversation context, and the query. Both the query and
// the generated answer are appended to memory. With an empty index the
// agent answers from memory alone unless retrieval is required.
func (a *ResearchAgent) Answer(ctx context.Context, query string, topK int) (*Answer, error) {
	if topK <= 0 {
		topK = a.cfg.TopK
	}

	results, err := a.retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	history := a.memory.Context(a.cfg.MemoryBudget)
	prompt := buildAnswerPrompt(query, results, history)

	text, err := a.completion.Generate(ctx, prompt, a.options(false))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	a.remember(query, text)
	a.logger.Debug("Answered query", "citations", len(results), "history_turns", len(history))

	return &Answer{Text: text, Citations: citations(results)}, nil
}

// retrieve embeds the query and searches the index. An empty index yields
// no results, or ErrNoRelevantContext in retrieval-required mode.
func (a *ResearchAgent) retrieve(ctx context.Context, query string, topK int) ([]index.Result, error) {
	if a.index.Size() == 0 {
		if a.cfg.RequireRetrieval {
			return nil, ErrNoRelevantContext
		}
		a.logger.Debug("Index empty, answering from conversation memory alone")
		return nil, nil
	}

	vectors, err := a.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := a.index.Search(vectors[0], topK)
	if err != nil {
		if errors.Is(err, index.ErrEmptyIndex) && !a.cfg.RequireRetrieval {
			return nil, nil
		}
		return nil, fmt.Errorf("search: %w", err)
	}
	return results, nil
}

// remember appends the user query and assistant answer as two new turns.
func (a *ResearchAgent) remember(query, answer string) {
	now := time.Now().UTC()
	a.memory.Append(memory.Turn{
		Role:       memory.RoleUser,
		Text:       query,
		TokenCount: memory.EstimateTokens(query),
		Timestamp:  now,
	})
	a.memory.Append(memory.Turn{
		Role:       memory.RoleAssistant,
		Text:       answer,
		TokenCount: memory.EstimateTokens(answer),
		Timestamp:  now,
	})
}

func (a *ResearchAgent) options(jsonResponse bool) llm.Options {
	return llm.Options{
		Model:        a.cfg.Model,
		Temperature:  a.cfg.Temperature,
		MaxTokens:    a.cfg.MaxTokens,
		JSONResponse: jsonResponse,
	}
}

func citations(results []index.Result) []chunker.Chunk {
	chunks := make([]chunker.Chunk, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk
	}
	return chunks
}
