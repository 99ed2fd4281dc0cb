package memory

// Buffer is a FIFO token-bounded memory store: on every append, the oldest
// turns are evicted until the cumulative token count fits the budget or
// only the newest turn remains. Insertion recency, not access, governs
// retention.
type Buffer struct {
	maxTokens int
	turns     []Turn
	total     int
}

// NewBuffer creates a Buffer with the given token budget. A non-positive
// budget disables eviction.
func NewBuffer(maxTokens int) *Buffer {
	return &Buffer{maxTokens: maxTokens}
}

func (b *Buffer) Append(turn Turn) {
	if turn.TokenCount <= 0 {
		turn.TokenCount = EstimateTokens(turn.Text)
	}
	b.turns = append(b.turns, turn)
	b.total += turn.TokenCount

	if b.maxTokens <= 0 {
		return
	}
	for b.total > b.maxTokens && len(b.turns) > 1 {
		b.total -= b.turns[0].TokenCount
		b.turns = b.turns[1:]
	}
}

func (b *Buffer) Context(maxTokens int) []Turn {
	return contextWindow(b.turns, maxTokens)
}

func (b *Buffer) Snapshot() []Turn {
	out := make([]Turn, len(b.turns))
	copy(out, b.turns)
	return out
}

func (b *Buffer) Restore(turns []Turn) {
	b.turns = make([]Turn, len(turns))
	copy(b.turns, turns)
	b.total = 0
	for _, t := range b.turns {
		b.total += t.TokenCount
	}
}

func (b *Buffer) Clear() {
	b.turns = nil
	b.total = 0
}
