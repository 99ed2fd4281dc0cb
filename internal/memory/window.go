package memory

// Window is a memory store that retains only the most recent maxTurns
// turns, regardless of their token counts.
type Window struct {
	maxTurns int
	turns    []Turn
}

// NewWindow creates a Window keeping the last maxTurns turns. A
// non-positive limit disables eviction.
func NewWindow(maxTurns int) *Window {
	return &Window{maxTurns: maxTurns}
}

func (w *Window) Append(turn Turn) {
	if turn.TokenCount <= 0 {
		turn.TokenCount = EstimateTokens(turn.Text)
	}
	w.turns = append(w.turns, turn)
	if w.maxTurns > 0 && len(w.turns) > w.maxTurns {
		w.turns = w.turns[len(w.turns)-w.maxTurns:]
	}
}

func (w *Window) Context(maxTokens int) []Turn {
	return contextWindow(w.turns, maxTokens)
}

func (w *Window) Snapshot() []Turn {
	out := make([]Turn, len(w.turns))
	copy(out, w.turns)
	return out
}

func (w *Window) Restore(turns []Turn) {
	w.turns = make([]Turn, len(turns))
	copy(w.turns, turns)
}

func (w *Window) Clear() {
	w.turns = nil
}
