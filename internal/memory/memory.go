// Package memory maintains the ordered, token-bounded log of conversation
// turns used as multi-turn context. Stores are not safe for concurrent
// use; each session owns its own instance.
package memory

import (
	"errors"
	"fmt"
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single conversation message. The JSON shape is the persisted
// snapshot format and must round-trip exactly.
type Turn struct {
	Role       Role      `json:"role"`
	Text       string    `json:"text"`
	TokenCount int       `json:"token_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store is the conversational memory capability. Implementations differ
// only in eviction policy and are selected at construction via New.
type Store interface {
	// Append adds a turn at the end, evicting from the front according
	// to the store's policy. The just-appended turn is never evicted to
	// make room for itself.
	Append(turn Turn)

	// Context returns the most recent turns whose cumulative token count
	// fits maxTokens, oldest first. The newest turn is always included.
	Context(maxTokens int) []Turn

	// Snapshot returns a copy of the retained turns in order.
	Snapshot() []Turn

	// Restore replaces the retained turns with the snapshot, without
	// re-applying eviction, so a restored store is observationally
	// identical to the one snapshotted.
	Restore(turns []Turn)

	// Clear drops all retained turns.
	Clear()
}

// Memory store kinds accepted by New.
const (
	KindBuffer = "buffer"
	KindWindow = "window"
)

// ErrUnknownKind reports a memory type outside the supported set.
var ErrUnknownKind = errors.New("unknown memory type")

// New creates a memory store of the given kind. For buffer, limit is the
// token budget; for window, the number of retained turns. An empty kind
// selects buffer.
func New(kind string, limit int) (Store, error) {
	switch kind {
	case "", KindBuffer:
		return NewBuffer(limit), nil
	case KindWindow:
		return NewWindow(limit), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// EstimateTokens approximates the token count of text using the rough
// 4-characters-per-token heuristic. Always at least 1 for non-empty text.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := (len(text) + 3) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// contextWindow returns the longest suffix of turns whose cumulative token
// count fits maxTokens, always including the final turn.
func contextWindow(turns []Turn, maxTokens int) []Turn {
	if len(turns) == 0 {
		return nil
	}
	total := 0
	start := len(turns)
	for i := len(turns) - 1; i >= 0; i-- {
		total += turns[i].TokenCount
		if total > maxTokens && start < len(turns) {
			break
		}
		start = i
	}
	out := make([]Turn, len(turns)-start)
	copy(out, turns[start:])
	return out
}
