package memory

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turn(role Role, text string, tokens int) Turn {
	return Turn{Role: role, Text: text, TokenCount: tokens, Timestamp: time.Now().UTC()}
}

func TestBuffer_EvictsOldestWhenOverBudget(t *testing.T) {
	b := NewBuffer(100)
	b.Append(turn(RoleUser, "q1", 40))
	b.Append(turn(RoleAssistant, "a1", 40))
	b.Append(turn(RoleUser, "q2", 40)) // 120 > 100: evict q1

	got := b.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].Text)
	assert.Equal(t, "q2", got[1].Text)
}

func TestBuffer_NewestTurnNeverEvictedForItself(t *testing.T) {
	b := NewBuffer(50)
	b.Append(turn(RoleUser, "small", 10))
	b.Append(turn(RoleAssistant, "huge", 500)) // alone exceeds budget

	got := b.Snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "huge", got[0].Text)
}

func TestBuffer_ContextWithinBudgetAndNewestPresent(t *testing.T) {
	b := NewBuffer(0) // unbounded retention; budget applies at read time
	for i := 0; i < 10; i++ {
		b.Append(turn(RoleUser, "turn", 30))
	}

	got := b.Context(100)
	require.Len(t, got, 3)

	total := 0
	for _, tr := range got {
		total += tr.TokenCount
	}
	assert.LessOrEqual(t, total, 100)

	// Most recently appended turn present, oldest-first ordering.
	full := b.Snapshot()
	assert.Equal(t, full[len(full)-1], got[len(got)-1])
}

func TestBuffer_EstimatesMissingTokenCounts(t *testing.T) {
	b := NewBuffer(1000)
	b.Append(Turn{Role: RoleUser, Text: "twelve chars", Timestamp: time.Now()})

	got := b.Snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].TokenCount)
}

func TestWindow_KeepsLastNTurns(t *testing.T) {
	w := NewWindow(2)
	w.Append(turn(RoleUser, "one", 1))
	w.Append(turn(RoleAssistant, "two", 1))
	w.Append(turn(RoleUser, "three", 1))

	got := w.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[0].Text)
	assert.Equal(t, "three", got[1].Text)
}

func TestSnapshotRestore_Identical(t *testing.T) {
	b := NewBuffer(1000)
	b.Append(turn(RoleUser, "hello", 5))
	b.Append(turn(RoleAssistant, "hi there", 7))
	snap := b.Snapshot()

	fresh := NewBuffer(1000)
	fresh.Restore(snap)
	assert.Equal(t, snap, fresh.Snapshot())
}

func TestSaveLoadFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	turns := []Turn{
		{Role: RoleUser, Text: "¿qué es la inflación?", TokenCount: 6, Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{Role: RoleAssistant, Text: "Inflation is...", TokenCount: 4, Timestamp: time.Date(2025, 3, 1, 12, 0, 5, 0, time.UTC)},
	}

	require.NoError(t, SaveFile(path, turns))
	loaded, err := LoadFile(path)
	require.NoError(t, err)

	require.Len(t, loaded, len(turns))
	for i := range turns {
		assert.Equal(t, turns[i].Role, loaded[i].Role)
		assert.Equal(t, turns[i].Text, loaded[i].Text)
		assert.Equal(t, turns[i].TokenCount, loaded[i].TokenCount)
		assert.True(t, turns[i].Timestamp.Equal(loaded[i].Timestamp))
	}
}

func TestSaveFile_EmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	require.NoError(t, SaveFile(path, nil))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestNew_KindSelection(t *testing.T) {
	s, err := New("", 100)
	require.NoError(t, err)
	assert.IsType(t, &Buffer{}, s)

	s, err = New(KindWindow, 4)
	require.NoError(t, err)
	assert.IsType(t, &Window{}, s)

	_, err = New("summary", 100)
	assert.ErrorIs(t, err, ErrUnknownKind)
}
