package chunker

import (
	"errors"
	"strings"
	"testing"
)

// TestSplit_OffsetsAndOverlap verifies the window positions for a
// 1000-character document with size 300 and overlap 50.
func TestSplit_OffsetsAndOverlap(t *testing.T) {
	text := strings.Repeat("a", 1000)

	c, err := New(300, 50)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	chunks := c.Split("doc1", text)

	want := [][2]int{{0, 300}, {250, 550}, {500, 800}, {750, 1000}}
	if len(chunks) != len(want) {
		t.Fatalf("Expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, w := range want {
		if chunks[i].StartOffset != w[0] || chunks[i].EndOffset != w[1] {
			t.Errorf("Chunk %d offsets: expected [%d,%d), got [%d,%d)",
				i, w[0], w[1], chunks[i].StartOffset, chunks[i].EndOffset)
		}
		if chunks[i].Index != i {
			t.Errorf("Chunk %d index: expected %d, got %d", i, i, chunks[i].Index)
		}
		if chunks[i].DocumentID != "doc1" {
			t.Errorf("Chunk %d document id: expected doc1, got %q", i, chunks[i].DocumentID)
		}
	}

	if chunks[1].ID != "doc1:1" {
		t.Errorf("Chunk 1 ID: expected doc1:1, got %q", chunks[1].ID)
	}
}

// TestSplit_RoundTrip verifies that concatenating chunk texts with the
// overlap removed reconstructs the input exactly.
func TestSplit_RoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		size    int
		overlap int
	}{
		{"even split", strings.Repeat("x", 900), 300, 50},
		{"short tail", "the quick brown fox jumps over the lazy dog", 10, 3},
		{"no overlap", strings.Repeat("y", 457), 100, 0},
		{"single chunk", "short", 300, 50},
		{"multibyte runes", strings.Repeat("ñé", 321), 64, 16},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(tc.size, tc.overlap)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			chunks := c.Split("d", tc.text)

			var b strings.Builder
			for i, ch := range chunks {
				runes := []rune(ch.Text)
				if i == 0 {
					b.WriteString(ch.Text)
				} else {
					b.WriteString(string(runes[tc.overlap:]))
				}
				if ch.EndOffset-ch.StartOffset > tc.size {
					t.Errorf("Chunk %d longer than size: [%d,%d)", i, ch.StartOffset, ch.EndOffset)
				}
			}
			if b.String() != tc.text {
				t.Errorf("Round trip mismatch: got %d runes, want %d runes",
					len([]rune(b.String())), len([]rune(tc.text)))
			}
		})
	}
}

// TestSplit_EmptyInput verifies that empty text produces no chunks and no error.
func TestSplit_EmptyInput(t *testing.T) {
	c, err := New(100, 10)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if chunks := c.Split("d", ""); len(chunks) != 0 {
		t.Errorf("Expected no chunks for empty input, got %d", len(chunks))
	}
}

// TestNew_InvalidConfig verifies parameter validation.
func TestNew_InvalidConfig(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
		{"negative overlap", 100, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.size, tc.overlap); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
