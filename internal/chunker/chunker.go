// Package chunker splits extracted document text into overlapping
// fixed-size segments, the unit of embedding and retrieval.
package chunker

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidConfig reports chunk parameters that can never produce a valid
// split. It is returned before any work is done.
var ErrInvalidConfig = errors.New("invalid chunker configuration")

// Chunk is a bounded contiguous slice of a document's text. Offsets are
// rune positions into the extracted text; EndOffset is exclusive.
type Chunk struct {
	ID          string // documentID + ":" + index
	DocumentID  string
	Index       int
	Text        string
	StartOffset int
	EndOffset   int
}

// Chunker slides a fixed-size window across document text. Consecutive
// chunks from the same document overlap by exactly the configured overlap,
// except possibly the last.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. size must be positive and overlap must satisfy
// 0 <= overlap < size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap must be in [0, %d), got %d", ErrInvalidConfig, size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the configured window size in runes.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap in runes.
func (c *Chunker) Overlap() int { return c.overlap }

// Split cuts text into chunks, advancing the window by size-overlap runes
// each step. The final chunk may be shorter than the window and is still
// emitted if non-empty. Empty input produces no chunks.
func (c *Chunker) Split(documentID, text string) []Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		idx := len(chunks)
		chunks = append(chunks, Chunk{
			ID:          documentID + ":" + strconv.Itoa(idx),
			DocumentID:  documentID,
			Index:       idx,
			Text:        string(runes[start:end]),
			StartOffset: start,
			EndOffset:   end,
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}
