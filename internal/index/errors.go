package index

import "errors"

var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrEmptyIndex        = errors.New("vector index is empty")
)
