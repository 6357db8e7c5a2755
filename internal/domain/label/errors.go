package label

import "errors"

var (
	// ErrChapterNotFound indicates the label's chapter doesn't exist.
	ErrChapterNotFound = errors.New("chapter not found")
	// ErrInvalidInput indicates invalid label input.
	ErrInvalidInput = errors.New("invalid label input")
)
