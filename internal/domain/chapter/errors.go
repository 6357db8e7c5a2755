package chapter

import "errors"

var (
	// ErrChapterNotFound indicates the chapter doesn't exist in the project.
	ErrChapterNotFound = errors.New("chapter not found")
	// ErrInvalidTarget indicates a relocation target outside [1, N].
	ErrInvalidTarget = errors.New("invalid target order number")
	// ErrInvalidInput indicates invalid chapter input.
	ErrInvalidInput = errors.New("invalid chapter input")
	// ErrConflict indicates the project's chapters changed during the operation.
	ErrConflict = errors.New("chapters modified concurrently")
	// ErrInconsistentOrder indicates stored order numbers are not 1..N.
	ErrInconsistentOrder = errors.New("chapter order numbers are not contiguous")
)
