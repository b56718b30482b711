package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration reports non-positive counts, out-of-range fractions
	// or a plan whose chunk size resolves to zero.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmptyPopulation reports an attempt to resample duplicates from zero unique rows.
	ErrEmptyPopulation = errors.New("empty population")

	// ErrSchemaMismatch reports chunks with incompatible column sets.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrWorkerFailure reports an unexpected error raised inside a worker.
	ErrWorkerFailure = errors.New("worker failure")
)

// WorkerError wraps the failure of one chunk task.
type WorkerError struct {
	ChunkID int
	Err     error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("chunk %d: %v: %v", e.ChunkID, ErrWorkerFailure, e.Err)
}

// Unwrap exposes both ErrWorkerFailure and the underlying cause to errors.Is.
func (e *WorkerError) Unwrap() []error {
	return []error{ErrWorkerFailure, e.Err}
}

// Invalidf returns an error wrapping ErrInvalidConfiguration.
func Invalidf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, a...))
}
