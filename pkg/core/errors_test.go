package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerErrorUnwrap(t *testing.T) {
	err := &WorkerError{ChunkID: 3, Err: context.Canceled}

	assert.ErrorIs(t, err, ErrWorkerFailure)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "chunk 3")

	var we *WorkerError
	assert.True(t, errors.As(err, &we))
	assert.Equal(t, 3, we.ChunkID)
}

func TestInvalidf(t *testing.T) {
	err := Invalidf("records must be positive, got %d", -1)

	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Equal(t, "invalid configuration: records must be positive, got -1", err.Error())
}
