package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/fakeset/pkg/core"
)

func TestNewPlan(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		chunks     int
		chunkSize  int
		numChunks  int
		rows       int
		truncation int
	}{
		{"even split", 100, 10, 10, 10, 100, 0},
		{"large", 1_000_000, 10, 100_000, 10, 1_000_000, 0},
		{"truncated", 105, 10, 10, 10, 100, 5},
		{"extra chunk", 19, 10, 1, 19, 19, 0},
		{"exactly ten", 10, 10, 1, 10, 10, 0},
		{"custom chunk count", 100, 4, 25, 4, 100, 0},
		{"remainder becomes chunks", 103, 4, 25, 4, 100, 3},
		{"single chunk", 7, 1, 7, 1, 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPlan(tt.total, tt.chunks)
			require.NoError(t, err)
			assert.Equal(t, tt.chunkSize, p.ChunkSize)
			assert.Equal(t, tt.numChunks, p.NumChunks)
			assert.Equal(t, tt.rows, p.Rows())
			assert.Equal(t, tt.truncation, p.Truncated())

			md := p.Metadata()
			assert.Equal(t, tt.rows, md.Rows)
			assert.Equal(t, tt.truncation, md.Truncated)
		})
	}
}

func TestNewPlanInvalid(t *testing.T) {
	for _, tc := range []struct{ total, chunks int }{
		{5, 10},
		{9, 10},
		{0, 10},
		{-1, 10},
		{100, 0},
	} {
		_, err := NewPlan(tc.total, tc.chunks)
		assert.ErrorIs(t, err, core.ErrInvalidConfiguration, "total=%d chunks=%d", tc.total, tc.chunks)
	}
}

func TestPlanTasks(t *testing.T) {
	p, err := NewPlan(100, 10)
	require.NoError(t, err)

	tasks := p.Tasks()
	require.Len(t, tasks, 10)
	for i, task := range tasks {
		assert.Equal(t, i, task.ChunkID)
		assert.Equal(t, 10, task.Size)
	}
}

func TestUniqueAndDuplicateSize(t *testing.T) {
	tests := []struct {
		size     int
		fraction float64
		unique   int
	}{
		{10, 0.1, 9},
		{10, 0, 10},
		{10, 0.5, 5},
		{10, 0.99, 0},
		{1, 0.1, 0},
		{3, 0.5, 1},
		{100_000, 0.1, 90_000},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.unique, UniqueSize(tt.size, tt.fraction), "size=%d fraction=%v", tt.size, tt.fraction)
		assert.Equal(t, tt.size-tt.unique, DuplicateSize(tt.size, tt.fraction))
	}
}
