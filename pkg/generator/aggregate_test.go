package generator

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/fakeset/pkg/core"
)

func TestAggregateKeepsChunkOrder(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	chunks := []*Chunk{
		idChunk(mem, Task{ChunkID: 0, Size: 2}),
		idChunk(mem, Task{ChunkID: 1, Size: 3}),
		idChunk(mem, Task{ChunkID: 2, Size: 1}),
	}
	defer func() {
		for _, c := range chunks {
			c.Release()
		}
	}()

	rec, err := Aggregate(mem, chunks)
	require.NoError(t, err)
	defer rec.Release()

	assert.EqualValues(t, 6, rec.NumRows())
	ids := rec.Column(0).(*array.Int64)
	assert.Equal(t, []int64{0, 0, 1, 1, 1, 2}, ids.Int64Values())
}

func TestAggregateSchemaMismatch(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	other := arrow.NewSchema([]arrow.Field{{Name: "other", Type: arrow.PrimitiveTypes.Int64}}, nil)
	b := array.NewRecordBuilder(mem, other)
	b.Field(0).(*array.Int64Builder).Append(1)
	odd := &Chunk{ID: 1, Record: b.NewRecord()}
	b.Release()

	chunks := []*Chunk{idChunk(mem, Task{ChunkID: 0, Size: 1}), odd}
	defer func() {
		for _, c := range chunks {
			c.Release()
		}
	}()

	rec, err := Aggregate(mem, chunks)
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, core.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "chunk 1")
}

func TestAggregateEmpty(t *testing.T) {
	_, err := Aggregate(nil, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}
