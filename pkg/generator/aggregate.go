package generator

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/TFMV/fakeset/pkg/core"
	"github.com/TFMV/fakeset/pkg/schema"
)

// Aggregate concatenates the chunk records in slice order. Every chunk must
// have the schema of the first one. Row i of the result is row i of the
// dataset; rows are neither reordered nor deduplicated.
func Aggregate(mem memory.Allocator, chunks []*Chunk) (arrow.Record, error) {
	if len(chunks) == 0 {
		return nil, core.Invalidf("no chunks to aggregate")
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	want := chunks[0].Record.Schema()
	var rows int64
	for _, c := range chunks {
		if err := schema.Compare(c.Record.Schema(), want); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", c.ID, err)
		}
		rows += c.Record.NumRows()
	}

	cols := make([]arrow.Array, want.NumFields())
	defer func() {
		for _, col := range cols {
			if col != nil {
				col.Release()
			}
		}
	}()

	parts := make([]arrow.Array, len(chunks))
	for i := range cols {
		for j, c := range chunks {
			parts[j] = c.Record.Column(i)
		}
		col, err := array.Concatenate(parts, mem)
		if err != nil {
			return nil, fmt.Errorf("concatenating column %s: %w", want.Field(i).Name, err)
		}
		cols[i] = col
	}

	return array.NewRecord(want, cols, rows), nil
}
