package generator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/brianvoe/gofakeit/v6"

	"github.com/TFMV/fakeset/config"
	"github.com/TFMV/fakeset/metrics"
	"github.com/TFMV/fakeset/pkg/core"
	"github.com/TFMV/fakeset/pkg/fields"
	"github.com/TFMV/fakeset/pkg/schema"
)

// Chunk is one independently generated slice of the dataset. Record holds the
// unique rows first, followed by the duplicate rows.
type Chunk struct {
	ID            int
	UniqueRows    int
	DuplicateRows int
	// DuplicateOf[i] is the unique row copied into row UniqueRows+i.
	DuplicateOf []int
	Record      arrow.Record
	Duration    time.Duration
}

// Result summarizes the chunk for reporting.
func (c *Chunk) Result() metrics.ChunkResult {
	return metrics.ChunkResult{
		ChunkID:       c.ID,
		Size:          c.UniqueRows + c.DuplicateRows,
		UniqueRows:    c.UniqueRows,
		DuplicateRows: c.DuplicateRows,
		Duration:      c.Duration,
	}
}

func (c *Chunk) Release() {
	if c.Record != nil {
		c.Record.Release()
		c.Record = nil
	}
}

// ChunkGenerator produces chunks for one configuration and schema. It holds
// no mutable state and may be shared by all workers.
type ChunkGenerator struct {
	cfg    *config.GenerationConfig
	schema *schema.Schema
	mem    memory.Allocator
}

func NewChunkGenerator(cfg *config.GenerationConfig, s *schema.Schema, mem memory.Allocator) *ChunkGenerator {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return &ChunkGenerator{cfg: cfg, schema: s, mem: mem}
}

// Generate builds the chunk for task.
//
// Field values come from a faker seeded with Seed+ChunkID+1, so the same chunk
// ID and configuration always yield the same values. Missingness and duplicate
// selection use a separate stream that is only reproducible when SampleSeed
// is set.
func (g *ChunkGenerator) Generate(ctx context.Context, task Task) (*Chunk, error) {
	unique := UniqueSize(task.Size, g.cfg.DuplicateFraction)
	dups := task.Size - unique
	if unique <= 0 && dups > 0 {
		return nil, fmt.Errorf("%w: chunk %d cannot resample %d duplicates from 0 unique rows",
			core.ErrEmptyPopulation, task.ChunkID, dups)
	}

	src := &fields.Source{
		Faker:   gofakeit.New(g.cfg.Seed + int64(task.ChunkID) + 1),
		ChunkID: task.ChunkID,
	}
	sampler := g.sampler(task.ChunkID)

	b := array.NewRecordBuilder(g.mem, g.schema.Arrow())
	defer b.Release()

	gens := g.schema.Generators()
	for row := 0; row < unique; row++ {
		src.Row = row
		for i, gen := range gens {
			rate := gen.MissingRate()
			missing := rate > 0 && sampler.Float64() < rate
			gen.Append(b.Field(i), src, missing)
		}
	}
	uniqueRec := b.NewRecord()
	defer uniqueRec.Release()

	dupOf := make([]int, dups)
	for i := range dupOf {
		dupOf[i] = sampler.IntN(unique)
	}

	rec, err := g.appendDuplicates(ctx, uniqueRec, dupOf)
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", task.ChunkID, err)
	}

	return &Chunk{
		ID:            task.ChunkID,
		UniqueRows:    unique,
		DuplicateRows: dups,
		DuplicateOf:   dupOf,
		Record:        rec,
	}, nil
}

// sampler returns the stream for stochastic decisions of one chunk.
func (g *ChunkGenerator) sampler(chunkID int) *rand.Rand {
	if g.cfg.SampleSeed != 0 {
		return rand.New(rand.NewPCG(uint64(g.cfg.SampleSeed), uint64(chunkID)))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// appendDuplicates returns rec followed by copies of the rows listed in dupOf.
func (g *ChunkGenerator) appendDuplicates(ctx context.Context, rec arrow.Record, dupOf []int) (arrow.Record, error) {
	if len(dupOf) == 0 {
		rec.Retain()
		return rec, nil
	}

	n := int(rec.NumRows())
	ib := array.NewInt64Builder(g.mem)
	defer ib.Release()
	ib.Reserve(n + len(dupOf))
	for i := 0; i < n; i++ {
		ib.UnsafeAppend(int64(i))
	}
	for _, idx := range dupOf {
		ib.UnsafeAppend(int64(idx))
	}
	indices := ib.NewArray()
	defer indices.Release()

	ctx = compute.WithAllocator(ctx, g.mem)
	cols := make([]arrow.Array, rec.NumCols())
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i, col := range rec.Columns() {
		taken, err := compute.TakeArray(ctx, col, indices)
		if err != nil {
			return nil, fmt.Errorf("resampling column %s: %w", rec.ColumnName(i), err)
		}
		cols[i] = taken
	}

	return array.NewRecord(rec.Schema(), cols, int64(indices.Len())), nil
}
