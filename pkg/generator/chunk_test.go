package generator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/fakeset/config"
	"github.com/TFMV/fakeset/pkg/core"
	"github.com/TFMV/fakeset/pkg/fields"
	"github.com/TFMV/fakeset/pkg/schema"
)

var referenceDate = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig(fieldSchema string) *config.GenerationConfig {
	cfg := config.Default().Generation
	cfg.FieldSchema = fieldSchema
	cfg.WorkerCount = 4
	cfg.ReferenceDate = referenceDate
	return &cfg
}

func newChunkGenerator(t *testing.T, cfg *config.GenerationConfig) *ChunkGenerator {
	t.Helper()
	s, err := schema.New(cfg)
	require.NoError(t, err)
	return NewChunkGenerator(cfg, s, memory.NewGoAllocator())
}

func generateChunk(t *testing.T, cg *ChunkGenerator, id, size int) *Chunk {
	t.Helper()
	c, err := cg.Generate(context.Background(), Task{ChunkID: id, Size: size})
	require.NoError(t, err)
	t.Cleanup(c.Release)
	return c
}

// rowsEqual compares row i and row j of rec column by column.
func rowsEqual(rec arrow.Record, i, j int) bool {
	for _, col := range rec.Columns() {
		if col.IsNull(i) != col.IsNull(j) {
			return false
		}
		if !col.IsNull(i) && col.ValueStr(i) != col.ValueStr(j) {
			return false
		}
	}
	return true
}

func TestChunkComposition(t *testing.T) {
	cg := newChunkGenerator(t, testConfig("A"))
	c := generateChunk(t, cg, 3, 10)

	assert.Equal(t, 3, c.ID)
	assert.Equal(t, 9, c.UniqueRows)
	assert.Equal(t, 1, c.DuplicateRows)
	assert.EqualValues(t, 10, c.Record.NumRows())
	require.Len(t, c.DuplicateOf, 1)

	names := c.Record.Column(0).(*array.String)
	for i := 0; i < 9; i++ {
		assert.Equal(t, fmt.Sprintf("Worker_3_%d", i), names.Value(i))
	}

	src := c.DuplicateOf[0]
	assert.GreaterOrEqual(t, src, 0)
	assert.Less(t, src, 9)
	assert.True(t, rowsEqual(c.Record, 9, src), "duplicate row must copy unique row %d", src)

	res := c.Result()
	assert.Equal(t, 10, res.Size)
	assert.Equal(t, 9, res.UniqueRows)
}

func TestChunkDuplicatesComeFromSameChunk(t *testing.T) {
	cfg := testConfig("A")
	cfg.DuplicateFraction = 0.5
	cg := newChunkGenerator(t, cfg)
	c := generateChunk(t, cg, 0, 200)

	assert.Equal(t, 100, c.UniqueRows)
	assert.Equal(t, 100, c.DuplicateRows)
	for i, src := range c.DuplicateOf {
		assert.True(t, rowsEqual(c.Record, c.UniqueRows+i, src))
	}
}

func TestChunkNoDuplicates(t *testing.T) {
	cfg := testConfig("A")
	cfg.DuplicateFraction = 0
	cg := newChunkGenerator(t, cfg)
	c := generateChunk(t, cg, 0, 50)

	assert.Equal(t, 50, c.UniqueRows)
	assert.Zero(t, c.DuplicateRows)
	assert.Empty(t, c.DuplicateOf)
	assert.EqualValues(t, 50, c.Record.NumRows())
}

func TestChunkEmptyPopulation(t *testing.T) {
	cfg := testConfig("A")
	cfg.DuplicateFraction = 0.5
	cg := newChunkGenerator(t, cfg)

	c, err := cg.Generate(context.Background(), Task{ChunkID: 0, Size: 1})
	assert.Nil(t, c)
	assert.ErrorIs(t, err, core.ErrEmptyPopulation)
}

func TestChunkIdentityReproducible(t *testing.T) {
	cg := newChunkGenerator(t, testConfig("B"))

	first := generateChunk(t, cg, 7, 100)
	second := generateChunk(t, cg, 7, 100)
	other := generateChunk(t, cg, 8, 100)

	n := int64(first.UniqueRows)
	firstNames := array.NewSlice(first.Record.Column(0), 0, n)
	defer firstNames.Release()
	secondNames := array.NewSlice(second.Record.Column(0), 0, n)
	defer secondNames.Release()
	otherNames := array.NewSlice(other.Record.Column(0), 0, n)
	defer otherNames.Release()

	assert.True(t, array.Equal(firstNames, secondNames), "same chunk ID must give the same names")
	assert.False(t, array.Equal(firstNames, otherNames), "different chunk IDs should give different names")
}

func TestChunkIdentityIndependentOfMissingness(t *testing.T) {
	a := testConfig("B")
	a.SampleSeed = 1
	b := testConfig("B")
	b.SampleSeed = 2

	ca := generateChunk(t, newChunkGenerator(t, a), 2, 200)
	cb := generateChunk(t, newChunkGenerator(t, b), 2, 200)

	ha := ca.Record.Column(1).(*array.Float64)
	hb := cb.Record.Column(1).(*array.Float64)
	compared := 0
	for i := 0; i < ca.UniqueRows; i++ {
		if ha.IsNull(i) || hb.IsNull(i) {
			continue
		}
		assert.Equal(t, ha.Value(i), hb.Value(i), "row %d", i)
		compared++
	}
	assert.Positive(t, compared)
}

func TestChunkSampleSeedReproducible(t *testing.T) {
	cfg := testConfig("A")
	cfg.SampleSeed = 42
	cg := newChunkGenerator(t, cfg)

	first := generateChunk(t, cg, 1, 100)
	second := generateChunk(t, cg, 1, 100)

	assert.Equal(t, first.DuplicateOf, second.DuplicateOf)
	assert.True(t, array.RecordEqual(first.Record, second.Record))
}

func TestChunkSchemaABounds(t *testing.T) {
	cfg := testConfig("A")
	cg := newChunkGenerator(t, cfg)
	c := generateChunk(t, cg, 0, 2000)

	start, end := cfg.BirthWindow()
	lo := arrow.Date32FromTime(start)
	hi := arrow.Date32FromTime(end)

	salary := c.Record.Column(1).(*array.Int64)
	birth := c.Record.Column(2).(*array.Date32)
	tod := c.Record.Column(3).(*array.Time32)
	for i := 0; i < int(c.Record.NumRows()); i++ {
		if salary.IsValid(i) {
			assert.GreaterOrEqual(t, salary.Value(i), cfg.Salary.Min)
			assert.LessOrEqual(t, salary.Value(i), cfg.Salary.Max)
		}
		if birth.IsValid(i) {
			assert.GreaterOrEqual(t, birth.Value(i), lo)
			assert.LessOrEqual(t, birth.Value(i), hi)
		}
		if tod.IsValid(i) {
			assert.GreaterOrEqual(t, tod.Value(i), arrow.Time32(0))
			assert.Less(t, tod.Value(i), arrow.Time32(24*3600))
		}
	}

	assert.Zero(t, c.Record.Column(0).NullN(), "names are never missing")
	for col := 1; col < 4; col++ {
		ratio := float64(c.Record.Column(col).NullN()) / float64(c.Record.NumRows())
		assert.InDelta(t, schema.MissingRateA, ratio, 0.1, "column %d", col)
	}
}

func TestChunkSchemaBBounds(t *testing.T) {
	cfg := testConfig("B")
	cg := newChunkGenerator(t, cfg)
	c := generateChunk(t, cg, 0, 2000)

	start, end := cfg.BirthWindow()
	height := c.Record.Column(1).(*array.Float64)
	birth := c.Record.Column(2).(*array.String)
	for i := 0; i < int(c.Record.NumRows()); i++ {
		if height.IsValid(i) {
			v := height.Value(i)
			assert.Equal(t, fields.Round(v, 2), v)
		}
		if birth.IsValid(i) {
			ts, err := time.Parse(fields.DateTimeLayout, birth.Value(i))
			require.NoError(t, err)
			assert.False(t, ts.Before(start.Truncate(time.Second)), "%s before window", ts)
			assert.False(t, ts.After(end), "%s after window", ts)
		}
	}

	ratio := float64(height.NullN()) / float64(height.Len())
	assert.InDelta(t, schema.MissingRateB, ratio, 0.1)
}
