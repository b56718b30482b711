package fields

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	windowStart = time.Date(1961, 11, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2008, 10, 28, 0, 0, 0, 0, time.UTC)
)

// fill appends n values of g drawn from a faker seeded with seed.
func fill(t *testing.T, g Generator, seed int64, n int, missing func(i int) bool) arrow.Array {
	t.Helper()
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { mem.AssertSize(t, 0) })

	b := array.NewBuilder(mem, g.Field().Type)
	defer b.Release()

	src := &Source{Faker: gofakeit.New(seed), ChunkID: 4}
	for i := 0; i < n; i++ {
		src.Row = i
		g.Append(b, src, missing != nil && missing(i))
	}
	arr := b.NewArray()
	t.Cleanup(arr.Release)
	return arr
}

func TestWorkerName(t *testing.T) {
	arr := fill(t, WorkerName{Name: "Name"}, 1, 3, nil).(*array.String)

	assert.Equal(t, "Worker_4_0", arr.Value(0))
	assert.Equal(t, "Worker_4_2", arr.Value(2))
	assert.Zero(t, WorkerName{}.MissingRate())
	assert.False(t, WorkerName{Name: "Name"}.Field().Nullable)
}

func TestPersonNameDeterministic(t *testing.T) {
	a := fill(t, PersonName{Name: "Name"}, 11, 20, nil).(*array.String)
	b := fill(t, PersonName{Name: "Name"}, 11, 20, nil).(*array.String)
	c := fill(t, PersonName{Name: "Name"}, 12, 20, nil).(*array.String)

	differs := false
	for i := 0; i < a.Len(); i++ {
		assert.NotEmpty(t, a.Value(i))
		assert.Equal(t, a.Value(i), b.Value(i))
		differs = differs || a.Value(i) != c.Value(i)
	}
	assert.True(t, differs, "different seeds should produce different names")
}

func TestIntRangeBounds(t *testing.T) {
	g := IntRange{Name: "Salary", Min: 30_000, Max: 200_000, Missing: 0.5}
	arr := fill(t, g, 7, 500, nil).(*array.Int64)

	for i := 0; i < arr.Len(); i++ {
		require.True(t, arr.IsValid(i))
		assert.GreaterOrEqual(t, arr.Value(i), int64(30_000))
		assert.LessOrEqual(t, arr.Value(i), int64(200_000))
	}
}

func TestMissingKeepsStreamAligned(t *testing.T) {
	g := IntRange{Name: "Salary", Min: 0, Max: 1_000_000}
	full := fill(t, g, 99, 50, nil).(*array.Int64)
	holes := fill(t, g, 99, 50, func(i int) bool { return i%3 == 0 }).(*array.Int64)

	for i := 0; i < full.Len(); i++ {
		if i%3 == 0 {
			assert.True(t, holes.IsNull(i))
			continue
		}
		assert.Equal(t, full.Value(i), holes.Value(i), "row %d", i)
	}
}

func TestDateRangeBounds(t *testing.T) {
	g := DateRange{Name: "BirthDate", Start: windowStart, End: windowEnd, Missing: 0.5}
	lo, hi := g.Bounds()
	arr := fill(t, g, 3, 500, nil).(*array.Date32)

	for i := 0; i < arr.Len(); i++ {
		assert.GreaterOrEqual(t, arr.Value(i), lo)
		assert.LessOrEqual(t, arr.Value(i), hi)
	}
}

func TestTimeOfDay(t *testing.T) {
	arr := fill(t, TimeOfDay{Name: "Time", Missing: 0.5}, 5, 200, nil).(*array.Time32)

	for i := 0; i < arr.Len(); i++ {
		assert.GreaterOrEqual(t, int32(arr.Value(i)), int32(0))
		assert.Less(t, int32(arr.Value(i)), int32(24*3600))
	}
}

func TestNormalRounding(t *testing.T) {
	g := Normal{Name: "Height", Mean: 170, StdDev: 10, Decimals: 2, Missing: 0.3}
	arr := fill(t, g, 8, 200, nil).(*array.Float64)

	for i := 0; i < arr.Len(); i++ {
		v := arr.Value(i)
		assert.InDelta(t, Round(v, 2), v, 1e-9)
		assert.InDelta(t, 170, v, 100)
	}
}

func TestDateTimeBounds(t *testing.T) {
	g := DateTime{Name: "BirthDate", Start: windowStart, End: windowEnd, Missing: 0.3}
	arr := fill(t, g, 9, 200, func(i int) bool { return i == 0 }).(*array.String)

	assert.True(t, arr.IsNull(0))
	for i := 1; i < arr.Len(); i++ {
		ts, err := time.Parse(DateTimeLayout, arr.Value(i))
		require.NoError(t, err)
		assert.False(t, ts.Before(windowStart.Truncate(time.Second)))
		assert.False(t, ts.After(windowEnd))
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 170.13, Round(170.125001, 2))
	assert.Equal(t, -1.5, Round(-1.46, 1))
	assert.Equal(t, 3.0, Round(2.5, 0))
}
