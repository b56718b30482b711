// Package fields provides the per-column value generators used to synthesize
// fake personal records.
//
// A generator always draws its value from the seeded faker of the chunk, even
// when the value ends up missing. This keeps the seeded stream aligned so that
// the same chunk ID and configuration reproduce the same identity values
// regardless of which values were blanked out.
package fields

import (
	"fmt"
	"math"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/brianvoe/gofakeit/v6"
)

// DateTimeLayout is the text layout of combined date-time values.
const DateTimeLayout = "2006-01-02 15:04:05"

// Source carries the seeded state of one chunk and the position being generated.
type Source struct {
	Faker   *gofakeit.Faker
	ChunkID int
	Row     int
}

// Generator produces the values of one column.
type Generator interface {
	// Field returns the Arrow field the generator fills.
	Field() arrow.Field

	// MissingRate is the probability that a value is replaced by the missing sentinel.
	MissingRate() float64

	// Append draws the next value from src and appends it to b, or appends a
	// null when missing is set. The value is drawn in both cases.
	Append(b array.Builder, src *Source, missing bool)
}

// WorkerName labels rows as Worker_<chunk>_<row>, unique within a run.
type WorkerName struct {
	Name string
}

func (g WorkerName) Field() arrow.Field {
	return arrow.Field{Name: g.Name, Type: arrow.BinaryTypes.String}
}

func (g WorkerName) MissingRate() float64 { return 0 }

func (g WorkerName) Append(b array.Builder, src *Source, _ bool) {
	b.(*array.StringBuilder).Append(fmt.Sprintf("Worker_%d_%d", src.ChunkID, src.Row))
}

// PersonName draws full names from the faker.
type PersonName struct {
	Name string
}

func (g PersonName) Field() arrow.Field {
	return arrow.Field{Name: g.Name, Type: arrow.BinaryTypes.String}
}

func (g PersonName) MissingRate() float64 { return 0 }

func (g PersonName) Append(b array.Builder, src *Source, _ bool) {
	b.(*array.StringBuilder).Append(src.Faker.Name())
}

// IntRange draws integers uniformly from [Min, Max].
type IntRange struct {
	Name     string
	Min, Max int64
	Missing  float64
}

func (g IntRange) Field() arrow.Field {
	return arrow.Field{Name: g.Name, Type: arrow.PrimitiveTypes.Int64, Nullable: true}
}

func (g IntRange) MissingRate() float64 { return g.Missing }

func (g IntRange) Append(b array.Builder, src *Source, missing bool) {
	v := int64(src.Faker.Number(int(g.Min), int(g.Max)))
	ib := b.(*array.Int64Builder)
	if missing {
		ib.AppendNull()
		return
	}
	ib.Append(v)
}

// Normal draws reals from N(Mean, StdDev) rounded to Decimals places.
type Normal struct {
	Name         string
	Mean, StdDev float64
	Decimals     int
	Missing      float64
}

func (g Normal) Field() arrow.Field {
	return arrow.Field{Name: g.Name, Type: arrow.PrimitiveTypes.Float64, Nullable: true}
}

func (g Normal) MissingRate() float64 { return g.Missing }

func (g Normal) Append(b array.Builder, src *Source, missing bool) {
	v := Round(g.Mean+g.StdDev*src.Faker.Rand.NormFloat64(), g.Decimals)
	fb := b.(*array.Float64Builder)
	if missing {
		fb.AppendNull()
		return
	}
	fb.Append(v)
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

// DateRange draws calendar dates uniformly from [Start, End], both inclusive.
type DateRange struct {
	Name       string
	Start, End time.Time
	Missing    float64
}

func (g DateRange) Field() arrow.Field {
	return arrow.Field{Name: g.Name, Type: arrow.FixedWidthTypes.Date32, Nullable: true}
}

func (g DateRange) MissingRate() float64 { return g.Missing }

// Bounds returns the window as Date32 values.
func (g DateRange) Bounds() (arrow.Date32, arrow.Date32) {
	return arrow.Date32FromTime(g.Start.UTC()), arrow.Date32FromTime(g.End.UTC())
}

func (g DateRange) Append(b array.Builder, src *Source, missing bool) {
	lo, hi := g.Bounds()
	v := lo + arrow.Date32(src.Faker.Number(0, int(hi-lo)))
	db := b.(*array.Date32Builder)
	if missing {
		db.AppendNull()
		return
	}
	db.Append(v)
}

// TimeOfDay draws a wall-clock time with second precision.
type TimeOfDay struct {
	Name    string
	Missing float64
}

func (g TimeOfDay) Field() arrow.Field {
	return arrow.Field{Name: g.Name, Type: arrow.FixedWidthTypes.Time32s, Nullable: true}
}

func (g TimeOfDay) MissingRate() float64 { return g.Missing }

func (g TimeOfDay) Append(b array.Builder, src *Source, missing bool) {
	f := src.Faker
	v := arrow.Time32(f.Hour()*3600 + f.Minute()*60 + f.Second())
	tb := b.(*array.Time32Builder)
	if missing {
		tb.AppendNull()
		return
	}
	tb.Append(v)
}

// DateTime draws instants from [Start, End] and renders them with DateTimeLayout in UTC.
type DateTime struct {
	Name       string
	Start, End time.Time
	Missing    float64
}

func (g DateTime) Field() arrow.Field {
	return arrow.Field{Name: g.Name, Type: arrow.BinaryTypes.String, Nullable: true}
}

func (g DateTime) MissingRate() float64 { return g.Missing }

func (g DateTime) Append(b array.Builder, src *Source, missing bool) {
	v := src.Faker.DateRange(g.Start, g.End).UTC().Format(DateTimeLayout)
	sb := b.(*array.StringBuilder)
	if missing {
		sb.AppendNull()
		return
	}
	sb.Append(v)
}
