package writers

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Text layouts of temporal values in text outputs.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// textRecord returns rec with time-of-day columns rendered as TimeLayout
// strings, the form text outputs expect. Nulls stay null. The caller must
// release the result.
func textRecord(mem memory.Allocator, rec arrow.Record) arrow.Record {
	var fields []arrow.Field
	var cols []arrow.Array
	converted := false

	for i, f := range rec.Schema().Fields() {
		col := rec.Column(i)
		t32, ok := col.(*array.Time32)
		if !ok {
			col.Retain()
			fields = append(fields, f)
			cols = append(cols, col)
			continue
		}

		converted = true
		unit := f.Type.(*arrow.Time32Type).Unit
		sb := array.NewStringBuilder(mem)
		sb.Reserve(t32.Len())
		for j := 0; j < t32.Len(); j++ {
			if t32.IsNull(j) {
				sb.AppendNull()
				continue
			}
			sb.Append(t32.Value(j).ToTime(unit).Format(TimeLayout))
		}
		fields = append(fields, arrow.Field{Name: f.Name, Type: arrow.BinaryTypes.String, Nullable: f.Nullable})
		cols = append(cols, sb.NewArray())
		sb.Release()
	}

	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	if !converted {
		rec.Retain()
		return rec
	}
	md := rec.Schema().Metadata()
	return array.NewRecord(arrow.NewSchema(fields, &md), cols, rec.NumRows())
}

// textValue returns the JSON-friendly value at row i of col. Missing values
// become the empty-string sentinel.
func textValue(col arrow.Array, i int) any {
	if col.IsNull(i) {
		return ""
	}
	switch c := col.(type) {
	case *array.String:
		return c.Value(i)
	case *array.Int64:
		return c.Value(i)
	case *array.Int32:
		return c.Value(i)
	case *array.Float64:
		return c.Value(i)
	case *array.Boolean:
		return c.Value(i)
	case *array.Date32:
		return c.Value(i).ToTime().Format(DateLayout)
	case *array.Time32:
		return c.Value(i).ToTime(c.DataType().(*arrow.Time32Type).Unit).Format(TimeLayout)
	default:
		return c.ValueStr(i)
	}
}
