package metrics

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

const nullMarker = "\x00"

// SummarizeRecord counts missing values per column and exact duplicate rows.
func SummarizeRecord(rec arrow.Record) DatasetSummary {
	rows := rec.NumRows()
	cols := make([]ColumnSummary, rec.NumCols())
	for i, f := range rec.Schema().Fields() {
		missing := int64(rec.Column(i).NullN())
		var ratio float64
		if rows > 0 {
			ratio = float64(missing) / float64(rows)
		}
		cols[i] = ColumnSummary{
			Name:         f.Name,
			Type:         f.Type.String(),
			Missing:      missing,
			MissingRatio: ratio,
		}
	}

	return DatasetSummary{
		Rows:            rows,
		Columns:         cols,
		ExactDuplicates: CountExactDuplicates(rec),
	}
}

// CountExactDuplicates counts rows that repeat an earlier row value for value.
// Two missing values compare equal.
func CountExactDuplicates(rec arrow.Record) int64 {
	seen := make(map[string]struct{}, rec.NumRows())
	var dups int64
	var sb strings.Builder
	for row := 0; row < int(rec.NumRows()); row++ {
		sb.Reset()
		for _, col := range rec.Columns() {
			if col.IsNull(row) {
				sb.WriteString(nullMarker)
			} else {
				sb.WriteString(col.ValueStr(row))
			}
			sb.WriteByte(0x1f)
		}
		key := sb.String()
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}
