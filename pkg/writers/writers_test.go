package writers

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/fakeset/pkg/core"
)

var peopleSchema = arrow.NewSchema([]arrow.Field{
	{Name: "Name", Type: arrow.BinaryTypes.String},
	{Name: "Salary", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "BirthDate", Type: arrow.FixedWidthTypes.Date32, Nullable: true},
	{Name: "Time", Type: arrow.FixedWidthTypes.Time32s, Nullable: true},
}, nil)

// peopleRecord builds three rows; the second has every optional value missing.
func peopleRecord(t *testing.T, mem memory.Allocator) arrow.Record {
	t.Helper()
	b := array.NewRecordBuilder(mem, peopleSchema)
	defer b.Release()

	birth := arrow.Date32FromTime(time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC))
	b.Field(0).(*array.StringBuilder).AppendValues([]string{"Worker_0_0", "Worker_0_1", "Worker_0_0"}, nil)
	b.Field(1).(*array.Int64Builder).AppendValues([]int64{52000, 0, 52000}, []bool{true, false, true})
	b.Field(2).(*array.Date32Builder).AppendValues([]arrow.Date32{birth, 0, birth}, []bool{true, false, true})
	b.Field(3).(*array.Time32Builder).AppendValues([]arrow.Time32{13*3600 + 4*60 + 5, 0, 13*3600 + 4*60 + 5}, []bool{true, false, true})

	rec := b.NewRecord()
	t.Cleanup(rec.Release)
	return rec
}

func TestCSVStreamWriter(t *testing.T) {
	rec := peopleRecord(t, memory.NewGoAllocator())

	var buf bytes.Buffer
	w := NewCSVStreamWriter(&buf)
	require.NoError(t, w.Write(context.Background(), rec))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Name,Salary,BirthDate,Time", lines[0])
	assert.Equal(t, "Worker_0_0,52000,1990-05-17,13:04:05", lines[1])
	assert.Equal(t, "Worker_0_1,,,", lines[2])
	assert.Equal(t, lines[1], lines[3])
}

func TestCSVWriterFile(t *testing.T) {
	rec := peopleRecord(t, memory.NewGoAllocator())
	path := filepath.Join(t.TempDir(), "people.csv")

	err := WriteRecord(context.Background(), core.WriterConfig{Type: "csv", Path: path}, rec)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Name,Salary,BirthDate,Time\n"))
	assert.Equal(t, 4, strings.Count(string(data), "\n"))
}

func TestCSVWriterCancelled(t *testing.T) {
	rec := peopleRecord(t, memory.NewGoAllocator())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewCSVStreamWriter(&bytes.Buffer{})
	assert.ErrorIs(t, w.Write(ctx, rec), context.Canceled)
	assert.NoError(t, w.Close())
}

func TestTextRecordLeavesOtherTypes(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { mem.AssertSize(t, 0) })

	rec := peopleRecord(t, mem)
	text := textRecord(mem, rec)
	defer text.Release()

	assert.True(t, arrow.TypeEqual(arrow.BinaryTypes.String, text.Schema().Field(3).Type))
	assert.True(t, arrow.TypeEqual(arrow.FixedWidthTypes.Date32, text.Schema().Field(2).Type))
	assert.True(t, text.Column(3).IsNull(1))
	assert.Equal(t, "13:04:05", text.Column(3).(*array.String).Value(0))
}

func TestJSONWriter(t *testing.T) {
	rec := peopleRecord(t, memory.NewGoAllocator())
	path := filepath.Join(t.TempDir(), "people.jsonl")

	require.NoError(t, WriteRecord(context.Background(), core.WriterConfig{Type: "json", Path: path}, rec))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var rows []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var row map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &row))
		rows = append(rows, row)
	}
	require.NoError(t, sc.Err())
	require.Len(t, rows, 3)

	assert.Equal(t, "Worker_0_0", rows[0]["Name"])
	assert.EqualValues(t, 52000, rows[0]["Salary"])
	assert.Equal(t, "1990-05-17", rows[0]["BirthDate"])
	assert.Equal(t, "13:04:05", rows[0]["Time"])
	assert.Equal(t, "", rows[1]["Salary"])
	assert.Equal(t, "", rows[1]["Time"])
}

func TestJSONStreamWriter(t *testing.T) {
	rec := peopleRecord(t, memory.NewGoAllocator())

	var buf bytes.Buffer
	w := NewJSONStreamWriter(&buf)
	require.NoError(t, w.Write(context.Background(), rec))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `{"Name":"Worker_0_1","Salary":"","BirthDate":"","Time":""}`, lines[1])
}

func TestArrowWriter(t *testing.T) {
	rec := peopleRecord(t, memory.NewGoAllocator())
	path := filepath.Join(t.TempDir(), "people.arrow")

	require.NoError(t, WriteRecord(context.Background(), core.WriterConfig{Type: "arrow", Path: path}, rec))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r, err := ipc.NewFileReader(f)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 1, r.NumRecords())
	got, err := r.Record(0)
	require.NoError(t, err)
	assert.True(t, array.RecordEqual(rec, got))
}

func TestParquetWriterCompression(t *testing.T) {
	rec := peopleRecord(t, memory.NewGoAllocator())
	dir := t.TempDir()

	for _, codec := range []string{"", "snappy", "zstd", "gzip", "none"} {
		path := filepath.Join(dir, "people-"+codec+".parquet")
		cfg := core.WriterConfig{Type: "parquet", Path: path, Compression: codec}
		require.NoError(t, WriteRecord(context.Background(), cfg, rec), codec)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	_, err := NewParquetWriter(core.WriterConfig{Path: filepath.Join(dir, "x.parquet"), Compression: "lz5"})
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestFactory(t *testing.T) {
	assert.Equal(t, []string{"adbc", "arrow", "csv", "json", "parquet", "postgres"}, DefaultFactory.Types())

	_, err := DefaultFactory.Create(core.WriterConfig{Type: "xlsx"})
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)

	for _, typ := range []string{"csv", "parquet", "arrow", "json"} {
		_, err := DefaultFactory.Create(core.WriterConfig{Type: typ})
		assert.Error(t, err, "%s writer without a path", typ)
	}

	_, err = NewADBCWriter(core.WriterConfig{Table: "t"})
	assert.Error(t, err)
	_, err = NewPostgresWriter(core.WriterConfig{Table: "t"})
	assert.Error(t, err)
}
