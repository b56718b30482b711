// Package readers reads generated datasets back as Arrow records.
package readers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/TFMV/fakeset/pkg/core"
)

// DefaultBatchSize is the number of rows per batch when none is configured.
const DefaultBatchSize = 10000

// Factory creates a reader based on the given configuration.
type Factory struct {
	readers map[string]Creator
}

// Creator is a function that creates a reader from a configuration.
type Creator func(config core.ReaderConfig) (core.DatasetReader, error)

// NewFactory creates a new reader factory.
func NewFactory() *Factory {
	return &Factory{
		readers: make(map[string]Creator),
	}
}

// Register registers a creator for a reader type.
func (f *Factory) Register(typ string, creator Creator) {
	f.readers[typ] = creator
}

// Create creates a reader based on the given configuration. An empty or
// "auto" type is resolved from the file extension.
func (f *Factory) Create(config core.ReaderConfig) (core.DatasetReader, error) {
	if config.Type == "" || config.Type == "auto" {
		typ, err := DetectType(config.Path)
		if err != nil {
			return nil, err
		}
		config.Type = typ
	}

	creator, ok := f.readers[config.Type]
	if !ok {
		return nil, core.Invalidf("unsupported reader type: %s", config.Type)
	}
	return creator(config)
}

// DefaultFactory is the default reader factory with built-in reader types.
var DefaultFactory = NewFactory()

func init() {
	DefaultFactory.Register("parquet", NewParquetReader)
	DefaultFactory.Register("arrow", NewArrowReader)
	DefaultFactory.Register("csv", NewCSVReader)
	DefaultFactory.Register("adbc", NewADBCReader)
}

// DetectType maps a file extension to a reader type.
func DetectType(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv", nil
	case ".parquet", ".pq":
		return "parquet", nil
	case ".arrow", ".ipc", ".feather":
		return "arrow", nil
	default:
		return "", core.Invalidf("cannot detect reader type of %q", path)
	}
}

// ReadAll drains r and concatenates every batch into one record, which the
// caller must release. A dataset without rows yields an empty record.
func ReadAll(ctx context.Context, r core.DatasetReader, mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	var batches []arrow.Record
	defer func() {
		for _, b := range batches {
			b.Release()
		}
	}()

	for {
		rec, err := r.Read(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rec.Retain()
		batches = append(batches, rec)
	}

	schema := r.Schema()
	cols := make([]arrow.Array, schema.NumFields())
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()

	var rows int64
	for _, b := range batches {
		rows += b.NumRows()
	}

	for i, f := range schema.Fields() {
		if len(batches) == 0 {
			cols[i] = array.MakeArrayOfNull(mem, f.Type, 0)
			continue
		}
		parts := make([]arrow.Array, len(batches))
		for j, b := range batches {
			parts[j] = b.Column(i)
		}
		col, err := array.Concatenate(parts, mem)
		if err != nil {
			return nil, fmt.Errorf("concatenating column %s: %w", f.Name, err)
		}
		cols[i] = col
	}

	return array.NewRecord(schema, cols, rows), nil
}

// ReadFile opens path with the default factory and reads it whole.
func ReadFile(ctx context.Context, config core.ReaderConfig) (arrow.Record, error) {
	r, err := DefaultFactory.Create(config)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return ReadAll(ctx, r, nil)
}
