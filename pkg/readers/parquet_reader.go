package readers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/TFMV/fakeset/pkg/core"
)

// ParquetReader implements a reader for Parquet files.
type ParquetReader struct {
	schema     *arrow.Schema
	file       *os.File
	fileReader *file.Reader
	records    pqarrow.RecordReader
}

// NewParquetReader creates a new Parquet reader.
func NewParquetReader(config core.ReaderConfig) (core.DatasetReader, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for Parquet reader")
	}

	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	f, err := os.Open(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Parquet file: %w", err)
	}

	parquetReader, err := file.NewParquetReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create Parquet file reader: %w", err)
	}

	arrowProps := pqarrow.ArrowReadProperties{
		Parallel:  true,
		BatchSize: batchSize,
	}
	arrowReader, err := pqarrow.NewFileReader(parquetReader, arrowProps, memory.NewGoAllocator())
	if err != nil {
		parquetReader.Close()
		return nil, fmt.Errorf("failed to create Arrow reader: %w", err)
	}

	// nil column and row group lists select everything.
	records, err := arrowReader.GetRecordReader(context.Background(), nil, nil)
	if err != nil {
		parquetReader.Close()
		return nil, fmt.Errorf("failed to create record reader: %w", err)
	}

	return &ParquetReader{
		schema:     records.Schema(),
		file:       f,
		fileReader: parquetReader,
		records:    records,
	}, nil
}

// Read returns the next batch. The record is valid until the next call.
func (r *ParquetReader) Read(ctx context.Context) (arrow.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !r.records.Next() {
		if err := r.records.Err(); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read Parquet: %w", err)
		}
		return nil, io.EOF
	}
	return r.records.Record(), nil
}

func (r *ParquetReader) Schema() *arrow.Schema {
	return r.schema
}

// NumRows returns the row count from the file metadata.
func (r *ParquetReader) NumRows() int64 {
	return r.fileReader.NumRows()
}

// Close closes the reader and releases resources.
func (r *ParquetReader) Close() error {
	if r.records != nil {
		r.records.Release()
		r.records = nil
	}
	var err error
	if r.fileReader != nil {
		err = r.fileReader.Close()
		r.fileReader = nil
	}
	// The Parquet reader may already have closed the file.
	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) && err == nil {
			err = closeErr
		}
		r.file = nil
	}
	return err
}
