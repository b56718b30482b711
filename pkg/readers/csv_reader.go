package readers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/TFMV/fakeset/pkg/core"
)

// CSVReader reads a CSV file with a header row. Empty fields are read as nulls.
//
// Without an explicit schema every column is read as nullable utf8; this keeps
// sparse columns readable no matter where their first value appears.
type CSVReader struct {
	schema *arrow.Schema
	file   *os.File
	reader *csv.Reader
}

// NewCSVReader creates a new CSV reader.
func NewCSVReader(config core.ReaderConfig) (core.DatasetReader, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for CSV reader")
	}

	file, err := os.Open(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}

	schema := config.Schema
	if schema == nil {
		if schema, err = headerSchema(file); err != nil {
			file.Close()
			return nil, err
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to rewind CSV file: %w", err)
		}
	}

	chunkSize := config.BatchSize
	if chunkSize <= 0 {
		chunkSize = DefaultBatchSize
	}

	reader := csv.NewReader(
		file,
		schema,
		csv.WithChunk(int(chunkSize)),
		csv.WithHeader(true),
		csv.WithNullReader(true, core.MissingValue),
		csv.WithAllocator(memory.NewGoAllocator()),
	)

	return &CSVReader{schema: schema, file: file, reader: reader}, nil
}

// headerSchema builds an all-utf8 schema from the first line of r.
func headerSchema(r io.Reader) (*arrow.Schema, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	names := strings.Split(strings.TrimRight(line, "\r\n"), ",")
	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		fields[i] = arrow.Field{Name: strings.TrimSpace(name), Type: arrow.BinaryTypes.String, Nullable: true}
	}
	return arrow.NewSchema(fields, nil), nil
}

// Read returns the next batch. The record is valid until the next call.
func (r *CSVReader) Read(ctx context.Context) (arrow.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !r.reader.Next() {
		if err := r.reader.Err(); err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		return nil, io.EOF
	}
	return r.reader.Record(), nil
}

func (r *CSVReader) Schema() *arrow.Schema {
	return r.schema
}

// Close closes the reader and releases resources.
func (r *CSVReader) Close() error {
	if r.reader != nil {
		r.reader.Release()
		r.reader = nil
	}
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}
