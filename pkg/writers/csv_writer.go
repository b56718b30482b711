package writers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/TFMV/fakeset/pkg/core"
)

// CSVWriter writes records as a comma separated table with a header row.
// Missing values are written as empty fields.
type CSVWriter struct {
	out    io.Writer
	file   *os.File
	writer *csv.Writer
	schema *arrow.Schema
	mem    memory.Allocator
}

// NewCSVWriter creates a CSV file at config.Path.
func NewCSVWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for CSV writer")
	}

	file, err := os.Create(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file: %w", err)
	}

	return &CSVWriter{out: file, file: file, mem: memory.DefaultAllocator}, nil
}

// NewCSVStreamWriter writes CSV to w. Closing the writer flushes it but does
// not close w.
func NewCSVStreamWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{out: w, mem: memory.DefaultAllocator}
}

// Write writes a record. The header is written with the first record.
func (w *CSVWriter) Write(ctx context.Context, record arrow.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	text := textRecord(w.mem, record)
	defer text.Release()

	if w.writer == nil {
		w.schema = text.Schema()
		w.writer = csv.NewWriter(w.out, w.schema,
			csv.WithHeader(true),
			csv.WithComma(','),
			csv.WithNullWriter(core.MissingValue),
		)
	}

	if err := w.writer.Write(text); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Close flushes buffered rows and closes the file if the writer owns one.
func (w *CSVWriter) Close() error {
	var err error

	if w.writer != nil {
		w.writer.Flush()
		err = w.writer.Error()
	}

	if w.file != nil {
		if closeErr := w.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}

	return err
}
