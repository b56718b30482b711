package writers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/TFMV/fakeset/pkg/core"
)

// ParquetWriter implements a writer for Parquet files.
type ParquetWriter struct {
	writer     *pqarrow.FileWriter
	file       *os.File
	codec      compress.Compression
	properties pqarrow.ArrowWriterProperties
}

// NewParquetWriter creates a new Parquet writer. config.Compression selects
// the codec: snappy (default), zstd, gzip or none.
func NewParquetWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for Parquet writer")
	}

	codec, err := parquetCodec(config.Compression)
	if err != nil {
		return nil, err
	}

	file, err := os.Create(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create Parquet file: %w", err)
	}

	// Arrow schema is stored so that date and time types survive a round trip.
	return &ParquetWriter{
		file:       file,
		codec:      codec,
		properties: pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()),
	}, nil
}

func parquetCodec(name string) (compress.Compression, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "none":
		return compress.Codecs.Uncompressed, nil
	default:
		return compress.Codecs.Uncompressed, core.Invalidf("unsupported parquet compression %q", name)
	}
}

// Write writes a record to the file.
func (w *ParquetWriter) Write(ctx context.Context, record arrow.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// The file writer needs the schema, so it is created with the first record.
	if w.writer == nil {
		writeProps := parquet.NewWriterProperties(
			parquet.WithCompression(w.codec),
			parquet.WithDictionaryDefault(false),
			// Names repeat within a chunk whenever a row was resampled.
			parquet.WithDictionaryFor("Name", true),
		)

		writer, err := pqarrow.NewFileWriter(record.Schema(), w.file, writeProps, w.properties)
		if err != nil {
			return fmt.Errorf("failed to create Parquet writer: %w", err)
		}
		w.writer = writer
	}

	if err := w.writer.WriteBuffered(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Close closes the writer and flushes any pending data.
func (w *ParquetWriter) Close() error {
	var err error

	if w.writer != nil {
		if closeErr := w.writer.Close(); closeErr != nil {
			err = closeErr
		}
	}

	// The Parquet writer may already have closed the file.
	if w.file != nil {
		if closeErr := w.file.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) && err == nil {
			err = closeErr
		}
	}
	return err
}
