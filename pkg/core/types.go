// Package core provides the core types and interfaces shared by the fakeset generator,
// its readers and its writers.
package core

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
)

// MissingValue is the text written in place of a value chosen to be absent.
// In memory a missing value is an Arrow null.
const MissingValue = ""

// DatasetReader defines an interface for reading a generated dataset back.
type DatasetReader interface {
	// Read returns a record batch and an error if any.
	// Returns io.EOF when there are no more batches.
	Read(ctx context.Context) (arrow.Record, error)

	// Schema returns the schema of the dataset.
	Schema() *arrow.Schema

	// Close closes the reader and releases resources.
	Close() error
}

// DatasetWriter defines an interface for writing data to various destinations.
type DatasetWriter interface {
	// Write writes a record to the destination.
	Write(ctx context.Context, record arrow.Record) error

	// Close closes the writer and flushes any pending data.
	Close() error
}

// ReaderConfig provides configuration for creating a reader.
type ReaderConfig struct {
	// Type is the type of the reader.
	Type string

	// Path is the path to the file.
	Path string

	// Schema is the expected schema. Readers that cannot discover types
	// on their own (CSV) use it instead of inferring.
	Schema *arrow.Schema

	// BatchSize is the size of batches to read.
	BatchSize int64

	// ConnectionString, DriverPath, Entrypoint and Table locate a table
	// loaded through ADBC.
	ConnectionString string
	DriverPath       string
	Entrypoint       string
	Table            string
}

// WriterConfig provides configuration for creating a writer.
type WriterConfig struct {
	// Type is the type of the writer.
	Type string

	// Path is the path to the file.
	Path string

	// ConnectionString is the connection string for a database.
	ConnectionString string

	// DriverPath is the shared library of an ADBC driver.
	DriverPath string

	// Entrypoint is the init symbol of the ADBC driver. Empty means DuckDB's.
	Entrypoint string

	// Compression is the Parquet codec name.
	Compression string

	// Table is the table name for a database.
	Table string
}
