// Package writers serializes generated datasets to files and databases.
package writers

import (
	"context"
	"fmt"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/TFMV/fakeset/pkg/core"
)

// Factory creates a writer based on the given configuration.
type Factory struct {
	writers map[string]Creator
}

// Creator is a function that creates a writer from a configuration.
type Creator func(config core.WriterConfig) (core.DatasetWriter, error)

// NewFactory creates a new writer factory.
func NewFactory() *Factory {
	return &Factory{
		writers: make(map[string]Creator),
	}
}

// Register registers a creator for a writer type.
func (f *Factory) Register(typ string, creator Creator) {
	f.writers[typ] = creator
}

// Create creates a writer based on the given configuration.
func (f *Factory) Create(config core.WriterConfig) (core.DatasetWriter, error) {
	creator, ok := f.writers[config.Type]
	if !ok {
		return nil, core.Invalidf("unsupported writer type: %s", config.Type)
	}
	return creator(config)
}

// Types lists the registered writer types.
func (f *Factory) Types() []string {
	types := make([]string, 0, len(f.writers))
	for t := range f.writers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory is the default writer factory with built-in writer types.
var DefaultFactory = NewFactory()

func init() {
	DefaultFactory.Register("csv", NewCSVWriter)
	DefaultFactory.Register("parquet", NewParquetWriter)
	DefaultFactory.Register("arrow", NewArrowWriter)
	DefaultFactory.Register("json", NewJSONWriter)
	DefaultFactory.Register("adbc", NewADBCWriter)
	DefaultFactory.Register("postgres", NewPostgresWriter)
}

// WriteRecord creates a writer from config, writes record and closes it.
func WriteRecord(ctx context.Context, config core.WriterConfig, record arrow.Record) (err error) {
	w, err := DefaultFactory.Create(config)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s writer: %w", config.Type, closeErr)
		}
	}()

	if err := w.Write(ctx, record); err != nil {
		return fmt.Errorf("writing %s: %w", config.Type, err)
	}
	return nil
}
