package readers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/TFMV/fakeset/pkg/core"
)

// ArrowReader implements a reader for Arrow IPC files.
type ArrowReader struct {
	reader  *ipc.FileReader
	file    *os.File
	next    int
	current arrow.Record
}

// NewArrowReader creates a new Arrow IPC reader.
func NewArrowReader(config core.ReaderConfig) (core.DatasetReader, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for Arrow reader")
	}

	file, err := os.Open(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Arrow file: %w", err)
	}

	reader, err := ipc.NewFileReader(file, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create Arrow file reader: %w", err)
	}

	return &ArrowReader{reader: reader, file: file}, nil
}

// Read returns the next record batch of the file. The record is valid until
// the next call.
func (r *ArrowReader) Read(ctx context.Context) (arrow.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if r.current != nil {
		r.current.Release()
		r.current = nil
	}
	if r.next >= r.reader.NumRecords() {
		return nil, io.EOF
	}

	rec, err := r.reader.RecordAt(r.next)
	if err != nil {
		return nil, fmt.Errorf("failed to read record at index %d: %w", r.next, err)
	}
	r.next++
	r.current = rec
	return rec, nil
}

func (r *ArrowReader) Schema() *arrow.Schema {
	return r.reader.Schema()
}

// Close closes the reader and releases resources.
func (r *ArrowReader) Close() error {
	if r.current != nil {
		r.current.Release()
		r.current = nil
	}

	var err error
	if r.reader != nil {
		err = r.reader.Close()
		r.reader = nil
	}
	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.file = nil
	}
	return err
}
