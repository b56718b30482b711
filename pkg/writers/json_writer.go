package writers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	jsoniter "github.com/json-iterator/go"

	"github.com/TFMV/fakeset/pkg/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONWriter writes one JSON object per row (JSON lines). Keys follow the
// column order and missing values are empty strings.
type JSONWriter struct {
	file   *os.File
	buf    *bufio.Writer
	stream *jsoniter.Stream
}

// NewJSONWriter creates a new JSON lines writer.
func NewJSONWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for JSON writer")
	}

	file, err := os.Create(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create JSON file: %w", err)
	}

	buf := bufio.NewWriter(file)
	return &JSONWriter{
		file:   file,
		buf:    buf,
		stream: jsoniter.NewStream(json, buf, 4096),
	}, nil
}

// NewJSONStreamWriter writes JSON lines to w. Closing the writer flushes it
// but does not close w.
func NewJSONStreamWriter(w io.Writer) *JSONWriter {
	buf := bufio.NewWriter(w)
	return &JSONWriter{buf: buf, stream: jsoniter.NewStream(json, buf, 4096)}
}

// Write writes every row of record as a JSON object on its own line.
func (w *JSONWriter) Write(ctx context.Context, record arrow.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fields := record.Schema().Fields()
	cols := record.Columns()
	s := w.stream

	for i := 0; i < int(record.NumRows()); i++ {
		s.WriteObjectStart()
		for j, col := range cols {
			if j > 0 {
				s.WriteMore()
			}
			s.WriteObjectField(fields[j].Name)
			s.WriteVal(textValue(col, i))
		}
		s.WriteObjectEnd()
		s.WriteRaw("\n")

		if s.Error != nil {
			return fmt.Errorf("failed to encode row %d: %w", i, s.Error)
		}
	}

	if err := s.Flush(); err != nil {
		return fmt.Errorf("failed to flush rows: %w", err)
	}
	return nil
}

// Close flushes buffered rows and closes the file if the writer owns one.
func (w *JSONWriter) Close() error {
	var err error

	if flushErr := w.stream.Flush(); flushErr != nil {
		err = flushErr
	}
	if flushErr := w.buf.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}

	if w.file != nil {
		if closeErr := w.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}

	return err
}
