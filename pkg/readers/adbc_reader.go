package readers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/apache/arrow-adbc/go/adbc/drivermgr"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/TFMV/fakeset/pkg/core"
)

const duckDBEntrypoint = "duckdb_adbc_init"

// ADBCReader reads a whole table through an ADBC driver, typically a dataset
// previously loaded by the ADBC writer.
type ADBCReader struct {
	db     adbc.Database
	conn   adbc.Connection
	stmt   adbc.Statement
	stream array.RecordReader
}

// NewADBCReader opens the driver and starts a SELECT * over config.Table.
func NewADBCReader(config core.ReaderConfig) (core.DatasetReader, error) {
	if config.DriverPath == "" {
		return nil, errors.New("driver path is required for ADBC reader")
	}
	if config.Table == "" {
		return nil, errors.New("table is required for ADBC reader")
	}

	entrypoint := config.Entrypoint
	if entrypoint == "" {
		entrypoint = duckDBEntrypoint
	}
	dbOpts := map[string]string{
		"driver":     config.DriverPath,
		"entrypoint": entrypoint,
	}
	if location := config.ConnectionString; location != "" || config.Path != "" {
		if location == "" {
			location = config.Path
		}
		if entrypoint == duckDBEntrypoint {
			dbOpts["path"] = location
		} else {
			dbOpts[adbc.OptionKeyURI] = location
		}
	}

	var driver drivermgr.Driver
	db, err := driver.NewDatabase(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("error creating ADBC database: %w", err)
	}

	r := &ADBCReader{db: db}
	if err := r.open(context.Background(), config.Table); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *ADBCReader) open(ctx context.Context, table string) error {
	conn, err := r.db.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	r.conn = conn

	stmt, err := conn.NewStatement()
	if err != nil {
		return fmt.Errorf("failed to create statement: %w", err)
	}
	r.stmt = stmt

	if err := stmt.SetSqlQuery("SELECT * FROM " + quoteIdent(table)); err != nil {
		return fmt.Errorf("failed to set SQL query: %w", err)
	}
	stream, _, err := stmt.ExecuteQuery(ctx)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	r.stream = stream
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Read returns the next batch. The record is valid until the next call.
func (r *ADBCReader) Read(ctx context.Context) (arrow.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !r.stream.Next() {
		if err := r.stream.Err(); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read table: %w", err)
		}
		return nil, io.EOF
	}
	return r.stream.Record(), nil
}

func (r *ADBCReader) Schema() *arrow.Schema {
	return r.stream.Schema()
}

// Close releases the result stream, the statement, the connection and the
// database, in that order.
func (r *ADBCReader) Close() error {
	var errs []error
	if r.stream != nil {
		r.stream.Release()
		r.stream = nil
	}
	if r.stmt != nil {
		errs = append(errs, r.stmt.Close())
		r.stmt = nil
	}
	if r.conn != nil {
		errs = append(errs, r.conn.Close())
		r.conn = nil
	}
	if r.db != nil {
		errs = append(errs, r.db.Close())
		r.db = nil
	}
	return errors.Join(errs...)
}
