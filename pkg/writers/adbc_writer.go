package writers

import (
	"context"
	"errors"
	"fmt"

	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/apache/arrow-adbc/go/adbc/drivermgr"
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/TFMV/fakeset/pkg/core"
	"github.com/TFMV/fakeset/utils"
)

// DuckDBEntrypoint is the init symbol of the DuckDB ADBC driver.
const DuckDBEntrypoint = "duckdb_adbc_init"

// ADBCWriter bulk-ingests records into a table through an ADBC driver loaded
// by the driver manager. The table is created on first write if needed.
type ADBCWriter struct {
	db    adbc.Database
	conn  adbc.Connection
	table string
	rows  int64
}

// NewADBCWriter loads config.DriverPath and opens a connection. For DuckDB
// config.ConnectionString is the database file ("" is in-memory); for other
// drivers it is passed as the database URI.
func NewADBCWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	if config.DriverPath == "" {
		return nil, errors.New("driver path is required for ADBC writer")
	}
	if config.Table == "" {
		return nil, errors.New("table is required for ADBC writer")
	}

	entrypoint := config.Entrypoint
	if entrypoint == "" {
		entrypoint = DuckDBEntrypoint
	}

	dbOpts := map[string]string{
		"driver":     config.DriverPath,
		"entrypoint": entrypoint,
	}
	if config.ConnectionString != "" {
		if entrypoint == DuckDBEntrypoint {
			dbOpts["path"] = config.ConnectionString
		} else {
			dbOpts[adbc.OptionKeyURI] = config.ConnectionString
		}
	}

	var driver drivermgr.Driver
	db, err := driver.NewDatabase(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("error creating ADBC database: %w", err)
	}

	conn, err := db.Open(context.Background())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	return &ADBCWriter{db: db, conn: conn, table: config.Table}, nil
}

// Write appends record to the target table.
func (w *ADBCWriter) Write(ctx context.Context, record arrow.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	stmt, err := w.conn.NewStatement()
	if err != nil {
		return fmt.Errorf("failed to create statement: %w", err)
	}
	defer stmt.Close()

	if err := stmt.SetOption(adbc.OptionKeyIngestTargetTable, w.table); err != nil {
		return fmt.Errorf("failed to set target table: %w", err)
	}
	if err := stmt.SetOption(adbc.OptionKeyIngestMode, adbc.OptionValueIngestModeCreateAppend); err != nil {
		return fmt.Errorf("failed to set ingest mode: %w", err)
	}

	rdr := utils.NewSingleRecordReader(record)
	defer rdr.Release()
	if err := stmt.BindStream(ctx, rdr); err != nil {
		return fmt.Errorf("failed to bind records: %w", err)
	}

	n, err := stmt.ExecuteUpdate(ctx)
	if err != nil {
		return fmt.Errorf("failed to ingest into %s: %w", w.table, err)
	}
	if n >= 0 {
		w.rows += n
	}
	return nil
}

// RowsWritten is the number of rows the driver reported as ingested.
func (w *ADBCWriter) RowsWritten() int64 { return w.rows }

// Close closes the connection and the database.
func (w *ADBCWriter) Close() error {
	var err error

	if w.conn != nil {
		if closeErr := w.conn.Close(); closeErr != nil {
			err = closeErr
		}
		w.conn = nil
	}

	if w.db != nil {
		if closeErr := w.db.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		w.db = nil
	}

	return err
}
