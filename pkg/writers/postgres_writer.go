package writers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TFMV/fakeset/pkg/core"
)

// PostgresWriter loads records into a PostgreSQL table with COPY.
// Missing values become SQL NULL.
type PostgresWriter struct {
	pool    *pgxpool.Pool
	table   string
	created bool
}

// NewPostgresWriter connects to config.ConnectionString.
func NewPostgresWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	if config.ConnectionString == "" {
		return nil, errors.New("connection string is required for PostgreSQL writer")
	}
	if config.Table == "" {
		return nil, errors.New("table is required for PostgreSQL writer")
	}

	pool, err := pgxpool.New(context.Background(), config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &PostgresWriter{pool: pool, table: config.Table}, nil
}

// Write creates the table on first use and copies record into it.
func (w *PostgresWriter) Write(ctx context.Context, record arrow.Record) error {
	if !w.created {
		ddl, err := CreateTableSQL(w.table, record.Schema())
		if err != nil {
			return err
		}
		if _, err := w.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create table %s: %w", w.table, err)
		}
		w.created = true
	}

	rows, err := pgRows(record)
	if err != nil {
		return err
	}

	columns := make([]string, record.NumCols())
	for i, f := range record.Schema().Fields() {
		columns[i] = f.Name
	}

	n, err := w.pool.CopyFrom(ctx, pgx.Identifier{w.table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy into %s: %w", w.table, err)
	}
	if n != record.NumRows() {
		return fmt.Errorf("copied %d of %d rows into %s", n, record.NumRows(), w.table)
	}
	return nil
}

func (w *PostgresWriter) Close() error {
	if w.pool != nil {
		w.pool.Close()
		w.pool = nil
	}
	return nil
}

// CreateTableSQL returns the CREATE TABLE IF NOT EXISTS statement for schema.
func CreateTableSQL(table string, schema *arrow.Schema) (string, error) {
	cols := make([]string, schema.NumFields())
	for i, f := range schema.Fields() {
		typ, err := pgType(f.Type)
		if err != nil {
			return "", fmt.Errorf("column %s: %w", f.Name, err)
		}
		notNull := ""
		if !f.Nullable {
			notNull = " NOT NULL"
		}
		cols[i] = pgx.Identifier{f.Name}.Sanitize() + " " + typ + notNull
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pgx.Identifier{table}.Sanitize(), strings.Join(cols, ", ")), nil
}

func pgType(dt arrow.DataType) (string, error) {
	switch dt.ID() {
	case arrow.STRING:
		return "TEXT", nil
	case arrow.INT64:
		return "BIGINT", nil
	case arrow.INT32:
		return "INTEGER", nil
	case arrow.FLOAT64:
		return "DOUBLE PRECISION", nil
	case arrow.BOOL:
		return "BOOLEAN", nil
	case arrow.DATE32:
		return "DATE", nil
	case arrow.TIME32:
		return "TIME", nil
	default:
		return "", fmt.Errorf("unsupported type %s", dt)
	}
}

// pgRows converts record into rows of values pgx can encode.
func pgRows(record arrow.Record) ([][]any, error) {
	rows := make([][]any, record.NumRows())
	for i := range rows {
		rows[i] = make([]any, record.NumCols())
	}

	for j, col := range record.Columns() {
		for i := range rows {
			if col.IsNull(i) {
				continue
			}
			switch c := col.(type) {
			case *array.String:
				rows[i][j] = c.Value(i)
			case *array.Int64:
				rows[i][j] = c.Value(i)
			case *array.Int32:
				rows[i][j] = c.Value(i)
			case *array.Float64:
				rows[i][j] = c.Value(i)
			case *array.Boolean:
				rows[i][j] = c.Value(i)
			case *array.Date32:
				rows[i][j] = c.Value(i).ToTime()
			case *array.Time32:
				unit := c.DataType().(*arrow.Time32Type).Unit
				micros := int64(c.Value(i)) * int64(unit.Multiplier()/1000)
				rows[i][j] = pgtype.Time{Microseconds: micros, Valid: true}
			default:
				return nil, fmt.Errorf("column %s: unsupported type %s", record.ColumnName(j), col.DataType())
			}
		}
	}
	return rows, nil
}
