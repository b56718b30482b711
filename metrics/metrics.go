package metrics

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// -----------------------------
// Domain Types & Metadata
// -----------------------------

// RunMetadata captures high-level context for a generation run.
type RunMetadata struct {
	RunID             string        `json:"run_id"`
	Schema            string        `json:"schema"`
	Columns           []string      `json:"columns"`
	Workers           int           `json:"workers"`
	DuplicateFraction float64       `json:"duplicate_fraction"`
	Seed              int64         `json:"seed"`
	SampleSeed        int64         `json:"sample_seed"`
	OutputPath        string        `json:"output_path,omitempty"`
	OutputFormat      string        `json:"output_format,omitempty"`
	StartTime         time.Time     `json:"start_time"`
	EndTime           time.Time     `json:"end_time"`
	Duration          time.Duration `json:"duration"`
}

// NewRunID returns a fresh identifier for a run.
func NewRunID() string {
	return uuid.NewString()
}

// PlanMetadata describes how the requested records were split into chunks.
type PlanMetadata struct {
	TotalRecords int `json:"total_records"`
	ChunkSize    int `json:"chunk_size"`
	NumChunks    int `json:"num_chunks"`
	Rows         int `json:"rows"`
	// Truncated is the number of requested records the plan does not produce.
	Truncated int `json:"truncated"`
}

// -----------------------------
// Generation Result Types
// -----------------------------

// ChunkResult holds the outcome of generating one chunk.
type ChunkResult struct {
	ChunkID       int           `json:"chunk_id"`
	Size          int           `json:"size"`
	UniqueRows    int           `json:"unique_rows"`
	DuplicateRows int           `json:"duplicate_rows"`
	Duration      time.Duration `json:"duration"`
}

// ColumnSummary counts missing values in one column.
type ColumnSummary struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Missing      int64   `json:"missing"`
	MissingRatio float64 `json:"missing_ratio"`
}

// DatasetSummary describes a materialized dataset.
type DatasetSummary struct {
	Rows    int64           `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
	// ExactDuplicates counts rows equal to an earlier row in every column.
	ExactDuplicates int64 `json:"exact_duplicates"`
}

// RunReport aggregates the results of a generation run.
type RunReport struct {
	Run           RunMetadata    `json:"run"`
	Plan          PlanMetadata   `json:"plan"`
	Chunks        []ChunkResult  `json:"chunks"`
	Dataset       DatasetSummary `json:"dataset"`
	UniqueRows    int64          `json:"unique_rows"`
	DuplicateRows int64          `json:"duplicate_rows"`
}

// -----------------------------
// Validation Result Types
// -----------------------------

// SchemaResult compares the columns of a dataset with those of its run.
type SchemaResult struct {
	MissingInData     []string `json:"missing_in_data"`
	UnexpectedColumns []string `json:"unexpected_columns"`
	Status            bool     `json:"status"`
}

// RowCountResult compares the planned row count with the rows found.
type RowCountResult struct {
	Expected   int64 `json:"expected"`
	Actual     int64 `json:"actual"`
	Difference int64 `json:"difference"`
	Status     bool  `json:"status"`
}

// DuplicateResult checks that every generated duplicate survived. Unique rows
// may collide by chance, so ExactDuplicates may exceed Reported.
type DuplicateResult struct {
	Reported        int64 `json:"reported"`
	ExactDuplicates int64 `json:"exact_duplicates"`
	Status          bool  `json:"status"`
}

// MissingResult compares the missing values of one column.
type MissingResult struct {
	Column   string `json:"column"`
	Expected int64  `json:"expected"`
	Actual   int64  `json:"actual"`
	Status   bool   `json:"status"`
}

// ValidationReport is the outcome of checking a written dataset against the
// report of the run that produced it.
type ValidationReport struct {
	RunID      string          `json:"run_id"`
	Source     string          `json:"source"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    time.Time       `json:"end_time"`
	Duration   time.Duration   `json:"duration"`
	Schema     SchemaResult    `json:"schema"`
	RowCount   RowCountResult  `json:"row_count"`
	Duplicates DuplicateResult `json:"duplicates"`
	Missing    []MissingResult `json:"missing"`
	Status     bool            `json:"status"`
}

// Totals sums unique and duplicate rows over the chunks.
func Totals(chunks []ChunkResult) (unique, duplicate int64) {
	for _, c := range chunks {
		unique += int64(c.UniqueRows)
		duplicate += int64(c.DuplicateRows)
	}
	return unique, duplicate
}

// -----------------------------
// Metrics Storage
// -----------------------------

// MetricsStore abstracts run report storage.
type MetricsStore interface {
	Save(run RunReport) error
	SaveWithContext(ctx context.Context, run RunReport) error
}

// JSONMetricsStore stores results as JSON.
type JSONMetricsStore struct {
	FilePath string
}

func (j *JSONMetricsStore) Save(run RunReport) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	if j.FilePath != "" {
		return os.WriteFile(j.FilePath, data, 0o644)
	}
	fmt.Println(string(data))
	return nil
}

func (j *JSONMetricsStore) SaveWithContext(ctx context.Context, run RunReport) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return j.Save(run)
	}
}
