// Package validation checks a written dataset against the report of the run
// that generated it.
package validation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"go.uber.org/zap"

	"github.com/TFMV/fakeset/metrics"
	"github.com/TFMV/fakeset/pkg/core"
	"github.com/TFMV/fakeset/pkg/readers"
)

// ErrValidationFailed is returned by callers that treat a failed check as an error.
var ErrValidationFailed = errors.New("validation failed")

// Validator compares a dataset with a run report.
type Validator struct {
	Report metrics.RunReport
	// RowCountTolerance is the allowed relative row count difference.
	RowCountTolerance float64

	Logger           *zap.Logger
	MetricsCollector *metrics.PrometheusMetricsCollector
}

// NewValidator constructs a new Validator instance.
func NewValidator(report metrics.RunReport, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{
		Report: report,
		Logger: logger,
	}
}

// Validate runs all checks concurrently over rec.
func (v *Validator) Validate(ctx context.Context, rec arrow.Record) (metrics.ValidationReport, error) {
	startTime := time.Now()
	v.Logger.Info("Starting validation", zap.String("run_id", v.Report.Run.RunID), zap.Int64("rows", rec.NumRows()))

	if err := ctx.Err(); err != nil {
		return metrics.ValidationReport{}, err
	}

	var (
		wg              sync.WaitGroup
		schemaResult    metrics.SchemaResult
		rowCountResult  metrics.RowCountResult
		duplicateResult metrics.DuplicateResult
		missingResults  []metrics.MissingResult
	)

	wg.Add(4)

	go func() {
		defer wg.Done()
		schemaResult = v.validateSchema(rec.Schema())
		v.Logger.Debug("Schema validation completed", zap.Bool("status", schemaResult.Status))
	}()

	go func() {
		defer wg.Done()
		rowCountResult = v.validateRowCount(rec.NumRows())
		v.Logger.Debug("Row count validation completed",
			zap.Int64("expected", rowCountResult.Expected), zap.Int64("actual", rowCountResult.Actual))
	}()

	go func() {
		defer wg.Done()
		duplicateResult = v.validateDuplicates(rec)
		v.Logger.Debug("Duplicate validation completed", zap.Int64("exact_duplicates", duplicateResult.ExactDuplicates))
	}()

	go func() {
		defer wg.Done()
		missingResults = v.validateMissing(rec)
		v.Logger.Debug("Missing value validation completed", zap.Int("columns", len(missingResults)))
	}()

	wg.Wait()

	status := schemaResult.Status && rowCountResult.Status && duplicateResult.Status
	for _, m := range missingResults {
		status = status && m.Status
	}

	endTime := time.Now()
	result := metrics.ValidationReport{
		RunID:      v.Report.Run.RunID,
		Source:     v.Report.Run.OutputPath,
		StartTime:  startTime,
		EndTime:    endTime,
		Duration:   endTime.Sub(startTime),
		Schema:     schemaResult,
		RowCount:   rowCountResult,
		Duplicates: duplicateResult,
		Missing:    missingResults,
		Status:     status,
	}

	if v.MetricsCollector != nil {
		v.MetricsCollector.RecordValidation(status)
	}
	v.Logger.Info("Validation complete", zap.Bool("status", status), zap.Duration("duration", result.Duration))
	return result, nil
}

// ValidateSource reads the dataset described by cfg and validates it.
func (v *Validator) ValidateSource(ctx context.Context, cfg core.ReaderConfig) (metrics.ValidationReport, error) {
	rec, err := readers.ReadFile(ctx, cfg)
	if err != nil {
		return metrics.ValidationReport{}, fmt.Errorf("reading dataset: %w", err)
	}
	defer rec.Release()

	result, err := v.Validate(ctx, rec)
	if err != nil {
		return result, err
	}
	result.Source = cfg.Path
	return result, nil
}

// validateSchema compares column names. Types are not compared since text
// formats read every column back as strings.
func (v *Validator) validateSchema(schema *arrow.Schema) metrics.SchemaResult {
	missingInData := []string{}
	unexpected := []string{}

	expected := make(map[string]bool, len(v.Report.Run.Columns))
	for _, name := range v.Report.Run.Columns {
		expected[name] = true
	}
	actual := make(map[string]bool, schema.NumFields())
	for _, f := range schema.Fields() {
		actual[f.Name] = true
		if !expected[f.Name] {
			unexpected = append(unexpected, f.Name)
		}
	}
	for _, name := range v.Report.Run.Columns {
		if !actual[name] {
			missingInData = append(missingInData, name)
		}
	}

	return metrics.SchemaResult{
		MissingInData:     missingInData,
		UnexpectedColumns: unexpected,
		Status:            len(missingInData) == 0 && len(unexpected) == 0,
	}
}

// validateRowCount compares the planned rows with the rows found.
func (v *Validator) validateRowCount(rows int64) metrics.RowCountResult {
	expected := int64(v.Report.Plan.Rows)
	diff := expected - rows
	allowedDiff := int64(v.RowCountTolerance * float64(expected))

	return metrics.RowCountResult{
		Expected:   expected,
		Actual:     rows,
		Difference: diff,
		Status:     diff >= -allowedDiff && diff <= allowedDiff,
	}
}

func (v *Validator) validateDuplicates(rec arrow.Record) metrics.DuplicateResult {
	exact := metrics.CountExactDuplicates(rec)
	return metrics.DuplicateResult{
		Reported:        v.Report.DuplicateRows,
		ExactDuplicates: exact,
		Status:          exact >= v.Report.DuplicateRows,
	}
}

// validateMissing compares the missing values of every column the report
// summarized and the dataset holds.
func (v *Validator) validateMissing(rec arrow.Record) []metrics.MissingResult {
	index := make(map[string]int, rec.NumCols())
	for i, f := range rec.Schema().Fields() {
		index[f.Name] = i
	}

	results := make([]metrics.MissingResult, 0, len(v.Report.Dataset.Columns))
	for _, col := range v.Report.Dataset.Columns {
		i, ok := index[col.Name]
		if !ok {
			continue
		}
		actual := int64(rec.Column(i).NullN())
		results = append(results, metrics.MissingResult{
			Column:   col.Name,
			Expected: col.Missing,
			Actual:   actual,
			Status:   actual == col.Missing,
		})
	}
	sort.SliceStable(results, func(a, b int) bool { return index[results[a].Column] < index[results[b].Column] })
	return results
}
