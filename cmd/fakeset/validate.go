package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TFMV/fakeset/logger"
	"github.com/TFMV/fakeset/metrics"
	"github.com/TFMV/fakeset/pkg/core"
	"github.com/TFMV/fakeset/report"
	"github.com/TFMV/fakeset/validation"
)

func newValidateCommand() *cobra.Command {
	var (
		reportPath string
		sourceType string
		tolerance  float64
	)

	cmd := &cobra.Command{
		Use:   "validate [flags] SOURCE",
		Short: "Check a written dataset against its JSON run report",
		Long: `The validate command reads SOURCE back and compares it with the run report
written by generate --report: the columns, the row count, the missing values
of every column, and that every generated duplicate is still present.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if reportPath == "" {
				return core.Invalidf("--report is required")
			}
			run, err := report.ReportFromFilePath(reportPath)
			if err != nil {
				return fmt.Errorf("loading report: %w", err)
			}

			v := validation.NewValidator(run, logger.GetLogger())
			v.RowCountTolerance = tolerance
			res, err := v.ValidateSource(cmd.Context(), core.ReaderConfig{Type: sourceType, Path: args[0]})
			if err != nil {
				return err
			}

			printValidation(cmd.OutOrStdout(), res)
			if !res.Status {
				return validation.ErrValidationFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&reportPath, "report", "r", "", "JSON run report written by generate")
	cmd.Flags().StringVar(&sourceType, "type", "auto", "Source type (csv, parquet, arrow, auto)")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "Allowed relative row count difference")

	return cmd
}

func status(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func printValidation(out io.Writer, res metrics.ValidationReport) {
	fmt.Fprintf(out, "Run %s against %s\n", res.RunID, res.Source)
	fmt.Fprintf(out, "  %s columns", status(res.Schema.Status))
	if !res.Schema.Status {
		fmt.Fprintf(out, " (missing %v, unexpected %v)", res.Schema.MissingInData, res.Schema.UnexpectedColumns)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s rows: expected %d, found %d\n", status(res.RowCount.Status), res.RowCount.Expected, res.RowCount.Actual)
	fmt.Fprintf(out, "  %s duplicates: generated %d, found %d exact\n",
		status(res.Duplicates.Status), res.Duplicates.Reported, res.Duplicates.ExactDuplicates)
	for _, m := range res.Missing {
		fmt.Fprintf(out, "  %s missing %s: expected %d, found %d\n", status(m.Status), m.Column, m.Expected, m.Actual)
	}
}
