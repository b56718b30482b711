package main

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/TFMV/fakeset/metrics"
	"github.com/TFMV/fakeset/pkg/core"
	"github.com/TFMV/fakeset/pkg/readers"
)

// InspectOptions represents the options for the inspect command.
type InspectOptions struct {
	Type       string
	BatchSize  int
	DriverPath string
	Entrypoint string
	Table      string
	JSON       bool
}

func newInspectCommand() *cobra.Command {
	options := &InspectOptions{
		Type:      "auto",
		BatchSize: readers.DefaultBatchSize,
	}

	cmd := &cobra.Command{
		Use:   "inspect [flags] SOURCE",
		Short: "Summarize a generated dataset",
		Long: `The inspect command reads a dataset back and reports its row count, the
missing values of every column and the number of exact duplicate rows.

SOURCE is a CSV, Parquet or Arrow file, detected by extension, or the
database location of an ADBC source (--type adbc with --driver and --table).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], options)
		},
	}

	cmd.Flags().StringVar(&options.Type, "type", options.Type, "Source type (csv, parquet, arrow, adbc, auto)")
	cmd.Flags().IntVarP(&options.BatchSize, "batch-size", "b", options.BatchSize, "Rows per batch while reading")
	cmd.Flags().StringVar(&options.DriverPath, "driver", "", "ADBC driver shared library")
	cmd.Flags().StringVar(&options.Entrypoint, "entrypoint", "", "ADBC driver entrypoint")
	cmd.Flags().StringVar(&options.Table, "table", "", "Table to read for adbc sources")
	cmd.Flags().BoolVar(&options.JSON, "json", false, "Print the summary as JSON")

	return cmd
}

func runInspect(cmd *cobra.Command, source string, options *InspectOptions) error {
	cfg := core.ReaderConfig{
		Type:       options.Type,
		Path:       source,
		BatchSize:  options.BatchSize,
		DriverPath: options.DriverPath,
		Entrypoint: options.Entrypoint,
		Table:      options.Table,
	}
	if cfg.Type == "adbc" {
		cfg.ConnectionString = source
	}

	rec, err := readers.ReadFile(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("reading %s: %w", source, err)
	}
	defer rec.Release()

	summary := metrics.SummarizeRecord(rec)
	out := cmd.OutOrStdout()

	if options.JSON {
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Fprintf(out, "Source:           %s\n", source)
	fmt.Fprintf(out, "Rows:             %d\n", summary.Rows)
	fmt.Fprintf(out, "Exact duplicates: %d\n", summary.ExactDuplicates)
	fmt.Fprintln(out, "Columns:")
	for _, c := range summary.Columns {
		fmt.Fprintf(out, "  %-12s %-12s missing %d (%.1f%%)\n", c.Name, c.Type, c.Missing, c.MissingRatio*100)
	}
	return nil
}
