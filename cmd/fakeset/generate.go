package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/TFMV/fakeset/config"
	"github.com/TFMV/fakeset/logger"
	"github.com/TFMV/fakeset/metrics"
	"github.com/TFMV/fakeset/pkg/core"
	"github.com/TFMV/fakeset/pkg/generator"
	"github.com/TFMV/fakeset/pkg/writers"
	"github.com/TFMV/fakeset/report"
)

// StdoutPath as the output path streams text formats to standard output.
const StdoutPath = "-"

// flagKeys maps generate flags to configuration keys.
var flagKeys = map[string]string{
	"records":     "generation.total_records",
	"workers":     "generation.worker_count",
	"duplicates":  "generation.duplicate_fraction",
	"chunks":      "generation.chunk_count",
	"schema":      "generation.field_schema",
	"seed":        "generation.seed",
	"sample-seed": "generation.sample_seed",
	"output":      "output.path",
	"format":      "output.format",
	"table":       "output.table",
	"dsn":         "output.dsn",
	"driver":      "output.driver_path",
	"entrypoint":  "output.entrypoint",
	"compression": "output.compression",
	"report":      "output.report",
}

func newGenerateCommand(root *rootOptions) *cobra.Command {
	v := config.New()
	var quiet bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a dataset and write it to a file or database",
		Long: `The generate command builds a dataset of --records rows split into --chunks
chunks, generated concurrently by --workers workers. Within each chunk a
--duplicates fraction of rows are copies of the chunk's own unique rows.

If --records is not a multiple of the chunk size the remainder is dropped
and a warning is logged.

Settings are layered: flags override FAKESET_* environment variables, which
override the --config file, which overrides the built-in defaults.`,
		Example: `  fakeset generate --records 100000 --workers 8 --duplicates 0.1 -o people.csv
  fakeset generate --schema B -f parquet -o people.parquet --report run.html
  fakeset generate -f postgres --dsn postgres://localhost/fake --table people`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(v, root.ConfigPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runGenerate(cmd, cfg, quiet)
		},
	}

	d := config.Default()
	f := cmd.Flags()
	f.Int("records", d.Generation.TotalRecords, "Number of records to generate")
	f.Int("workers", d.Generation.WorkerCount, "Number of concurrent workers")
	f.Float64("duplicates", d.Generation.DuplicateFraction, "Fraction of each chunk made of duplicate rows, in [0,1)")
	f.Int("chunks", d.Generation.ChunkCount, "Number of chunks the records are split into")
	f.String("schema", d.Generation.FieldSchema, "Field schema: A (Name, Salary, BirthDate, Time) or B (Name, Height, BirthDate)")
	f.Int64("seed", d.Generation.Seed, "Seed of the generated values")
	f.Int64("sample-seed", d.Generation.SampleSeed, "Seed of missingness and duplicate selection; 0 uses system entropy")
	f.StringP("output", "o", d.Output.Path, `Output file, or "-" for standard output`)
	f.StringP("format", "f", d.Output.Format, "Output format ("+formatList()+")")
	f.String("table", d.Output.Table, "Target table for database formats")
	f.String("dsn", d.Output.DSN, "PostgreSQL connection string, or the ADBC database location")
	f.String("driver", d.Output.DriverPath, "ADBC driver shared library")
	f.String("entrypoint", d.Output.Entrypoint, "ADBC driver entrypoint (defaults to DuckDB's)")
	f.String("compression", d.Output.Compression, "Parquet compression: snappy, zstd, gzip or none")
	f.String("report", d.Output.Report, "Write a run report (.json or .html)")
	f.BoolVarP(&quiet, "quiet", "q", false, "Disable the progress bar and spinner")

	bindFlags(v, f)
	return cmd
}

func bindFlags(v *viper.Viper, f *pflag.FlagSet) {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, f.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

func formatList() string {
	return strings.Join(writers.Types(), ", ")
}

func runGenerate(cmd *cobra.Command, cfg *config.Config, quiet bool) error {
	ctx := cmd.Context()
	log := logger.GetLogger()
	stderr := cmd.ErrOrStderr()

	var bar *progressbar.ProgressBar
	reg := prometheus.NewRegistry()
	gen, err := generator.New(&cfg.Generation,
		generator.WithLogger(log),
		generator.WithCollector(metrics.NewPrometheusMetricsCollector(reg)),
		generator.WithProgress(func(metrics.ChunkResult) {
			if bar != nil {
				_ = bar.Add(1)
			}
		}),
	)
	if err != nil {
		return err
	}

	plan, err := gen.Plan()
	if err != nil {
		return err
	}
	if !quiet {
		bar = progressbar.NewOptions(plan.NumChunks,
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription("Generating chunks"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	ds, err := gen.Generate(ctx)
	if err != nil {
		return err
	}
	defer ds.Release()
	if bar != nil {
		_ = bar.Finish()
	}

	var spin *spinner.Spinner
	if !quiet {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(stderr))
		spin.Suffix = fmt.Sprintf(" Writing %d rows as %s", ds.NumRows(), cfg.Output.Format)
		spin.Start()
	}
	start := time.Now()
	err = writeDataset(cmd, cfg.Output, ds)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	log.Info("Dataset written",
		zap.String("format", cfg.Output.Format),
		zap.String("path", cfg.Output.Path),
		zap.String("table", cfg.Output.Table),
		zap.Duration("duration", time.Since(start)))

	rep := ds.Report
	rep.Run.OutputPath = cfg.Output.Path
	rep.Run.OutputFormat = cfg.Output.Format
	if cfg.Output.Report != "" {
		if err := report.SaveReport(rep, cfg.Output.Report); err != nil {
			return fmt.Errorf("saving report: %w", err)
		}
	}

	fmt.Fprintf(stderr, "Generated %d rows (%d duplicates) in %d chunks, run %s\n",
		ds.NumRows(), rep.DuplicateRows, plan.NumChunks, rep.Run.RunID)
	return nil
}

func writeDataset(cmd *cobra.Command, out config.OutputConfig, ds *generator.Dataset) error {
	if out.Path != StdoutPath {
		return writers.WriteRecord(cmd.Context(), out.WriterConfig(), ds.Record)
	}

	var w core.DatasetWriter
	switch out.Format {
	case "csv":
		w = writers.NewCSVStreamWriter(cmd.OutOrStdout())
	case "json":
		w = writers.NewJSONStreamWriter(cmd.OutOrStdout())
	default:
		return core.Invalidf("format %s cannot be written to standard output", out.Format)
	}

	if err := w.Write(cmd.Context(), ds.Record); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
