// Package main provides the entry point for the fakeset dataset generator.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TFMV/fakeset/logger"
	"github.com/TFMV/fakeset/version"
)

type rootOptions struct {
	ConfigPath string
	LogFile    string
	Verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logger.Sync()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{LogFile: "fakeset.log"}

	rootCmd := &cobra.Command{
		Use:   "fakeset",
		Short: "fakeset generates synthetic tabular datasets with controlled duplicates",
		Long: `fakeset generates synthetic person-like tables in parallel chunks.
Each chunk holds unique rows plus a configurable fraction of exact duplicates
drawn from its own unique rows, and some fields are randomly left empty.
Datasets are written as CSV, Parquet, Arrow IPC or JSON lines, or loaded into
PostgreSQL or any ADBC database.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetLogPath(opts.LogFile)
			logger.ResetLogger()
			if opts.Verbose {
				logger.SetLevel(zap.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Configuration file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", opts.LogFile, "JSON log file; empty disables file logging")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of fakeset",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.String())
		},
	})

	rootCmd.AddCommand(newGenerateCommand(opts))
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newServeCommand(opts))

	return rootCmd
}
