package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TFMV/fakeset/api"
	"github.com/TFMV/fakeset/config"
	"github.com/TFMV/fakeset/logger"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	v := config.New()
	var maxRecords int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve datasets over HTTP",
		Long: `The serve command starts an HTTP server. POST /datasets with a JSON body
such as {"records": 1000, "workers": 4, "duplicate_fraction": 0.1} returns the
generated dataset as CSV; settings left out of the body come from the
configuration. GET /metrics exposes Prometheus metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(v, root.ConfigPath)
			if err != nil {
				return err
			}
			if err := cfg.Generation.Validate(); err != nil {
				return err
			}

			s := api.NewServer(api.ServerOptions{
				Port:       cfg.Server.Port,
				Prefork:    cfg.Server.Prefork,
				Defaults:   cfg.Generation,
				MaxRecords: maxRecords,
				Logger:     logger.GetLogger(),
				Registry:   prometheus.NewRegistry(),
			})
			return s.Start(cmd.Context())
		},
	}

	d := config.Default()
	cmd.Flags().StringP("port", "p", d.Server.Port, "Port to listen on")
	cmd.Flags().Bool("prefork", d.Server.Prefork, "Use multiple processes")
	cmd.Flags().IntVar(&maxRecords, "max-records", api.DefaultMaxRecords, "Largest dataset a request may ask for")
	bindServerFlags(v, cmd)

	return cmd
}

func bindServerFlags(v *viper.Viper, cmd *cobra.Command) {
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("server.prefork", cmd.Flags().Lookup("prefork"))
}
