// Package api serves generated datasets over HTTP.
package api

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/TFMV/fakeset/config"
	"github.com/TFMV/fakeset/metrics"
	"github.com/TFMV/fakeset/pkg/core"
	"github.com/TFMV/fakeset/pkg/generator"
	"github.com/TFMV/fakeset/pkg/writers"
	"github.com/TFMV/fakeset/version"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultMaxRecords caps the size of a dataset requested over HTTP.
const DefaultMaxRecords = 1_000_000

// ServerOptions configures a Server.
type ServerOptions struct {
	Port    string
	Prefork bool

	// Defaults fills every generation setting a request leaves out.
	Defaults config.GenerationConfig
	// MaxRecords rejects larger requests; zero means DefaultMaxRecords.
	MaxRecords int

	Logger *zap.Logger
	// Registry receives the generation metrics and backs /metrics. A nil
	// registry gets a fresh one.
	Registry *prometheus.Registry
}

// Server holds the Fiber app instance
type Server struct {
	app       *fiber.App
	opts      ServerOptions
	logger    *zap.Logger
	collector *metrics.PrometheusMetricsCollector
}

// DatasetRequest is the body of POST /datasets. Omitted fields keep the
// server defaults.
type DatasetRequest struct {
	Records           *int     `json:"records"`
	Workers           *int     `json:"workers"`
	DuplicateFraction *float64 `json:"duplicate_fraction"`
	Chunks            *int     `json:"chunks"`
	Schema            string   `json:"schema"`
	Seed              *int64   `json:"seed"`
	SampleSeed        *int64   `json:"sample_seed"`
	// Format is csv (default) or json.
	Format string `json:"format"`
}

// NewServer initializes a new Fiber instance.
func NewServer(opts ServerOptions) *Server {
	if opts.Port == "" {
		opts.Port = "3000"
	}
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = DefaultMaxRecords
	}
	if opts.Defaults.TotalRecords == 0 {
		opts.Defaults = config.Default().Generation
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	app := fiber.New(fiber.Config{
		IdleTimeout:  10 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
		Prefork:      opts.Prefork,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		app:       app,
		opts:      opts,
		logger:    opts.Logger,
		collector: metrics.NewPrometheusMetricsCollector(opts.Registry),
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "Fakeset API",
			"version": version.Version,
			"build":   version.BuildDate,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	app.Post("/datasets", s.handleDataset)

	return s
}

// GetApp exposes the Fiber app, mainly for app.Test.
func (s *Server) GetApp() *fiber.App {
	return s.app
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Fakeset API is running", zap.String("port", s.opts.Port))
		errCh <- s.app.Listen(":" + s.opts.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Received shutdown signal, stopping server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("Server shutdown successfully")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) generationConfig(req DatasetRequest) (config.GenerationConfig, error) {
	cfg := s.opts.Defaults
	if req.Records != nil {
		cfg.TotalRecords = *req.Records
	}
	if req.Workers != nil {
		cfg.WorkerCount = *req.Workers
	}
	if req.DuplicateFraction != nil {
		cfg.DuplicateFraction = *req.DuplicateFraction
	}
	if req.Chunks != nil {
		cfg.ChunkCount = *req.Chunks
	}
	if req.Schema != "" {
		cfg.FieldSchema = req.Schema
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	if req.SampleSeed != nil {
		cfg.SampleSeed = *req.SampleSeed
	}
	cfg.ReferenceDate = time.Time{}

	if cfg.TotalRecords > s.opts.MaxRecords {
		return cfg, core.Invalidf("records %d exceeds the limit of %d", cfg.TotalRecords, s.opts.MaxRecords)
	}
	return cfg, cfg.Validate()
}

func (s *Server) handleDataset(c *fiber.Ctx) error {
	var req DatasetRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
		}
	}

	var w core.DatasetWriter
	buf := c.Response().BodyWriter()
	switch req.Format {
	case "", "csv":
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		w = writers.NewCSVStreamWriter(buf)
	case "json":
		c.Set(fiber.HeaderContentType, "application/x-ndjson")
		w = writers.NewJSONStreamWriter(buf)
	default:
		return fiber.NewError(fiber.StatusBadRequest, "unsupported format: "+req.Format)
	}

	cfg, err := s.generationConfig(req)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	ds, err := generator.Generate(ctx, &cfg,
		generator.WithLogger(s.logger),
		generator.WithCollector(s.collector))
	if err != nil {
		return err
	}
	defer ds.Release()

	if err := w.Write(ctx, ds.Record); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	c.Set("X-Fakeset-Run-Id", ds.Report.Run.RunID)
	c.Set("X-Fakeset-Rows", strconv.FormatInt(ds.NumRows(), 10))
	c.Set("X-Fakeset-Duplicate-Rows", strconv.FormatInt(ds.Report.DuplicateRows, 10))
	return nil
}

// errorHandler maps invalid configurations to 400 and anything else to 500,
// always with a JSON body.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, core.ErrInvalidConfiguration):
		code = fiber.StatusBadRequest
	}
	c.Response().ResetBody()
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
