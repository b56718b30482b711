// Package generator turns a GenerationConfig into a dataset: it plans the
// chunks, generates them on a bounded worker pool and concatenates the
// results in dispatch order.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/TFMV/fakeset/config"
	"github.com/TFMV/fakeset/metrics"
	"github.com/TFMV/fakeset/pkg/core"
	"github.com/TFMV/fakeset/pkg/schema"
)

// Dataset is a generated table and the facts about how it was built.
type Dataset struct {
	Record arrow.Record
	Schema *schema.Schema
	Plan   Plan
	Chunks []metrics.ChunkResult
	Report metrics.RunReport
}

// NumRows returns the number of rows in the dataset.
func (d *Dataset) NumRows() int64 {
	if d.Record == nil {
		return 0
	}
	return d.Record.NumRows()
}

func (d *Dataset) Release() {
	if d.Record != nil {
		d.Record.Release()
		d.Record = nil
	}
}

// Generator produces datasets for one configuration.
type Generator struct {
	cfg       config.GenerationConfig
	schema    *schema.Schema
	logger    *zap.Logger
	mem       memory.Allocator
	collector *metrics.PrometheusMetricsCollector
	progress  func(metrics.ChunkResult)
}

// Option configures a Generator.
type Option func(*Generator)

func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

func WithAllocator(mem memory.Allocator) Option {
	return func(g *Generator) { g.mem = mem }
}

// WithCollector records chunk and run metrics on c.
func WithCollector(c *metrics.PrometheusMetricsCollector) Option {
	return func(g *Generator) { g.collector = c }
}

// WithProgress calls fn after each chunk completes. fn runs on worker
// goroutines and must be safe for concurrent use.
func WithProgress(fn func(metrics.ChunkResult)) Option {
	return func(g *Generator) { g.progress = fn }
}

// New validates cfg and prepares its schema. The configuration is copied;
// later changes to cfg do not affect the generator.
func New(cfg *config.GenerationConfig, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{
		cfg:    *cfg,
		logger: zap.NewNop(),
		mem:    memory.DefaultAllocator,
	}
	if g.cfg.ReferenceDate.IsZero() {
		g.cfg.ReferenceDate = time.Now()
	}
	for _, opt := range opts {
		opt(g)
	}

	s, err := schema.New(&g.cfg)
	if err != nil {
		return nil, err
	}
	g.schema = s
	return g, nil
}

// Generate is a shorthand for New followed by Generator.Generate.
func Generate(ctx context.Context, cfg *config.GenerationConfig, opts ...Option) (*Dataset, error) {
	g, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx)
}

// Schema returns the schema of the generated datasets.
func (g *Generator) Schema() *schema.Schema { return g.schema }

// Plan computes the chunk plan and rejects plans whose chunks would have no
// unique rows to resample from.
func (g *Generator) Plan() (Plan, error) {
	plan, err := NewPlan(g.cfg.TotalRecords, g.cfg.ChunkCount)
	if err != nil {
		return Plan{}, err
	}
	if UniqueSize(plan.ChunkSize, g.cfg.DuplicateFraction) < 1 {
		return Plan{}, core.Invalidf("chunk size %d with duplicate_fraction %v leaves no unique rows",
			plan.ChunkSize, g.cfg.DuplicateFraction)
	}
	return plan, nil
}

// Generate builds the dataset. On error no dataset is returned and all
// intermediate chunks are released.
func (g *Generator) Generate(ctx context.Context) (*Dataset, error) {
	plan, err := g.Plan()
	if err != nil {
		return nil, err
	}

	if plan.Truncated() > 0 {
		g.logger.Warn("Record count is not a multiple of the chunk size; remainder will not be generated",
			zap.Int("total_records", plan.TotalRecords),
			zap.Int("chunk_size", plan.ChunkSize),
			zap.Int("rows", plan.Rows()),
			zap.Int("truncated", plan.Truncated()))
	}

	g.logger.Info("Generating dataset",
		zap.String("schema", string(g.schema.Kind())),
		zap.Int("rows", plan.Rows()),
		zap.Int("chunks", plan.NumChunks),
		zap.Int("chunk_size", plan.ChunkSize),
		zap.Int("workers", g.cfg.WorkerCount),
		zap.Float64("duplicate_fraction", g.cfg.DuplicateFraction))

	start := time.Now()
	if g.collector != nil {
		g.collector.RecordRunStart()
		defer func() { g.collector.RecordRunEnd(time.Since(start)) }()
	}

	d := &Dispatcher{
		Workers: g.cfg.WorkerCount,
		Logger:  g.logger,
		OnChunk: func(c *Chunk) {
			res := c.Result()
			if g.collector != nil {
				g.collector.RecordChunk(res)
			}
			if g.progress != nil {
				g.progress(res)
			}
		},
		OnFailure: func(Task, error) {
			if g.collector != nil {
				g.collector.RecordChunkFailure()
			}
		},
	}

	cg := NewChunkGenerator(&g.cfg, g.schema, g.mem)
	chunks, err := d.Run(ctx, plan.Tasks(), cg.Generate)
	if err != nil {
		return nil, fmt.Errorf("generating chunks: %w", err)
	}
	defer func() {
		for _, c := range chunks {
			c.Release()
		}
	}()

	rec, err := Aggregate(g.mem, chunks)
	if err != nil {
		return nil, fmt.Errorf("aggregating chunks: %w", err)
	}

	results := make([]metrics.ChunkResult, len(chunks))
	for i, c := range chunks {
		results[i] = c.Result()
	}
	end := time.Now()

	unique, dups := metrics.Totals(results)
	ds := &Dataset{
		Record: rec,
		Schema: g.schema,
		Plan:   plan,
		Chunks: results,
		Report: metrics.RunReport{
			Run: metrics.RunMetadata{
				RunID:             metrics.NewRunID(),
				Schema:            string(g.schema.Kind()),
				Columns:           g.schema.ColumnNames(),
				Workers:           g.cfg.WorkerCount,
				DuplicateFraction: g.cfg.DuplicateFraction,
				Seed:              g.cfg.Seed,
				SampleSeed:        g.cfg.SampleSeed,
				StartTime:         start,
				EndTime:           end,
				Duration:          end.Sub(start),
			},
			Plan:          plan.Metadata(),
			Chunks:        results,
			Dataset:       metrics.SummarizeRecord(rec),
			UniqueRows:    unique,
			DuplicateRows: dups,
		},
	}

	g.logger.Info("Dataset generated",
		zap.Int64("rows", ds.NumRows()),
		zap.Int64("duplicate_rows", dups),
		zap.Duration("duration", end.Sub(start)))
	return ds, nil
}
