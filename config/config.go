// Package config loads and validates the generation settings.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/TFMV/fakeset/pkg/core"
)

// EnvPrefix is the prefix of environment overrides, e.g. FAKESET_GENERATION_TOTAL_RECORDS.
const EnvPrefix = "FAKESET"

// --- Configuration Structs ---

type SalaryConfig struct {
	Min int64 `mapstructure:"min"`
	Max int64 `mapstructure:"max"`
}

type HeightConfig struct {
	Mean   float64 `mapstructure:"mean"`
	StdDev float64 `mapstructure:"stddev"`
}

// AgeConfig bounds the birth-date window in whole years before the reference date.
type AgeConfig struct {
	MinYears int `mapstructure:"min_years"`
	MaxYears int `mapstructure:"max_years"`
}

// GenerationConfig is built once at startup and read-only afterwards.
type GenerationConfig struct {
	TotalRecords      int     `mapstructure:"total_records"`
	WorkerCount       int     `mapstructure:"worker_count"`
	DuplicateFraction float64 `mapstructure:"duplicate_fraction"`
	ChunkCount        int     `mapstructure:"chunk_count"`
	FieldSchema       string  `mapstructure:"field_schema"`

	// Seed drives the identity fields of every chunk.
	Seed int64 `mapstructure:"seed"`
	// SampleSeed drives missingness and duplicate selection; 0 uses system entropy.
	SampleSeed int64 `mapstructure:"sample_seed"`

	Salary SalaryConfig `mapstructure:"salary"`
	Height HeightConfig `mapstructure:"height"`
	Age    AgeConfig    `mapstructure:"age"`

	// ReferenceDate anchors the birth-date window. Zero means "now" at load time.
	ReferenceDate time.Time `mapstructure:"-"`
}

type OutputConfig struct {
	Path       string `mapstructure:"path"`
	Format     string `mapstructure:"format"`
	Table      string `mapstructure:"table"`
	DSN        string `mapstructure:"dsn"`
	DriverPath string `mapstructure:"driver_path"`
	Entrypoint string `mapstructure:"entrypoint"`
	Report     string `mapstructure:"report"`

	// Compression is the Parquet codec: snappy, zstd, gzip or none.
	Compression string `mapstructure:"compression"`
}

type ServerConfig struct {
	Port    string `mapstructure:"port"`
	Prefork bool   `mapstructure:"prefork"`
}

type Config struct {
	Generation GenerationConfig `mapstructure:"generation"`
	Output     OutputConfig     `mapstructure:"output"`
	Server     ServerConfig     `mapstructure:"server"`
}

// --- Defaults ---

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			TotalRecords:      1000,
			WorkerCount:       runtime.NumCPU(),
			DuplicateFraction: 0.1,
			ChunkCount:        10,
			FieldSchema:       "A",
			Salary:            SalaryConfig{Min: 30_000, Max: 200_000},
			Height:            HeightConfig{Mean: 170, StdDev: 10},
			Age:               AgeConfig{MinYears: 18, MaxYears: 65},
		},
		Output: OutputConfig{
			Path:   "big_data_set.csv",
			Format: "csv",
			Table:  "fake_people",
		},
		Server: ServerConfig{Port: "3000"},
	}
}

// SetDefaults registers the defaults on v so that file, env and flags layer over them.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("generation.total_records", d.Generation.TotalRecords)
	v.SetDefault("generation.worker_count", d.Generation.WorkerCount)
	v.SetDefault("generation.duplicate_fraction", d.Generation.DuplicateFraction)
	v.SetDefault("generation.chunk_count", d.Generation.ChunkCount)
	v.SetDefault("generation.field_schema", d.Generation.FieldSchema)
	v.SetDefault("generation.seed", d.Generation.Seed)
	v.SetDefault("generation.sample_seed", d.Generation.SampleSeed)
	v.SetDefault("generation.salary.min", d.Generation.Salary.Min)
	v.SetDefault("generation.salary.max", d.Generation.Salary.Max)
	v.SetDefault("generation.height.mean", d.Generation.Height.Mean)
	v.SetDefault("generation.height.stddev", d.Generation.Height.StdDev)
	v.SetDefault("generation.age.min_years", d.Generation.Age.MinYears)
	v.SetDefault("generation.age.max_years", d.Generation.Age.MaxYears)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.table", d.Output.Table)
	v.SetDefault("output.dsn", d.Output.DSN)
	v.SetDefault("output.driver_path", d.Output.DriverPath)
	v.SetDefault("output.entrypoint", d.Output.Entrypoint)
	v.SetDefault("output.compression", d.Output.Compression)
	v.SetDefault("output.report", d.Output.Report)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.prefork", d.Server.Prefork)
}

// New returns a viper instance with defaults and FAKESET_ environment overrides.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// --- Load Configuration ---

// LoadConfig reads configPath (if set) into v and decodes the result.
// The reference date of the birth window is fixed here.
func LoadConfig(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Generation.ReferenceDate = time.Now()

	return &cfg, nil
}

// --- Validation Functions ---

// validate is a helper function to reduce repetition.
func validate(condition bool, format string, a ...any) error {
	if !condition {
		return core.Invalidf(format, a...)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Generation.Validate(); err != nil {
		return fmt.Errorf("generation: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return nil
}

// Validate checks counts, fractions and schema parameters.
func (g *GenerationConfig) Validate() error {
	return errors.Join(
		validate(g.TotalRecords > 0, "total_records must be positive, got %d", g.TotalRecords),
		validate(g.WorkerCount > 0, "worker_count must be positive, got %d", g.WorkerCount),
		validate(g.ChunkCount > 0, "chunk_count must be positive, got %d", g.ChunkCount),
		validate(g.DuplicateFraction >= 0 && g.DuplicateFraction < 1,
			"duplicate_fraction must be in [0,1), got %v", g.DuplicateFraction),
		validate(g.Seed >= 0, "seed must not be negative, got %d", g.Seed),
		g.Age.Validate(),
		g.validateSchema(),
	)
}

func (g *GenerationConfig) validateSchema() error {
	switch strings.ToUpper(g.FieldSchema) {
	case "A":
		return validate(g.Salary.Min <= g.Salary.Max,
			"salary.min %d exceeds salary.max %d", g.Salary.Min, g.Salary.Max)
	case "B":
		return validate(g.Height.StdDev >= 0, "height.stddev must not be negative, got %v", g.Height.StdDev)
	default:
		return core.Invalidf("field_schema must be A or B, got %q", g.FieldSchema)
	}
}

// BirthWindow resolves the age bounds against the reference date.
// A year counts as 365 days.
func (g *GenerationConfig) BirthWindow() (start, end time.Time) {
	ref := g.ReferenceDate
	if ref.IsZero() {
		ref = time.Now()
	}
	const day = 24 * time.Hour
	start = ref.Add(-time.Duration(g.Age.MaxYears*365) * day)
	end = ref.Add(-time.Duration(g.Age.MinYears*365) * day)
	return start, end
}

func (a *AgeConfig) Validate() error {
	if err := validate(a.MinYears >= 0, "age.min_years must not be negative"); err != nil {
		return err
	}
	return validate(a.MinYears <= a.MaxYears, "age.min_years %d exceeds age.max_years %d", a.MinYears, a.MaxYears)
}

// Validate checks the destination settings of the chosen format.
func (o *OutputConfig) Validate() error {
	switch o.Format {
	case "csv", "parquet", "arrow", "json":
		return validate(o.Path != "", "output path is required for %s", o.Format)
	case "adbc":
		if err := validate(o.DriverPath != "", "driver_path is required for adbc"); err != nil {
			return err
		}
		return validate(o.Table != "", "table is required for adbc")
	case "postgres":
		if err := validate(o.DSN != "", "dsn is required for postgres"); err != nil {
			return err
		}
		return validate(o.Table != "", "table is required for postgres")
	default:
		return core.Invalidf("unsupported output format %q", o.Format)
	}
}

// WriterConfig converts the output settings for the writer factory.
func (o *OutputConfig) WriterConfig() core.WriterConfig {
	return core.WriterConfig{
		Type:             o.Format,
		Path:             o.Path,
		ConnectionString: o.DSN,
		DriverPath:       o.DriverPath,
		Entrypoint:       o.Entrypoint,
		Table:            o.Table,
		Compression:      o.Compression,
	}
}
