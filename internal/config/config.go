package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces all environment variables, e.g. PROCUREKPI_OUTPUT_DIR
const EnvPrefix = "PROCUREKPI"

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Logging   LoggingConfig   `yaml:"logging"`
	Storage   StorageConfig   `yaml:"storage"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// InputConfig describes the procurement log to read
type InputConfig struct {
	Path      string `yaml:"path" validate:"required"`
	Delimiter string `yaml:"delimiter" validate:"omitempty,len=1"`
	Sheet     string `yaml:"sheet"`
}

// OutputConfig controls where and how reports are written
type OutputConfig struct {
	Dir       string   `yaml:"dir" validate:"required"`
	Sinks     []string `yaml:"sinks" validate:"min=1,dive,oneof=console csv json xlsx sql"`
	TopN      int      `yaml:"top_n" split_words:"true" validate:"gte=1,lte=1000"`
	HeadRows  int      `yaml:"head_rows" split_words:"true" validate:"gte=0"`
	BOMPrefix bool     `yaml:"bom_prefix" split_words:"true"`
}

// PipelineConfig holds the thresholds and imputation policy
type PipelineConfig struct {
	FillStrategy       string  `yaml:"fill_strategy" split_words:"true" validate:"oneof=median ffill"`
	DefectThreshold    float64 `yaml:"defect_threshold" split_words:"true" validate:"gte=0,lte=1"`
	DelayThresholdDays int     `yaml:"delay_threshold_days" split_words:"true" validate:"gte=0"`
	FallbackLeadDays   int     `yaml:"fallback_lead_days" split_words:"true" validate:"gte=0"`
	UnknownCompliance  string  `yaml:"unknown_compliance" split_words:"true" validate:"required"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" validate:"oneof=json text"`
	Output   string `yaml:"output" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" validate:"required_unless=Output console"`
}

// StorageConfig configures the SQL sink
type StorageConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `yaml:"dsn"`
}

// TelemetryConfig configures tracing and metrics output files
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name" split_words:"true" validate:"required"`
	Environment string `yaml:"environment"`
	TraceFile   string `yaml:"trace_file" split_words:"true"`
	MetricsFile string `yaml:"metrics_file" split_words:"true"`
}

// TracingEnabled reports whether spans should be exported
func (t TelemetryConfig) TracingEnabled() bool { return t.TraceFile != "" }

// MetricsEnabled reports whether metrics should be flushed to a textfile
func (t TelemetryConfig) MetricsEnabled() bool { return t.MetricsFile != "" }

// HasSink reports whether the named sink is configured
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Output.Sinks {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in increasing order of precedence. An empty filePath
// searches the usual locations. A .env file in the working directory is
// loaded into the environment first if present.
func Load(filePath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if filePath == "" {
		filePath = getConfigFilePath()
	}
	if filePath != "" {
		if err := loadFromFile(filePath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", filePath, err)
		}
	}

	// Fields without a matching variable are left untouched, so the
	// environment only overrides what it sets.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// loadFromFile overlays YAML configuration onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// normalize lower-cases enum-like values before validation
func (c *Config) normalize() {
	for i, s := range c.Output.Sinks {
		c.Output.Sinks[i] = strings.ToLower(strings.TrimSpace(s))
	}
	c.Pipeline.FillStrategy = strings.ToLower(c.Pipeline.FillStrategy)
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	if c.Input.Delimiter == `\t` {
		c.Input.Delimiter = "\t"
	}
}

// Validate checks the configuration. It runs after CLI flags are applied.
func (c *Config) Validate() error {
	c.normalize()

	v := validator.New()
	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid %s: failed %q constraint (value %v)",
				first.Namespace(), first.Tag(), first.Value())
		}
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.HasSink("sql") && c.Storage.DSN == "" {
		return fmt.Errorf("invalid Config.Storage.DSN: required when the sql sink is enabled")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"procurekpi.yaml",
		"configs/procurekpi.yaml",
		"../configs/procurekpi.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:       DefaultOutputDir,
			Sinks:     []string{"console", "csv"},
			TopN:      DefaultTopN,
			HeadRows:  DefaultHeadRows,
			BOMPrefix: false,
		},
		Pipeline: PipelineConfig{
			FillStrategy:       FillStrategyMedian,
			DefectThreshold:    DefaultDefectThreshold,
			DelayThresholdDays: DefaultDelayThresholdDays,
			FallbackLeadDays:   DefaultFallbackLeadDays,
			UnknownCompliance:  DefaultUnknownCompliance,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: "logs/procurekpi.log",
		},
		Storage: StorageConfig{
			Driver: "sqlite",
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
			Environment: "development",
		},
	}
}
