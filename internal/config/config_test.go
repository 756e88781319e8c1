package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Empty(t, cfg.Input.Delimiter)
	assert.Equal(t, DefaultOutputDir, cfg.Output.Dir)
	assert.Equal(t, []string{"console", "csv"}, cfg.Output.Sinks)
	assert.Equal(t, 10, cfg.Output.TopN)
	assert.Equal(t, FillStrategyMedian, cfg.Pipeline.FillStrategy)
	assert.Equal(t, 0.10, cfg.Pipeline.DefectThreshold)
	assert.Equal(t, 13, cfg.Pipeline.DelayThresholdDays)
	assert.Equal(t, 10, cfg.Pipeline.FallbackLeadDays)
	assert.Equal(t, "Unknown", cfg.Pipeline.UnknownCompliance)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.False(t, cfg.Telemetry.TracingEnabled())
	assert.False(t, cfg.Telemetry.MetricsEnabled())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		yaml        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "yaml overrides defaults",
			yaml: `
output:
  dir: out
  sinks: [json, XLSX]
  top_n: 5
pipeline:
  fill_strategy: FFILL
  delay_threshold_days: 20
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "out", cfg.Output.Dir)
				assert.Equal(t, []string{"json", "xlsx"}, cfg.Output.Sinks)
				assert.Equal(t, 5, cfg.Output.TopN)
				assert.Equal(t, FillStrategyFFill, cfg.Pipeline.FillStrategy)
				assert.Equal(t, 20, cfg.Pipeline.DelayThresholdDays)
				// untouched keys keep their defaults
				assert.Equal(t, 0.10, cfg.Pipeline.DefectThreshold)
				assert.Equal(t, DefaultHeadRows, cfg.Output.HeadRows)
			},
		},
		{
			name: "env overrides yaml",
			yaml: `
output:
  top_n: 5
logging:
  level: warn
`,
			env: map[string]string{
				"PROCUREKPI_OUTPUT_TOP_N":              "3",
				"PROCUREKPI_OUTPUT_SINKS":              "csv,json",
				"PROCUREKPI_INPUT_PATH":                "orders.csv",
				"PROCUREKPI_INPUT_DELIMITER":           `\t`,
				"PROCUREKPI_PIPELINE_DEFECT_THRESHOLD": "0.2",
				"PROCUREKPI_STORAGE_DSN":               "file:test.db",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3, cfg.Output.TopN)
				assert.Equal(t, []string{"csv", "json"}, cfg.Output.Sinks)
				assert.Equal(t, "orders.csv", cfg.Input.Path)
				assert.Equal(t, "\t", cfg.Input.Delimiter)
				assert.Equal(t, 0.2, cfg.Pipeline.DefectThreshold)
				assert.Equal(t, "file:test.db", cfg.Storage.DSN)
				assert.Equal(t, "warn", cfg.Logging.Level)
			},
		},
		{
			name:    "malformed yaml",
			yaml:    "output: [unclosed",
			wantErr: true,
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"PROCUREKPI_OUTPUT_TOP_N": "ten"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.yaml != "" {
				path = filepath.Join(t.TempDir(), "procurekpi.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Input.Path = "orders.csv"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid defaults", mutate: func(c *Config) {}},
		{
			name:    "missing input path",
			mutate:  func(c *Config) { c.Input.Path = "" },
			wantErr: "Config.Input.Path",
		},
		{
			name:    "unknown sink",
			mutate:  func(c *Config) { c.Output.Sinks = []string{"csv", "pdf"} },
			wantErr: "Config.Output.Sinks[1]",
		},
		{
			name:    "no sinks",
			mutate:  func(c *Config) { c.Output.Sinks = nil },
			wantErr: "Config.Output.Sinks",
		},
		{
			name:    "unknown fill strategy",
			mutate:  func(c *Config) { c.Pipeline.FillStrategy = "mean" },
			wantErr: "Config.Pipeline.FillStrategy",
		},
		{
			name:    "defect threshold above one",
			mutate:  func(c *Config) { c.Pipeline.DefectThreshold = 1.5 },
			wantErr: "Config.Pipeline.DefectThreshold",
		},
		{
			name:    "top n zero",
			mutate:  func(c *Config) { c.Output.TopN = 0 },
			wantErr: "Config.Output.TopN",
		},
		{
			name:    "multi-character delimiter",
			mutate:  func(c *Config) { c.Input.Delimiter = ";;" },
			wantErr: "Config.Input.Delimiter",
		},
		{
			name: "file logging without path",
			mutate: func(c *Config) {
				c.Logging.Output = "file"
				c.Logging.FilePath = ""
			},
			wantErr: "Config.Logging.FilePath",
		},
		{
			name:    "sql sink without dsn",
			mutate:  func(c *Config) { c.Output.Sinks = []string{"sql"} },
			wantErr: "Storage.DSN",
		},
		{
			name: "sql sink with dsn",
			mutate: func(c *Config) {
				c.Output.Sinks = []string{"SQL"}
				c.Storage.DSN = "file::memory:"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_HasSink(t *testing.T) {
	cfg := Default()
	cfg.Output.Sinks = []string{"console", "xlsx"}

	assert.True(t, cfg.HasSink("xlsx"))
	assert.True(t, cfg.HasSink("XLSX"))
	assert.False(t, cfg.HasSink("sql"))
}
