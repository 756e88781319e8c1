package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurekpi/internal/config"
	"procurekpi/internal/infrastructure"
)

const ordersCSV = "PO_ID,Supplier,Item_Category,Order_Date,Delivery_Date,Quantity,Unit_Price,Negotiated_Price,Defective_Units,Compliance\n" +
	"PO-1,Acme,Electronics,2023-01-01,2023-01-06,10,5.00,4.50,0,COMPLIANT\n" +
	"PO-2,Acme,Electronics,2023-01-01,2023-01-08,20,5.00,4.00,2, compliant\n" +
	"PO-3,Acme,Electronics,2023-01-10,,4,5.00,4.75,,Non-compliant\n" +
	"PO-4,Beta,Furniture,2023-02-01,2023-02-20,2,100.00,90.00,1,\n"

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(ordersCSV), 0644))
	return path
}

// execute runs the root command with args and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)
	t.Setenv(config.EnvPrefix+"_LOGGING_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, config.AppName+" "+config.AppVersion+"\n", out)
}

func TestReport_WritesFiles(t *testing.T) {
	input := writeInput(t)
	outDir := filepath.Join(t.TempDir(), "reports")
	metricsFile := filepath.Join(outDir, "metrics.prom")
	traceFile := filepath.Join(outDir, "trace.jsonl")

	out, err := execute(t, "report",
		"--input", input,
		"--out", outDir,
		"--sinks", "console,csv,json,xlsx",
		"--top", "1",
		"--metrics-file", metricsFile,
		"--trace-file", traceFile,
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Supplier risk")
	assert.Contains(t, out, "Beta")

	for _, name := range []string{
		config.CleanedOrdersCSV,
		config.SupplierRiskCSV,
		config.SupplierSavingCSV,
		config.TopSavingsCSV,
		config.TopSavingsPctCSV,
		config.PriceTrendsCSV,
		config.ReportJSON,
		config.ReportXLSX,
	} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}

	data, err := os.ReadFile(filepath.Join(outDir, config.ReportJSON))
	require.NoError(t, err)
	var decoded struct {
		TopSavings []struct {
			Supplier string `json:"supplier"`
		} `json:"top_savings"`
		Stats struct {
			RowsLoaded   int    `json:"rows_loaded"`
			FillStrategy string `json:"fill_strategy"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 4, decoded.Stats.RowsLoaded)
	assert.Equal(t, config.FillStrategyMedian, decoded.Stats.FillStrategy)
	assert.Len(t, decoded.TopSavings, 1)

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "procurekpi_sink_writes")

	traces, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(traces), "pipeline.run")
}

func TestReport_SQLSink(t *testing.T) {
	input := writeInput(t)
	outDir := t.TempDir()

	_, err := execute(t, "report",
		"--input", input,
		"--out", outDir,
		"--sinks", "sql",
		"--db-driver", "sqlite",
		"--db-dsn", filepath.Join(outDir, "procurekpi.db"),
	)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "procurekpi.db"))
}

func TestReport_FillStrategyFlag(t *testing.T) {
	input := writeInput(t)
	outDir := t.TempDir()

	_, err := execute(t, "report", "--input", input, "--out", outDir, "--sinks", "json", "--fill-strategy", "FFILL")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, config.ReportJSON))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fill_strategy": "ffill"`)
}

func TestReport_Errors(t *testing.T) {
	input := writeInput(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing input",
			args:    []string{"report", "--out", t.TempDir()},
			wantErr: "Input.Path",
		},
		{
			name:    "input does not exist",
			args:    []string{"report", "--input", filepath.Join(t.TempDir(), "nope.csv"), "--out", t.TempDir()},
			wantErr: "not found",
		},
		{
			name:    "bad fill strategy",
			args:    []string{"report", "--input", input, "--fill-strategy", "mean"},
			wantErr: "FillStrategy",
		},
		{
			name:    "unknown sink",
			args:    []string{"report", "--input", input, "--sinks", "parquet"},
			wantErr: "Sinks",
		},
		{
			name:    "sql sink without dsn",
			args:    []string{"report", "--input", input, "--sinks", "sql"},
			wantErr: "DSN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInspect(t *testing.T) {
	input := writeInput(t)

	out, err := execute(t, "inspect", "--input", input, "--head", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "Missing values")
	assert.Contains(t, out, "Summary statistics")
	assert.Contains(t, out, "PO-2")
	assert.NotContains(t, out, "PO-3")
	assert.NotContains(t, out, "Supplier risk")
}

func TestRun_ExitCode(t *testing.T) {
	input := writeInput(t)

	tests := []struct {
		name string
		args []string
		want ExitCode
	}{
		{"version", []string{"version"}, exitCodeSuccess},
		{"report", []string{"report", "--input", input, "--out", t.TempDir(), "--sinks", "json"}, exitCodeSuccess},
		{"missing input file", []string{"report", "--input", filepath.Join(t.TempDir(), "nope.csv")}, exitCodeError},
		{"unknown command", []string{"publish"}, exitCodeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			infrastructure.ResetLoggerForTesting()
			t.Cleanup(infrastructure.ResetLoggerForTesting)
			t.Setenv(config.EnvPrefix+"_LOGGING_LEVEL", "error")

			saved := os.Args
			os.Args = append([]string{config.AppName}, tt.args...)
			t.Cleanup(func() { os.Args = saved })

			assert.Equal(t, tt.want, Run())
		})
	}
}
