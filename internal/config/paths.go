package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all output paths for one run.
// This is the single source of truth for file locations.
type Paths struct {
	OutputDir string
	LogsDir   string

	// Well-known report files
	CleanedOrdersCSV string
	SupplierRiskCSV  string
	SupplierSavings  string
	TopSavingsCSV    string
	TopSavingsPctCSV string
	PriceTrendsCSV   string
	ReportJSON       string
	ReportXLSX       string
}

// NewPaths resolves every output path under outputDir. Relative
// directories are resolved against the working directory.
func NewPaths(outputDir string) (*Paths, error) {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}

	abs, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory %s: %w", outputDir, err)
	}

	return &Paths{
		OutputDir:        abs,
		LogsDir:          filepath.Join(abs, "logs"),
		CleanedOrdersCSV: filepath.Join(abs, CleanedOrdersCSV),
		SupplierRiskCSV:  filepath.Join(abs, SupplierRiskCSV),
		SupplierSavings:  filepath.Join(abs, SupplierSavingCSV),
		TopSavingsCSV:    filepath.Join(abs, TopSavingsCSV),
		TopSavingsPctCSV: filepath.Join(abs, TopSavingsPctCSV),
		PriceTrendsCSV:   filepath.Join(abs, PriceTrendsCSV),
		ReportJSON:       filepath.Join(abs, ReportJSON),
		ReportXLSX:       filepath.Join(abs, ReportXLSX),
	}, nil
}

// EnsureDirectories creates the output directory if it doesn't exist
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.OutputDir, err)
	}
	return nil
}

// GetReportPath returns the full path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Resolved output paths",
		slog.String("output_dir", p.OutputDir),
		slog.String("cleaned_orders", p.CleanedOrdersCSV),
		slog.String("report_json", p.ReportJSON),
		slog.String("report_xlsx", p.ReportXLSX))
}
