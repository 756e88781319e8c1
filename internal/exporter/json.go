package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"procurekpi/pkg/contracts/domain"
)

// JSONSink writes the report summaries and run stats as one JSON document
type JSONSink struct {
	path string
}

// NewJSONSink creates a JSON sink writing to path
func NewJSONSink(path string) *JSONSink {
	return &JSONSink{path: path}
}

// Name implements Sink
func (s *JSONSink) Name() string { return "json" }

// Write implements Sink. The file is replaced atomically.
func (s *JSONSink) Write(ctx context.Context, report *domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}

	return os.Rename(tmp.Name(), s.path)
}
