package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"procurekpi/internal/config"
	"procurekpi/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Debug("Writing CSV file",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string, bom bool) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	slog.Debug("Creating CSV stream writer",
		slog.String("full_path", fullPath),
		slog.Int("header_count", len(headers)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	if bom {
		if _, err := file.Write(utf8BOM); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)

	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{
		file:   file,
		writer: writer,
	}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// resolvePath places relative paths in the output directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.GetReportPath(filePath)
}

// CSVSink writes the cleaned table and every summary as separate CSV files
type CSVSink struct {
	writer    *CSVWriter
	bomPrefix bool
}

// NewCSVSink creates a CSV sink writing under paths.OutputDir
func NewCSVSink(paths *config.Paths, bomPrefix bool) *CSVSink {
	return &CSVSink{writer: NewCSVWriter(paths), bomPrefix: bomPrefix}
}

// Name implements Sink
func (s *CSVSink) Name() string { return "csv" }

// Write implements Sink. The cleaned table is streamed row by row.
func (s *CSVSink) Write(ctx context.Context, report *domain.Report) error {
	if err := s.writeOrders(ctx, report.Table); err != nil {
		return fmt.Errorf("write %s: %w", config.CleanedOrdersCSV, err)
	}

	for _, d := range reportDatasets(report, 0) {
		if d.File == "" || d.File == config.CleanedOrdersCSV {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.writer.WriteCSV(d.File, WriteOptions{
			Headers:   d.Headers(),
			Records:   d.Records(),
			BOMPrefix: s.bomPrefix,
		}); err != nil {
			return fmt.Errorf("write %s: %w", d.File, err)
		}
	}
	return nil
}

func (s *CSVSink) writeOrders(ctx context.Context, table *domain.Table) error {
	orders := ordersDataset("", nil)

	stream, err := s.writer.CreateStreamWriter(config.CleanedOrdersCSV, orders.Headers(), s.bomPrefix)
	if err != nil {
		return err
	}

	if table != nil {
		for i, o := range table.Rows {
			if i%1000 == 0 {
				if err := ctx.Err(); err != nil {
					stream.Close()
					return err
				}
			}
			if err := stream.WriteRecord(orders.format(orderRow(o), formatCell)); err != nil {
				stream.Close()
				return err
			}
		}
	}
	return stream.Close()
}
