package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"procurekpi/pkg/contracts/domain"
)

const chartsSheet = "Charts"

// XLSXSink writes every table to its own sheet of one workbook and adds
// native charts for the savings rankings and the price trend
type XLSXSink struct {
	path string
}

// NewXLSXSink creates a workbook sink writing to path
func NewXLSXSink(path string) *XLSXSink {
	return &XLSXSink{path: path}
}

// Name implements Sink
func (s *XLSXSink) Name() string { return "xlsx" }

// Write implements Sink
func (s *XLSXSink) Write(ctx context.Context, report *domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	datasets := reportDatasets(report, -1)
	sheets := make(map[string]*dataset, len(datasets))

	for i, d := range datasets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), d.Sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(d.Sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", d.Sheet, err)
		}
		if err := writeSheet(f, d, headerStyle); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", d.Sheet, err)
		}
		sheets[d.Sheet] = d
	}

	if err := addCharts(f, sheets); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// writeSheet streams one dataset into sheet d.Sheet
func writeSheet(f *excelize.File, d *dataset, headerStyle int) error {
	sw, err := f.NewStreamWriter(d.Sheet)
	if err != nil {
		return err
	}

	if err := sw.SetColWidth(1, len(d.Columns), 16); err != nil {
		return err
	}

	header := make([]interface{}, len(d.Columns))
	for i, c := range d.Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: c.Name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, row := range d.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, xlsxRow(d, row)); err != nil {
			return err
		}
	}

	return sw.Flush()
}

// xlsxRow keeps numbers numeric so charts can plot them; dates and nulls
// become text
func xlsxRow(d *dataset, row []interface{}) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		switch val := v.(type) {
		case nil:
			out[i] = ""
		case time.Time:
			out[i] = formatCell(d.Columns[i].Kind, val)
		default:
			out[i] = val
		}
	}
	return out
}

// addCharts places the three report charts on their own sheet. Charts over
// empty tables are skipped.
func addCharts(f *excelize.File, sheets map[string]*dataset) error {
	if _, err := f.NewSheet(chartsSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", chartsSheet, err)
	}

	type chartSpec struct {
		anchor string
		chart  *excelize.Chart
	}
	var specs []chartSpec

	if d := sheets[sheetTopSavings]; d != nil && len(d.Rows) > 0 {
		specs = append(specs, chartSpec{"A1", &excelize.Chart{
			Type:   excelize.Col,
			Series: []excelize.ChartSeries{seriesFor(d, savingsColSupplier, savingsColTotal)},
			Title:  []excelize.RichTextRun{{Text: "Top suppliers by total savings"}},
			Legend: excelize.ChartLegend{Position: "none"},
		}})
	}

	if d := sheets[sheetTopSavingsPct]; d != nil && len(d.Rows) > 0 {
		specs = append(specs, chartSpec{"J1", &excelize.Chart{
			Type:   excelize.Col,
			Series: []excelize.ChartSeries{seriesFor(d, savingsColSupplier, savingsColPct)},
			Title:  []excelize.RichTextRun{{Text: "Top suppliers by savings percentage"}},
			Legend: excelize.ChartLegend{Position: "none"},
		}})
	}

	if d := sheets[sheetTrends]; d != nil && len(d.Rows) > 0 {
		specs = append(specs, chartSpec{"A17", &excelize.Chart{
			Type: excelize.Line,
			Series: []excelize.ChartSeries{
				seriesFor(d, 0, 1),
				seriesFor(d, 0, 2),
			},
			Title:  []excelize.RichTextRun{{Text: "Monthly average unit vs negotiated price"}},
			Legend: excelize.ChartLegend{Position: "bottom"},
		}})
	}

	for _, spec := range specs {
		if err := f.AddChart(chartsSheet, spec.anchor, spec.chart); err != nil {
			return fmt.Errorf("failed to add chart: %w", err)
		}
	}
	return nil
}

// seriesFor plots column valueCol against categoryCol over all data rows
func seriesFor(d *dataset, categoryCol, valueCol int) excelize.ChartSeries {
	last := len(d.Rows) + 1
	return excelize.ChartSeries{
		Name:       fmt.Sprintf("'%s'!%s", d.Sheet, absCell(valueCol, 1)),
		Categories: fmt.Sprintf("'%s'!%s:%s", d.Sheet, absCell(categoryCol, 2), absCell(categoryCol, last)),
		Values:     fmt.Sprintf("'%s'!%s:%s", d.Sheet, absCell(valueCol, 2), absCell(valueCol, last)),
	}
}

// absCell returns an absolute reference like $B$2 for a zero-based column
func absCell(col, row int) string {
	name, _ := excelize.ColumnNumberToName(col + 1)
	return fmt.Sprintf("$%s$%d", name, row)
}
