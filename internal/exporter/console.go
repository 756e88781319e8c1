package exporter

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"procurekpi/pkg/contracts/domain"
)

// ConsoleSink prints the report as aligned tables
type ConsoleSink struct {
	out      io.Writer
	headRows int
}

// NewConsoleSink creates a console sink. headRows limits the cleaned-table
// preview.
func NewConsoleSink(out io.Writer, headRows int) *ConsoleSink {
	return &ConsoleSink{out: out, headRows: headRows}
}

// Name implements Sink
func (s *ConsoleSink) Name() string { return "console" }

// Write implements Sink. Output is buffered and written once so it does not
// interleave with other writers.
func (s *ConsoleSink) Write(ctx context.Context, report *domain.Report) error {
	w := bufio.NewWriter(s.out)

	fmt.Fprintf(w, "Procurement report %s\n", report.RunID)
	fmt.Fprintf(w, "Source:    %s\n", report.Source)
	fmt.Fprintf(w, "Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Rows:      %s (fill strategy %s, %d imputed, %d forward-filled, %d unparsed dates, %d undefined defect rates)\n",
		humanPrinter.Sprintf("%d", report.Stats.RowsLoaded),
		report.Stats.FillStrategy,
		report.Stats.Imputed,
		report.Stats.ForwardFilled,
		report.Stats.UnparsedOrderDates+report.Stats.UnparsedDeliveries,
		report.Stats.UndefinedDefectRate)

	for _, d := range reportDatasets(report, s.headRows) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.Sheet == sheetSavings {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", d.Title)
		renderTable(w, d)
	}

	return w.Flush()
}

// PrintProfile prints the data profile tables of a report: the preview of
// the first rows, missing values and summary statistics
func PrintProfile(out io.Writer, report *domain.Report, headRows int) error {
	w := bufio.NewWriter(out)
	for _, d := range reportDatasets(report, headRows) {
		switch d.Sheet {
		case sheetOrders, sheetMissing, sheetStats:
			fmt.Fprintf(w, "\n%s\n", d.Title)
			renderTable(w, d)
		}
	}
	return w.Flush()
}

func renderTable(w io.Writer, d *dataset) {
	if len(d.Rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader(d.Headers())

	alignment := make([]int, len(d.Columns))
	for i, c := range d.Columns {
		switch c.Kind {
		case kindText, kindDate, kindMonth, kindBool:
			alignment[i] = tablewriter.ALIGN_LEFT
		default:
			alignment[i] = tablewriter.ALIGN_RIGHT
		}
	}
	table.SetColumnAlignment(alignment)

	for _, row := range d.Rows {
		table.Append(d.format(row, formatHuman))
	}
	table.Render()
}
