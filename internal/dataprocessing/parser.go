package dataprocessing

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"

	apperrors "procurekpi/internal/errors"
	"procurekpi/pkg/contracts/domain"
)

// ctxCheckInterval is how many rows are parsed between cancellation checks
const ctxCheckInterval = 1000

// rawRow is one input line with its 1-based line number in the source
type rawRow struct {
	line   int
	fields []string
}

// LoadFile reads a procurement log into a table. Delimited text (.csv, .txt,
// .tsv) and workbooks (.xlsx) are supported. Dates are kept as raw text for
// the cleaner; numeric columns must parse or the load fails.
func LoadFile(ctx context.Context, path string, opts LoadOptions) (*domain.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		header []string
		rows   []rawRow
		err    error
	)

	switch ext {
	case ".csv", ".txt", ".tsv":
		header, rows, err = readDelimited(ctx, path, delimiterFor(ext, opts.Delimiter))
	case ".xlsx":
		header, rows, err = readWorkbook(ctx, path, opts.Sheet)
	default:
		return nil, apperrors.NewParsingError(fmt.Sprintf("unsupported file extension %q", ext), nil).
			WithContext("path", path)
	}
	if err != nil {
		return nil, err
	}

	table, err := buildTable(ctx, path, header, rows)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Loaded procurement log",
		slog.String("path", path),
		slog.Int("rows", table.Len()))

	return table, nil
}

// delimiterFor picks the field separator for a delimited file
func delimiterFor(ext string, configured rune) rune {
	if configured != 0 {
		return configured
	}
	if ext == ".tsv" {
		return '\t'
	}
	return ','
}

// readDelimited reads header and data rows from a delimited text file
func readDelimited(ctx context.Context, path string, delimiter rune) ([]string, []rawRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, apperrors.NewParsingError("failed to open input file", err).WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, apperrors.NewParsingError("input file is empty", nil).WithContext("path", path)
	}
	if err != nil {
		return nil, nil, apperrors.NewParsingError("failed to read header", err).WithContext("path", path)
	}

	var rows []rawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, apperrors.NewParsingError("malformed input", err).WithContext("path", path)
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, rawRow{line: line, fields: record})

		if len(rows)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
	}

	return header, rows, nil
}

// readWorkbook reads header and data rows from the first (or named) sheet.
// Raw cell values are requested so date cells arrive as serial numbers.
func readWorkbook(ctx context.Context, path, sheet string) ([]string, []rawRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil, apperrors.NewNotFoundError(fmt.Sprintf("sheet %q", sheet)).WithContext("path", path)
	}

	all, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, apperrors.NewParsingError("failed to read sheet", err).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}
	if len(all) == 0 {
		return nil, nil, apperrors.NewParsingError("input file is empty", nil).WithContext("path", path)
	}

	header := all[0]
	dateCols := map[int]bool{}
	for i, name := range header {
		switch columnFor(name) {
		case domain.ColumnOrderDate, domain.ColumnDeliveryDate:
			dateCols[i] = true
		}
	}

	rows := make([]rawRow, 0, len(all)-1)
	for i, record := range all[1:] {
		for col := range dateCols {
			if col < len(record) {
				record[col] = serialToDate(record[col])
			}
		}
		rows = append(rows, rawRow{line: i + 2, fields: record})

		if len(rows)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
	}

	return header, rows, nil
}

// serialToDate converts an Excel serial date to ISO text. Anything that is
// not a plain number is returned unchanged for the cleaner to parse.
func serialToDate(value string) string {
	value = strings.TrimSpace(value)
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial <= 0 {
		return value
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return value
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02T15:04:05")
}

// foldHeader reduces a header cell to a comparison key: lower case with
// separators and a leading BOM removed.
func foldHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(name)
}

// columnFor maps a header cell to its canonical column name, or "".
func columnFor(name string) string {
	key := foldHeader(name)
	for _, col := range domain.SourceColumns {
		if foldHeader(col) == key {
			return col
		}
	}
	return ""
}

// buildTable resolves column positions and converts every row
func buildTable(ctx context.Context, source string, header []string, rows []rawRow) (*domain.Table, error) {
	index := make(map[string]int, len(domain.SourceColumns))
	for i, name := range header {
		if col := columnFor(name); col != "" {
			if _, seen := index[col]; !seen {
				index[col] = i
			}
		}
	}
	for _, col := range domain.SourceColumns {
		if _, ok := index[col]; !ok {
			return nil, apperrors.NewParsingError(fmt.Sprintf("missing required column %q", col), nil).
				WithContext("path", source).
				WithContext("column", col)
		}
	}

	table := &domain.Table{Source: source, Rows: make([]domain.Order, 0, len(rows))}
	for i, row := range rows {
		if isBlank(row.fields) {
			continue
		}

		order, err := parseOrder(row, index)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, order)

		if (i+1)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}

	return table, nil
}

// isBlank reports whether every field of a record is empty
func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// parseOrder converts one raw row into an Order
func parseOrder(row rawRow, index map[string]int) (domain.Order, error) {
	field := func(col string) string {
		i := index[col]
		if i >= len(row.fields) {
			return ""
		}
		return strings.TrimSpace(row.fields[i])
	}

	order := domain.Order{
		POID:            field(domain.ColumnPOID),
		Supplier:        field(domain.ColumnSupplier),
		ItemCategory:    field(domain.ColumnItemCategory),
		RawOrderDate:    field(domain.ColumnOrderDate),
		RawDeliveryDate: field(domain.ColumnDeliveryDate),
		Compliance:      field(domain.ColumnCompliance),
	}

	var err error
	if order.Quantity, err = parseInt(field(domain.ColumnQuantity)); err != nil {
		return order, cellError(row.line, domain.ColumnQuantity, field(domain.ColumnQuantity), err)
	}
	if order.UnitPrice, err = parseFloat(field(domain.ColumnUnitPrice)); err != nil {
		return order, cellError(row.line, domain.ColumnUnitPrice, field(domain.ColumnUnitPrice), err)
	}
	if order.NegotiatedPrice, err = parseFloat(field(domain.ColumnNegotiatedPrice)); err != nil {
		return order, cellError(row.line, domain.ColumnNegotiatedPrice, field(domain.ColumnNegotiatedPrice), err)
	}

	if raw := field(domain.ColumnDefectiveUnits); raw != "" {
		n, err := parseInt(raw)
		if err != nil {
			return order, cellError(row.line, domain.ColumnDefectiveUnits, raw, err)
		}
		order.DefectiveUnits = sql.NullInt64{Int64: n, Valid: true}
	}

	return order, nil
}

// parseInt accepts integral values written as "12" or "12.0"
func parseInt(raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("value is empty")
	}
	f, err := cast.ToFloat64E(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("%v is not a whole number", f)
	}
	return int64(f), nil
}

// parseFloat parses a price, tolerating thousands separators
func parseFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("value is empty")
	}
	return cast.ToFloat64E(strings.ReplaceAll(raw, ",", ""))
}

// cellError builds a parsing error that points at one input cell
func cellError(line int, column, value string, cause error) error {
	return apperrors.NewParsingError(fmt.Sprintf("invalid %s at row %d", column, line), cause).
		WithContext("row", line).
		WithContext("column", column).
		WithContext("value", value)
}
