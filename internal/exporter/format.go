package exporter

import (
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"procurekpi/internal/config"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatRatio formats a 0..1 ratio with 4 decimal places
func formatRatio(f float64) string {
	return fmt.Sprintf("%.4f", f)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// nullInt returns the value or nil when unknown
func nullInt(n sql.NullInt64) interface{} {
	if !n.Valid {
		return nil
	}
	return n.Int64
}

// nullFloat returns the value or nil when unknown
func nullFloat(n sql.NullFloat64) interface{} {
	if !n.Valid {
		return nil
	}
	return n.Float64
}

// nullDate returns the date or nil when unknown
func nullDate(t sql.NullTime) interface{} {
	if !t.Valid {
		return nil
	}
	return t.Time
}

// formatCell renders one typed cell as plain text
func formatCell(kind valueKind, v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return formatBool(val)
	case int:
		return formatInt(int64(val))
	case int64:
		return formatInt(val)
	case float64:
		if kind == kindRatio {
			return formatRatio(val)
		}
		return formatFloat(val)
	case time.Time:
		if kind == kindMonth {
			return val.Format("2006-01")
		}
		return val.Format(config.DateFormat)
	default:
		return fmt.Sprint(val)
	}
}

// humanPrinter groups thousands for console output
var humanPrinter = message.NewPrinter(language.English)

// formatHuman renders a cell for people: numbers get thousands separators
func formatHuman(kind valueKind, v interface{}) string {
	switch val := v.(type) {
	case int:
		return humanPrinter.Sprintf("%d", val)
	case int64:
		return humanPrinter.Sprintf("%d", val)
	case float64:
		switch kind {
		case kindRatio:
			return humanPrinter.Sprintf("%.4f", val)
		case kindPercent:
			return humanPrinter.Sprintf("%.2f%%", val)
		}
		return humanPrinter.Sprintf("%.2f", val)
	}
	return formatCell(kind, v)
}
