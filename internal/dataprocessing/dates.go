package dataprocessing

import (
	"database/sql"
	"strings"
	"time"
)

// dateLayouts are tried in order. Day-first numeric dates are not accepted
// because they are ambiguous with the US form.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"1/2/2006",
	"1/2/2006 15:04",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
}

// ParseDate parses a date value in any supported layout. The result is
// truncated to the calendar day in UTC. Empty or unrecognized input yields
// an invalid NullTime.
func ParseDate(raw string) sql.NullTime {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sql.NullTime{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return sql.NullTime{Time: toDay(t), Valid: true}
		}
	}
	return sql.NullTime{}
}

// toDay drops the time of day
func toDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from start to end, rounded down.
// The result is invalid when either date is unknown.
func DaysBetween(start, end sql.NullTime) sql.NullInt64 {
	if !start.Valid || !end.Valid {
		return sql.NullInt64{}
	}
	d := end.Time.Sub(start.Time)
	days := int64(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return sql.NullInt64{Int64: days, Valid: true}
}
