package dataprocessing

import (
	"database/sql"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"procurekpi/internal/config"
	"procurekpi/pkg/contracts/domain"
)

var (
	lowerCaser = cases.Lower(language.Und)
	upperCaser = cases.Upper(language.Und)
)

// NormalizeCompliance trims the value and capitalizes it: first letter upper,
// the rest lower. " COMPLIANT " and "compliant" both become "Compliant".
// Empty values become unknown.
func NormalizeCompliance(value, unknown string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return unknown
	}
	value = lowerCaser.String(value)
	_, size := utf8.DecodeRuneInString(value)
	return upperCaser.String(value[:size]) + value[size:]
}

// Clean returns a cleaned copy of table:
//   - with the ffill strategy, empty delivery dates first take the delivery
//     text of the nearest row above that has one
//   - compliance is normalized
//   - order and delivery dates are parsed; unparseable values become unknown
//   - unknown defective units become 0
//
// Dates that are already parsed are left alone, so cleaning a clean table
// returns an equal table.
func Clean(table *domain.Table, opts CleanOptions) (*domain.Table, CleanStats) {
	var stats CleanStats
	out := table.Clone()
	if out == nil {
		return &domain.Table{}, stats
	}

	unknown := NormalizeCompliance(opts.UnknownCompliance, config.DefaultUnknownCompliance)

	if opts.FillStrategy == config.FillStrategyFFill {
		stats.ForwardFilled = forwardFillDeliveries(out.Rows)
	}

	for i := range out.Rows {
		row := &out.Rows[i]

		row.Compliance = NormalizeCompliance(row.Compliance, unknown)

		if !row.OrderDate.Valid && row.RawOrderDate != "" {
			row.OrderDate = ParseDate(row.RawOrderDate)
			if !row.OrderDate.Valid {
				stats.UnparsedOrderDates++
			}
		}
		if !row.DeliveryDate.Valid && row.RawDeliveryDate != "" {
			row.DeliveryDate = ParseDate(row.RawDeliveryDate)
			if !row.DeliveryDate.Valid {
				stats.UnparsedDeliveries++
			}
		}

		if !row.DefectiveUnits.Valid {
			row.DefectiveUnits = sql.NullInt64{Int64: 0, Valid: true}
			stats.DefaultedDefects++
		}
	}

	return out, stats
}

// forwardFillDeliveries copies the last non-empty delivery text down into
// rows with no delivery and returns how many rows were filled. The copied
// text is parsed like any other, so a row below an unparseable value stays
// unknown. Leading empty rows stay empty.
func forwardFillDeliveries(rows []domain.Order) int {
	var (
		last   string
		filled int
	)
	for i := range rows {
		row := &rows[i]
		if row.RawDeliveryDate != "" {
			last = row.RawDeliveryDate
			continue
		}
		if row.DeliveryDate.Valid || last == "" {
			continue
		}
		row.RawDeliveryDate = last
		filled++
	}
	return filled
}
