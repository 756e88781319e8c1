package dataprocessing

import (
	"database/sql"
	"math"
	"sort"
	"time"

	"procurekpi/pkg/contracts/domain"
)

// CategoryMedians maps an item category to its median lead time in days
type CategoryMedians map[string]float64

// Lookup returns the median for category or fallback when it has none
func (m CategoryMedians) Lookup(category string, fallback float64) (float64, bool) {
	if v, ok := m[category]; ok {
		return v, true
	}
	return fallback, false
}

// ComputeCategoryMedians computes the median delivery days of every
// category over rows where both dates are known.
func ComputeCategoryMedians(table *domain.Table) CategoryMedians {
	byCategory := make(map[string][]float64)
	for _, row := range table.Rows {
		days := DaysBetween(row.OrderDate, row.DeliveryDate)
		if !days.Valid {
			continue
		}
		byCategory[row.ItemCategory] = append(byCategory[row.ItemCategory], float64(days.Int64))
	}

	medians := make(CategoryMedians, len(byCategory))
	for category, values := range byCategory {
		medians[category] = median(values)
	}
	return medians
}

// median of a non-empty set; even-length sets average the middle pair
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// addDays shifts t by a possibly fractional number of days
func addDays(t time.Time, days float64) time.Time {
	return t.Add(time.Duration(math.Round(days * float64(24*time.Hour))))
}

// Impute returns a copy of table in which every row with a known order date
// and an unknown delivery date gets order date + its category median (or
// fallbackDays without one). DeliveryDays is recomputed for every row.
// Known delivery dates are never changed.
func Impute(table *domain.Table, medians CategoryMedians, fallbackDays int) (*domain.Table, ImputeStats) {
	var stats ImputeStats
	out := table.Clone()
	if out == nil {
		return &domain.Table{}, stats
	}

	for i := range out.Rows {
		row := &out.Rows[i]

		if !row.DeliveryDate.Valid && row.OrderDate.Valid {
			days, found := medians.Lookup(row.ItemCategory, float64(fallbackDays))
			if !found {
				stats.FallbackApplied++
			}
			row.DeliveryDate = sql.NullTime{Time: addDays(row.OrderDate.Time, days), Valid: true}
			stats.Imputed++
		}

		row.DeliveryDays = DaysBetween(row.OrderDate, row.DeliveryDate)
	}

	return out, stats
}
