package dataprocessing

import (
	"math"
	"sort"

	"procurekpi/pkg/contracts/domain"
)

// MissingCounts counts unknown values per source column. A date counts as
// missing when it has neither a parsed value nor parseable raw text, so the
// same rule applies before and after cleaning.
func MissingCounts(table *domain.Table) []domain.MissingCount {
	counts := make(map[string]int, len(domain.SourceColumns))
	for _, row := range table.Rows {
		if row.POID == "" {
			counts[domain.ColumnPOID]++
		}
		if row.Supplier == "" {
			counts[domain.ColumnSupplier]++
		}
		if row.ItemCategory == "" {
			counts[domain.ColumnItemCategory]++
		}
		if !row.OrderDate.Valid && !ParseDate(row.RawOrderDate).Valid {
			counts[domain.ColumnOrderDate]++
		}
		if !row.DeliveryDate.Valid && !ParseDate(row.RawDeliveryDate).Valid {
			counts[domain.ColumnDeliveryDate]++
		}
		if !row.DefectiveUnits.Valid {
			counts[domain.ColumnDefectiveUnits]++
		}
		if row.Compliance == "" {
			counts[domain.ColumnCompliance]++
		}
	}

	result := make([]domain.MissingCount, 0, len(domain.SourceColumns))
	for _, col := range domain.SourceColumns {
		result = append(result, domain.MissingCount{Column: col, Count: counts[col]})
	}
	return result
}

// numericColumn extracts one numeric column, skipping unknown values
type numericColumn struct {
	name  string
	value func(domain.Order) (float64, bool)
}

var describedColumns = []numericColumn{
	{domain.ColumnQuantity, func(o domain.Order) (float64, bool) { return float64(o.Quantity), true }},
	{domain.ColumnUnitPrice, func(o domain.Order) (float64, bool) { return o.UnitPrice, true }},
	{domain.ColumnNegotiatedPrice, func(o domain.Order) (float64, bool) { return o.NegotiatedPrice, true }},
	{domain.ColumnDefectiveUnits, func(o domain.Order) (float64, bool) {
		return float64(o.DefectiveUnits.Int64), o.DefectiveUnits.Valid
	}},
	{"Delivery_Days", func(o domain.Order) (float64, bool) {
		return float64(o.DeliveryDays.Int64), o.DeliveryDays.Valid
	}},
	{"Total_Cost", func(o domain.Order) (float64, bool) { return o.TotalCost, true }},
	{"Negotiated_Cost", func(o domain.Order) (float64, bool) { return o.NegotiatedCost, true }},
	{"Cost_Savings", func(o domain.Order) (float64, bool) { return o.CostSavings, true }},
	{"Defect_Rate", func(o domain.Order) (float64, bool) {
		return o.DefectRate.Float64, o.DefectRate.Valid
	}},
}

// Describe computes count, mean, sample standard deviation, min, quartiles
// and max for every numeric column. Quartiles use linear interpolation.
// The deviation of a single value is reported as 0.
// Columns without any known value are omitted.
func Describe(table *domain.Table) []domain.ColumnStats {
	result := make([]domain.ColumnStats, 0, len(describedColumns))
	for _, col := range describedColumns {
		values := make([]float64, 0, table.Len())
		for _, row := range table.Rows {
			if v, ok := col.value(row); ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		result = append(result, describe(col.name, values))
	}
	return result
}

func describe(name string, values []float64) domain.ColumnStats {
	sort.Float64s(values)
	n := len(values)

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var std float64
	if n > 1 {
		var sq float64
		for _, v := range values {
			sq += (v - mean) * (v - mean)
		}
		std = math.Sqrt(sq / float64(n-1))
	}

	return domain.ColumnStats{
		Column: name,
		Count:  n,
		Mean:   mean,
		Std:    std,
		Min:    values[0],
		P25:    quantile(values, 0.25),
		P50:    quantile(values, 0.50),
		P75:    quantile(values, 0.75),
		Max:    values[n-1],
	}
}

// quantile of sorted values with linear interpolation between ranks
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
