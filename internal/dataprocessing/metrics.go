package dataprocessing

import (
	"database/sql"

	"procurekpi/pkg/contracts/domain"
)

// ApplyMetrics returns a copy of table with the cost, defect and delay
// columns computed for every row. A zero quantity leaves DefectRate
// undefined and the row is not flagged as high-defect. The returned count
// is the number of rows with an undefined defect rate.
func ApplyMetrics(table *domain.Table, opts MetricsOptions) (*domain.Table, int) {
	out := table.Clone()
	if out == nil {
		return &domain.Table{}, 0
	}

	undefined := 0
	for i := range out.Rows {
		row := &out.Rows[i]

		qty := float64(row.Quantity)
		row.TotalCost = qty * row.UnitPrice
		row.NegotiatedCost = qty * row.NegotiatedPrice
		row.CostSavings = row.TotalCost - row.NegotiatedCost

		row.DefectRate = sql.NullFloat64{}
		if row.Quantity != 0 {
			row.DefectRate = sql.NullFloat64{
				Float64: float64(row.DefectiveUnits.Int64) / qty,
				Valid:   true,
			}
		} else {
			undefined++
		}

		row.IsHighDefect = row.DefectRate.Valid && row.DefectRate.Float64 >= opts.DefectThreshold
		row.IsDelayed = row.DeliveryDays.Valid && row.DeliveryDays.Int64 > opts.DelayThresholdDays
	}

	return out, undefined
}
