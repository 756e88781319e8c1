package dataprocessing

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"procurekpi/pkg/contracts/domain"
)

var defaultMetrics = MetricsOptions{DefectThreshold: 0.10, DelayThresholdDays: 13}

func TestApplyMetrics(t *testing.T) {
	tests := []struct {
		name           string
		order          domain.Order
		wantTotal      float64
		wantNegotiated float64
		wantSavings    float64
		wantRate       sql.NullFloat64
		wantHighDefect bool
		wantDelayed    bool
	}{
		{
			name:           "costs",
			order:          domain.Order{Quantity: 10, UnitPrice: 5.00, NegotiatedPrice: 4.50, DefectiveUnits: units(0)},
			wantTotal:      50,
			wantNegotiated: 45,
			wantSavings:    5,
			wantRate:       sql.NullFloat64{Float64: 0, Valid: true},
		},
		{
			name:           "defect threshold is inclusive",
			order:          domain.Order{Quantity: 20, DefectiveUnits: units(2)},
			wantRate:       sql.NullFloat64{Float64: 0.1, Valid: true},
			wantHighDefect: true,
		},
		{
			name:     "just below threshold",
			order:    domain.Order{Quantity: 100, DefectiveUnits: units(9)},
			wantRate: sql.NullFloat64{Float64: 0.09, Valid: true},
		},
		{
			name:  "zero quantity leaves rate undefined",
			order: domain.Order{Quantity: 0, DefectiveUnits: units(3)},
		},
		{
			name:           "negative savings",
			order:          domain.Order{Quantity: 2, UnitPrice: 1, NegotiatedPrice: 1.5, DefectiveUnits: units(0)},
			wantTotal:      2,
			wantNegotiated: 3,
			wantSavings:    -1,
			wantRate:       sql.NullFloat64{Float64: 0, Valid: true},
		},
		{
			name:     "delay threshold is exclusive",
			order:    domain.Order{Quantity: 1, DefectiveUnits: units(0), DeliveryDays: days(13)},
			wantRate: sql.NullFloat64{Float64: 0, Valid: true},
		},
		{
			name:        "delayed",
			order:       domain.Order{Quantity: 1, DefectiveUnits: units(0), DeliveryDays: days(14)},
			wantRate:    sql.NullFloat64{Float64: 0, Valid: true},
			wantDelayed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ApplyMetrics(table(tt.order), defaultMetrics)
			row := got.Rows[0]

			assert.InDelta(t, tt.wantTotal, row.TotalCost, 1e-9)
			assert.InDelta(t, tt.wantNegotiated, row.NegotiatedCost, 1e-9)
			assert.InDelta(t, tt.wantSavings, row.CostSavings, 1e-9)
			assert.Equal(t, tt.wantRate.Valid, row.DefectRate.Valid)
			assert.InDelta(t, tt.wantRate.Float64, row.DefectRate.Float64, 1e-9)
			assert.Equal(t, tt.wantHighDefect, row.IsHighDefect)
			assert.Equal(t, tt.wantDelayed, row.IsDelayed)
			assert.Equal(t, row.TotalCost-row.NegotiatedCost, row.CostSavings)
		})
	}
}

func TestApplyMetrics_UndefinedCount(t *testing.T) {
	input := table(
		domain.Order{Quantity: 0},
		domain.Order{Quantity: 5, DefectiveUnits: units(1)},
		domain.Order{Quantity: 0},
	)

	got, undefined := ApplyMetrics(input, defaultMetrics)
	assert.Equal(t, 2, undefined)
	assert.False(t, got.Rows[0].IsHighDefect)
	assert.True(t, got.Rows[1].IsHighDefect)
	assert.Zero(t, input.Rows[1].TotalCost, "input untouched")
}

func TestApplyMetrics_CustomThresholds(t *testing.T) {
	input := table(domain.Order{Quantity: 100, DefectiveUnits: units(5), DeliveryDays: days(8)})

	got, _ := ApplyMetrics(input, MetricsOptions{DefectThreshold: 0.05, DelayThresholdDays: 7})
	assert.True(t, got.Rows[0].IsHighDefect)
	assert.True(t, got.Rows[0].IsDelayed)
}
