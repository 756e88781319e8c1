package exporter

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"procurekpi/internal/config"
	"procurekpi/pkg/contracts/domain"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)
	return paths
}

func sampleReport() *domain.Report {
	jan := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	orders := []domain.Order{
		{
			POID: "PO-1", Supplier: "Acme", ItemCategory: "Electronics",
			OrderDate:    sql.NullTime{Time: time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC), Valid: true},
			DeliveryDate: sql.NullTime{Time: time.Date(2023, 1, 17, 0, 0, 0, 0, time.UTC), Valid: true},
			Quantity:     1200, UnitPrice: 5, NegotiatedPrice: 4.5,
			DefectiveUnits: sql.NullInt64{Int64: 2, Valid: true}, Compliance: "Compliant",
			DeliveryDays: sql.NullInt64{Int64: 7, Valid: true},
			TotalCost:    6000, NegotiatedCost: 5400, CostSavings: 600,
			DefectRate: sql.NullFloat64{Float64: 2.0 / 1200, Valid: true},
		},
		{
			POID: "PO-2", Supplier: "Beta", ItemCategory: "Furniture",
			Quantity: 0, UnitPrice: 100, NegotiatedPrice: 90,
			DefectiveUnits: sql.NullInt64{Int64: 0, Valid: true}, Compliance: "Unknown",
		},
	}

	return &domain.Report{
		RunID:       "run-1",
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Source:      "orders.csv",
		Table:       &domain.Table{Source: "orders.csv", Rows: orders},
		Medians:     map[string]float64{"Electronics": 7, "Furniture": 6.5},
		Risk: []domain.SupplierRisk{
			{Supplier: "Acme", TotalOrders: 1},
			{Supplier: "Beta", TotalOrders: 1},
		},
		Savings: []domain.SupplierSavings{
			{Supplier: "Acme", TotalOrders: 1, TotalQuantity: 1200, TotalCost: 6000, NegotiatedCost: 5400, TotalSavings: 600, SavingsPct: 10},
			{Supplier: "Beta", TotalOrders: 1},
		},
		TopSavings: []domain.SupplierSavings{
			{Supplier: "Acme", TotalOrders: 1, TotalQuantity: 1200, TotalCost: 6000, NegotiatedCost: 5400, TotalSavings: 600, SavingsPct: 10},
		},
		TopSavingsPct: []domain.SupplierSavings{
			{Supplier: "Acme", TotalOrders: 1, TotalQuantity: 1200, TotalCost: 6000, NegotiatedCost: 5400, TotalSavings: 600, SavingsPct: 10},
		},
		Trends: []domain.MonthlyPriceTrend{
			{Month: jan, AvgUnitPrice: 5, AvgNegotiatedPrice: 4.5, OrderCount: 1},
		},
		Profile: domain.Profile{
			Rows:          2,
			MissingBefore: []domain.MissingCount{{Column: domain.ColumnDeliveryDate, Count: 2}},
			MissingAfter:  []domain.MissingCount{{Column: domain.ColumnDeliveryDate, Count: 1}},
			Columns:       []domain.ColumnStats{{Column: domain.ColumnQuantity, Count: 2, Mean: 600, Max: 1200}},
		},
		Stats: domain.RunStats{RowsLoaded: 2, Imputed: 1, FillStrategy: config.FillStrategyMedian},
	}
}
