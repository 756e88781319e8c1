package domain

import (
	"time"
)

// SupplierRisk aggregates defect and delay flags for one supplier
type SupplierRisk struct {
	Supplier        string  `json:"supplier"`
	TotalOrders     int     `json:"total_orders"`
	HighDefectCount int     `json:"high_defect_count"`
	DelayedCount    int     `json:"delayed_count"`
	DefectRatePct   float64 `json:"defect_rate_pct"`
	DelayRatePct    float64 `json:"delay_rate_pct"`
}

// SupplierSavings aggregates negotiated savings for one supplier
type SupplierSavings struct {
	Supplier       string  `json:"supplier"`
	TotalOrders    int     `json:"total_orders"`
	TotalQuantity  int64   `json:"total_quantity"`
	TotalCost      float64 `json:"total_cost"`
	NegotiatedCost float64 `json:"negotiated_cost"`
	TotalSavings   float64 `json:"total_savings"`
	SavingsPct     float64 `json:"savings_pct"`
}

// MonthlyPriceTrend holds average prices for one calendar month
type MonthlyPriceTrend struct {
	Month              time.Time `json:"month"`
	AvgUnitPrice       float64   `json:"avg_unit_price"`
	AvgNegotiatedPrice float64   `json:"avg_negotiated_price"`
	OrderCount         int       `json:"order_count"`
}

// MonthLabel formats the month as YYYY-MM.
func (m MonthlyPriceTrend) MonthLabel() string {
	return m.Month.Format("2006-01")
}

// ColumnStats mirrors a describe() row for one numeric column
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

// MissingCount is the number of empty values in one source column
type MissingCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// Profile describes data quality before and after cleaning
type Profile struct {
	Rows          int            `json:"rows"`
	MissingBefore []MissingCount `json:"missing_before"`
	MissingAfter  []MissingCount `json:"missing_after"`
	Columns       []ColumnStats  `json:"columns"`
}

// RunStats counts what the pipeline changed
type RunStats struct {
	RowsLoaded          int           `json:"rows_loaded"`
	UnparsedOrderDates  int           `json:"unparsed_order_dates"`
	UnparsedDeliveries  int           `json:"unparsed_delivery_dates"`
	ForwardFilled       int           `json:"forward_filled_deliveries"`
	Imputed             int           `json:"imputed_deliveries"`
	DefaultedDefects    int           `json:"defaulted_defective_units"`
	UndefinedDefectRate int           `json:"undefined_defect_rates"`
	FillStrategy        string        `json:"fill_strategy"`
	Duration            time.Duration `json:"duration"`
}

// Report is the complete output of one pipeline run
type Report struct {
	RunID         string              `json:"run_id"`
	GeneratedAt   time.Time           `json:"generated_at"`
	Source        string              `json:"source"`
	Table         *Table              `json:"-"`
	Medians       map[string]float64  `json:"category_median_days"`
	Risk          []SupplierRisk      `json:"supplier_risk"`
	Savings       []SupplierSavings   `json:"supplier_savings"`
	TopSavings    []SupplierSavings   `json:"top_savings"`
	TopSavingsPct []SupplierSavings   `json:"top_savings_pct"`
	Trends        []MonthlyPriceTrend `json:"monthly_price_trends"`
	Profile       Profile             `json:"profile"`
	Stats         RunStats            `json:"stats"`
}
