package storage

import (
	"time"
)

// ReportRun is one pipeline run
type ReportRun struct {
	ID                  string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Source              string    `gorm:"type:text;not null" json:"source"`
	GeneratedAt         time.Time `gorm:"not null;index" json:"generated_at"`
	FillStrategy        string    `gorm:"type:varchar(20)" json:"fill_strategy"`
	RowsLoaded          int       `json:"rows_loaded"`
	UnparsedDates       int       `json:"unparsed_dates"`
	ForwardFilled       int       `json:"forward_filled"`
	Imputed             int       `json:"imputed"`
	UndefinedDefectRate int       `json:"undefined_defect_rate"`
	DurationMillis      int64     `json:"duration_ms"`
	CreatedAt           time.Time `json:"created_at"`
}

// TableName specifies the table name
func (ReportRun) TableName() string {
	return "report_runs"
}

// SupplierRiskRow is one supplier's risk summary within a run
type SupplierRiskRow struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	RunID           string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_risk_run_supplier" json:"run_id"`
	Supplier        string  `gorm:"type:varchar(255);not null;uniqueIndex:idx_risk_run_supplier" json:"supplier"`
	Rank            int     `json:"rank"`
	TotalOrders     int     `json:"total_orders"`
	HighDefectCount int     `json:"high_defect_count"`
	DelayedCount    int     `json:"delayed_count"`
	DefectRatePct   float64 `json:"defect_rate_pct"`
	DelayRatePct    float64 `json:"delay_rate_pct"`
}

// TableName specifies the table name
func (SupplierRiskRow) TableName() string {
	return "supplier_risks"
}

// SupplierSavingsRow is one supplier's savings summary within a run
type SupplierSavingsRow struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	RunID          string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_savings_run_supplier" json:"run_id"`
	Supplier       string  `gorm:"type:varchar(255);not null;uniqueIndex:idx_savings_run_supplier" json:"supplier"`
	Rank           int     `json:"rank"`
	TotalOrders    int     `json:"total_orders"`
	TotalQuantity  int64   `json:"total_quantity"`
	TotalCost      float64 `json:"total_cost"`
	NegotiatedCost float64 `json:"negotiated_cost"`
	TotalSavings   float64 `json:"total_savings"`
	SavingsPct     float64 `json:"savings_pct"`
}

// TableName specifies the table name
func (SupplierSavingsRow) TableName() string {
	return "supplier_savings"
}

// MonthlyPriceTrendRow is one month's average prices within a run
type MonthlyPriceTrendRow struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	RunID              string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_trend_run_month" json:"run_id"`
	Month              time.Time `gorm:"not null;uniqueIndex:idx_trend_run_month" json:"month"`
	AvgUnitPrice       float64   `json:"avg_unit_price"`
	AvgNegotiatedPrice float64   `json:"avg_negotiated_price"`
	OrderCount         int       `json:"order_count"`
}

// TableName specifies the table name
func (MonthlyPriceTrendRow) TableName() string {
	return "monthly_price_trends"
}

// allModels lists every table for AutoMigrate
func allModels() []interface{} {
	return []interface{}{
		&ReportRun{},
		&SupplierRiskRow{},
		&SupplierSavingsRow{},
		&MonthlyPriceTrendRow{},
	}
}
