package config

// Application constants
const (
	// Application Info
	AppName    = "procurekpi"
	AppVersion = "1.0.0"

	// Imputation policy
	FillStrategyMedian = "median" // impute every missing delivery from the category median
	FillStrategyFFill  = "ffill"  // forward-fill from the previous row first, then median

	// Risk thresholds
	DefaultDefectThreshold    = 0.10 // inclusive
	DefaultDelayThresholdDays = 13   // exclusive
	DefaultFallbackLeadDays   = 10

	// Cleaning
	DefaultUnknownCompliance = "Unknown"

	// Reporting
	DefaultTopN      = 10
	DefaultHeadRows  = 5
	DefaultOutputDir = "reports"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Output file names
	CleanedOrdersCSV  = "cleaned_orders.csv"
	SupplierRiskCSV   = "supplier_risk.csv"
	SupplierSavingCSV = "supplier_savings.csv"
	TopSavingsCSV     = "top_savings.csv"
	TopSavingsPctCSV  = "top_savings_pct.csv"
	PriceTrendsCSV    = "monthly_price_trends.csv"
	ReportJSON        = "report.json"
	ReportXLSX        = "procurement_report.xlsx"

	// Date format used in every output
	DateFormat = "2006-01-02"
)
