package exporter

import (
	"sort"

	"procurekpi/internal/config"
	"procurekpi/pkg/contracts/domain"
)

// valueKind tells renderers how to format a column
type valueKind int

const (
	kindText valueKind = iota
	kindInt
	kindMoney
	kindPercent
	kindRatio
	kindDate
	kindMonth
	kindBool
)

// Sheet names, also used to pick tables by name
const (
	sheetOrders        = "Cleaned Orders"
	sheetMedians       = "Category Medians"
	sheetRisk          = "Supplier Risk"
	sheetSavings       = "Supplier Savings"
	sheetTopSavings    = "Top Savings"
	sheetTopSavingsPct = "Top Savings Pct"
	sheetTrends        = "Price Trends"
	sheetMissing       = "Missing Values"
	sheetStats         = "Statistics"
)

type column struct {
	Name string
	Kind valueKind
}

// dataset is one rendered table: typed cells that every sink formats its
// own way
type dataset struct {
	Title   string
	Sheet   string
	File    string
	Columns []column
	Rows    [][]interface{}
}

// Headers returns the column names
func (d *dataset) Headers() []string {
	headers := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		headers[i] = c.Name
	}
	return headers
}

// Records formats every row as CSV text
func (d *dataset) Records() [][]string {
	records := make([][]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		records = append(records, d.format(row, formatCell))
	}
	return records
}

func (d *dataset) format(row []interface{}, f func(valueKind, interface{}) string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = f(d.Columns[i].Kind, v)
	}
	return out
}

var orderColumns = []column{
	{domain.ColumnPOID, kindText},
	{domain.ColumnSupplier, kindText},
	{domain.ColumnItemCategory, kindText},
	{domain.ColumnOrderDate, kindDate},
	{domain.ColumnDeliveryDate, kindDate},
	{domain.ColumnQuantity, kindInt},
	{domain.ColumnUnitPrice, kindMoney},
	{domain.ColumnNegotiatedPrice, kindMoney},
	{domain.ColumnDefectiveUnits, kindInt},
	{domain.ColumnCompliance, kindText},
	{"Delivery_Days", kindInt},
	{"Total_Cost", kindMoney},
	{"Negotiated_Cost", kindMoney},
	{"Cost_Savings", kindMoney},
	{"Defect_Rate", kindRatio},
	{"Is_High_Defect", kindBool},
	{"Is_Delayed", kindBool},
}

func orderRow(o domain.Order) []interface{} {
	return []interface{}{
		o.POID,
		o.Supplier,
		o.ItemCategory,
		nullDate(o.OrderDate),
		nullDate(o.DeliveryDate),
		o.Quantity,
		o.UnitPrice,
		o.NegotiatedPrice,
		nullInt(o.DefectiveUnits),
		o.Compliance,
		nullInt(o.DeliveryDays),
		o.TotalCost,
		o.NegotiatedCost,
		o.CostSavings,
		nullFloat(o.DefectRate),
		o.IsHighDefect,
		o.IsDelayed,
	}
}

// ordersDataset renders orders as the cleaned table
func ordersDataset(title string, orders []domain.Order) *dataset {
	d := &dataset{
		Title:   title,
		Sheet:   sheetOrders,
		File:    config.CleanedOrdersCSV,
		Columns: orderColumns,
		Rows:    make([][]interface{}, 0, len(orders)),
	}
	for _, o := range orders {
		d.Rows = append(d.Rows, orderRow(o))
	}
	return d
}

// mediansDataset lists category lead-time medians by category name
func mediansDataset(medians map[string]float64) *dataset {
	categories := make([]string, 0, len(medians))
	for c := range medians {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	d := &dataset{
		Title:   "Median delivery days by category",
		Sheet:   sheetMedians,
		Columns: []column{{"Item_Category", kindText}, {"Median_Delivery_Days", kindMoney}},
	}
	for _, c := range categories {
		d.Rows = append(d.Rows, []interface{}{c, medians[c]})
	}
	return d
}

func riskDataset(risk []domain.SupplierRisk) *dataset {
	d := &dataset{
		Title: "Supplier risk",
		Sheet: sheetRisk,
		File:  config.SupplierRiskCSV,
		Columns: []column{
			{"Supplier", kindText},
			{"Total_Orders", kindInt},
			{"High_Defect_Orders", kindInt},
			{"Delayed_Orders", kindInt},
			{"Defect_Rate_Pct", kindPercent},
			{"Delay_Rate_Pct", kindPercent},
		},
	}
	for _, r := range risk {
		d.Rows = append(d.Rows, []interface{}{
			r.Supplier, r.TotalOrders, r.HighDefectCount, r.DelayedCount, r.DefectRatePct, r.DelayRatePct,
		})
	}
	return d
}

// savingsColumns indexes used by the xlsx charts
const (
	savingsColSupplier = 0
	savingsColTotal    = 5
	savingsColPct      = 6
)

func savingsDataset(title, sheet, file string, savings []domain.SupplierSavings) *dataset {
	d := &dataset{
		Title: title,
		Sheet: sheet,
		File:  file,
		Columns: []column{
			{"Supplier", kindText},
			{"Total_Orders", kindInt},
			{"Total_Quantity", kindInt},
			{"Total_Cost", kindMoney},
			{"Negotiated_Cost", kindMoney},
			{"Total_Savings", kindMoney},
			{"Savings_Pct", kindPercent},
		},
	}
	for _, s := range savings {
		d.Rows = append(d.Rows, []interface{}{
			s.Supplier, s.TotalOrders, s.TotalQuantity, s.TotalCost, s.NegotiatedCost, s.TotalSavings, s.SavingsPct,
		})
	}
	return d
}

func trendsDataset(trends []domain.MonthlyPriceTrend) *dataset {
	d := &dataset{
		Title: "Monthly price trend",
		Sheet: sheetTrends,
		File:  config.PriceTrendsCSV,
		Columns: []column{
			{"Month", kindMonth},
			{"Avg_Unit_Price", kindMoney},
			{"Avg_Negotiated_Price", kindMoney},
			{"Order_Count", kindInt},
		},
	}
	for _, tr := range trends {
		d.Rows = append(d.Rows, []interface{}{tr.Month, tr.AvgUnitPrice, tr.AvgNegotiatedPrice, tr.OrderCount})
	}
	return d
}

func missingDataset(p domain.Profile) *dataset {
	d := &dataset{
		Title:   "Missing values",
		Sheet:   sheetMissing,
		Columns: []column{{"Column", kindText}, {"Before_Cleaning", kindInt}, {"After_Cleaning", kindInt}},
	}
	after := make(map[string]int, len(p.MissingAfter))
	for _, m := range p.MissingAfter {
		after[m.Column] = m.Count
	}
	for _, m := range p.MissingBefore {
		d.Rows = append(d.Rows, []interface{}{m.Column, m.Count, after[m.Column]})
	}
	return d
}

func describeDataset(p domain.Profile) *dataset {
	d := &dataset{
		Title: "Summary statistics",
		Sheet: sheetStats,
		Columns: []column{
			{"Column", kindText},
			{"Count", kindInt},
			{"Mean", kindRatio},
			{"Std", kindRatio},
			{"Min", kindRatio},
			{"25%", kindRatio},
			{"50%", kindRatio},
			{"75%", kindRatio},
			{"Max", kindRatio},
		},
	}
	for _, s := range p.Columns {
		d.Rows = append(d.Rows, []interface{}{s.Column, s.Count, s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max})
	}
	return d
}

// reportDatasets returns every summary table of a report in display order.
// The cleaned table is limited to headRows; a negative value keeps all rows.
func reportDatasets(report *domain.Report, headRows int) []*dataset {
	var orders []domain.Order
	title := "Cleaned orders"
	if report.Table != nil {
		orders = report.Table.Rows
		if headRows >= 0 {
			orders = report.Table.Head(headRows)
			title = "Cleaned orders (first rows)"
		}
	}

	return []*dataset{
		ordersDataset(title, orders),
		mediansDataset(report.Medians),
		riskDataset(report.Risk),
		savingsDataset("Supplier savings", sheetSavings, config.SupplierSavingCSV, report.Savings),
		savingsDataset("Top suppliers by total savings", sheetTopSavings, config.TopSavingsCSV, report.TopSavings),
		savingsDataset("Top suppliers by savings percentage", sheetTopSavingsPct, config.TopSavingsPctCSV, report.TopSavingsPct),
		trendsDataset(report.Trends),
		missingDataset(report.Profile),
		describeDataset(report.Profile),
	}
}
