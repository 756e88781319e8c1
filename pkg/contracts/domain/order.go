package domain

import (
	"database/sql"
	"time"
)

// Column names of the procurement log, in file order.
const (
	ColumnPOID            = "PO_ID"
	ColumnSupplier        = "Supplier"
	ColumnItemCategory    = "Item_Category"
	ColumnOrderDate       = "Order_Date"
	ColumnDeliveryDate    = "Delivery_Date"
	ColumnQuantity        = "Quantity"
	ColumnUnitPrice       = "Unit_Price"
	ColumnNegotiatedPrice = "Negotiated_Price"
	ColumnDefectiveUnits  = "Defective_Units"
	ColumnCompliance      = "Compliance"
)

// SourceColumns lists the required input columns in canonical order.
var SourceColumns = []string{
	ColumnPOID,
	ColumnSupplier,
	ColumnItemCategory,
	ColumnOrderDate,
	ColumnDeliveryDate,
	ColumnQuantity,
	ColumnUnitPrice,
	ColumnNegotiatedPrice,
	ColumnDefectiveUnits,
	ColumnCompliance,
}

// Order is one purchase order row of the procurement log.
//
// Base fields come from the input file. Raw date text is retained until the
// cleaner parses it; after that the parsed values are authoritative. Derived
// fields are recomputed by the pipeline and never written back into base
// fields.
type Order struct {
	// Base fields
	POID            string        `json:"po_id"`
	Supplier        string        `json:"supplier"`
	ItemCategory    string        `json:"item_category"`
	RawOrderDate    string        `json:"-"`
	RawDeliveryDate string        `json:"-"`
	OrderDate       sql.NullTime  `json:"-"`
	DeliveryDate    sql.NullTime  `json:"-"`
	Quantity        int64         `json:"quantity"`
	UnitPrice       float64       `json:"unit_price"`
	NegotiatedPrice float64       `json:"negotiated_price"`
	DefectiveUnits  sql.NullInt64 `json:"-"`
	Compliance      string        `json:"compliance"`

	// Derived fields
	DeliveryDays   sql.NullInt64   `json:"-"`
	TotalCost      float64         `json:"total_cost"`
	NegotiatedCost float64         `json:"negotiated_cost"`
	CostSavings    float64         `json:"cost_savings"`
	DefectRate     sql.NullFloat64 `json:"-"`
	IsHighDefect   bool            `json:"is_high_defect"`
	IsDelayed      bool            `json:"is_delayed"`
}

// OrderMonth returns the first day of the order's calendar month in UTC.
// The second return value is false when the order date is unknown.
func (o Order) OrderMonth() (time.Time, bool) {
	if !o.OrderDate.Valid {
		return time.Time{}, false
	}
	t := o.OrderDate.Time
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), true
}

// Table is the in-memory procurement table. Its column set is fixed; only
// the missing-value state of rows changes while it moves through the
// pipeline.
type Table struct {
	Source string
	Rows   []Order
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Clone returns a deep copy so stage functions never mutate their input.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	rows := make([]Order, len(t.Rows))
	copy(rows, t.Rows)
	return &Table{Source: t.Source, Rows: rows}
}

// Head returns at most n rows from the top of the table.
func (t *Table) Head(n int) []Order {
	if t == nil || n <= 0 {
		return nil
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}
