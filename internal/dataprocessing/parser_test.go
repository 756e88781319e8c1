package dataprocessing

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "procurekpi/internal/errors"
	"procurekpi/pkg/contracts/domain"
)

func TestLoadFile_CSV(t *testing.T) {
	path := writeFile(t, "orders.csv", sampleHeader+
		"PO-1,Acme,Electronics,2023-01-10,2023-01-15,10,5.00,4.50,1, COMPLIANT \n"+
		"\n"+
		"PO-2,Beta,Office,2023/02/01,,\"1,200\",2.5,2.25,,\n")

	tbl, err := LoadFile(context.Background(), path, LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, path, tbl.Source)

	first := tbl.Rows[0]
	assert.Equal(t, "PO-1", first.POID)
	assert.Equal(t, "Acme", first.Supplier)
	assert.Equal(t, "Electronics", first.ItemCategory)
	assert.Equal(t, "2023-01-10", first.RawOrderDate)
	assert.Equal(t, "2023-01-15", first.RawDeliveryDate)
	assert.False(t, first.OrderDate.Valid, "dates are parsed by the cleaner")
	assert.Equal(t, int64(10), first.Quantity)
	assert.Equal(t, 5.0, first.UnitPrice)
	assert.Equal(t, 4.5, first.NegotiatedPrice)
	assert.Equal(t, units(1), first.DefectiveUnits)
	assert.Equal(t, "COMPLIANT", first.Compliance)

	second := tbl.Rows[1]
	assert.Equal(t, int64(1200), second.Quantity)
	assert.Equal(t, sql.NullInt64{}, second.DefectiveUnits)
	assert.Empty(t, second.RawDeliveryDate)
	assert.Empty(t, second.Compliance)
}

func TestLoadFile_HeaderFolding(t *testing.T) {
	path := writeFile(t, "orders.csv",
		"\ufeffpo id;SUPPLIER;item-category;Order Date;delivery_date;qty_ignored;Quantity;Unit Price;Negotiated-Price;defective units;compliance\n"+
			"PO-1;Acme;Tools;2023-03-01;2023-03-04;x;3;1.5;1.25;0;Compliant\n")

	tbl, err := LoadFile(context.Background(), path, LoadOptions{Delimiter: ';'})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "PO-1", tbl.Rows[0].POID)
	assert.Equal(t, int64(3), tbl.Rows[0].Quantity)
	assert.Equal(t, 1.25, tbl.Rows[0].NegotiatedPrice)
}

func TestLoadFile_TSV(t *testing.T) {
	path := writeFile(t, "orders.tsv",
		"PO_ID\tSupplier\tItem_Category\tOrder_Date\tDelivery_Date\tQuantity\tUnit_Price\tNegotiated_Price\tDefective_Units\tCompliance\n"+
			"PO-1\tAcme\tTools\t2023-03-01\t2023-03-04\t3\t1.5\t1.25\t0\tCompliant\n")

	tbl, err := LoadFile(context.Background(), path, LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "Tools", tbl.Rows[0].ItemCategory)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		content    string
		wantType   apperrors.ErrorType
		wantColumn string
		wantRow    int
	}{
		{
			name:       "missing column",
			file:       "orders.csv",
			content:    "PO_ID,Supplier,Item_Category,Order_Date,Delivery_Date,Quantity,Unit_Price,Negotiated_Price,Defective_Units\nPO-1,A,B,,,1,1,1,0\n",
			wantType:   apperrors.ErrTypeParsing,
			wantColumn: domain.ColumnCompliance,
		},
		{
			name:       "non-numeric quantity",
			file:       "orders.csv",
			content:    sampleHeader + "PO-1,A,B,,,1,1,1,0,x\nPO-2,A,B,,,ten,1,1,0,x\n",
			wantType:   apperrors.ErrTypeParsing,
			wantColumn: domain.ColumnQuantity,
			wantRow:    3,
		},
		{
			name:       "empty unit price",
			file:       "orders.csv",
			content:    sampleHeader + "PO-1,A,B,,,1,,1,0,x\n",
			wantType:   apperrors.ErrTypeParsing,
			wantColumn: domain.ColumnUnitPrice,
			wantRow:    2,
		},
		{
			name:       "fractional quantity",
			file:       "orders.csv",
			content:    sampleHeader + "PO-1,A,B,,,1.5,1,1,0,x\n",
			wantType:   apperrors.ErrTypeParsing,
			wantColumn: domain.ColumnQuantity,
			wantRow:    2,
		},
		{
			name:     "empty file",
			file:     "orders.csv",
			content:  "",
			wantType: apperrors.ErrTypeParsing,
		},
		{
			name:     "unsupported extension",
			file:     "orders.json",
			content:  "{}",
			wantType: apperrors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)

			_, err := LoadFile(context.Background(), path, LoadOptions{})
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			if tt.wantColumn != "" {
				assert.Equal(t, tt.wantColumn, appErr.Context["column"])
			}
			if tt.wantRow != 0 {
				assert.Equal(t, tt.wantRow, appErr.Context["row"])
			}
		})
	}
}

func TestLoadFile_Cancelled(t *testing.T) {
	content := sampleHeader
	for i := 0; i < 2*ctxCheckInterval; i++ {
		content += "PO,A,B,,,1,1,1,0,x\n"
	}
	path := writeFile(t, "orders.csv", content)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadFile(ctx, path, LoadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := "Orders"
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))

	header := []interface{}{"PO_ID", "Supplier", "Item_Category", "Order_Date", "Delivery_Date",
		"Quantity", "Unit_Price", "Negotiated_Price", "Defective_Units", "Compliance"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))

	// 44936 is 2023-01-10 as an Excel serial date
	row := []interface{}{"PO-1", "Acme", "Electronics", 44936, "2023-01-15", 10, 5.0, 4.5, 2, "compliant"}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &row))

	path := filepath.Join(t.TempDir(), "orders.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := LoadFile(context.Background(), path, LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())

	got := tbl.Rows[0]
	assert.Equal(t, "2023-01-10", got.RawOrderDate)
	assert.Equal(t, "2023-01-15", got.RawDeliveryDate)
	assert.Equal(t, int64(10), got.Quantity)
	assert.Equal(t, 4.5, got.NegotiatedPrice)
	assert.Equal(t, units(2), got.DefectiveUnits)

	_, err = LoadFile(context.Background(), path, LoadOptions{Sheet: "Missing"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestColumnFor(t *testing.T) {
	tests := map[string]string{
		"PO_ID":             domain.ColumnPOID,
		"po id":             domain.ColumnPOID,
		"Po-Id":             domain.ColumnPOID,
		"\ufeffPO_ID":       domain.ColumnPOID,
		" Negotiated Price": domain.ColumnNegotiatedPrice,
		"price":             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, columnFor(in), in)
	}
}
