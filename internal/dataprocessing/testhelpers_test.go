package dataprocessing

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"procurekpi/pkg/contracts/domain"
)

const sampleHeader = "PO_ID,Supplier,Item_Category,Order_Date,Delivery_Date,Quantity,Unit_Price,Negotiated_Price,Defective_Units,Compliance\n"

// writeFile writes content to name under a fresh temp dir
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func day(s string) sql.NullTime {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return sql.NullTime{Time: t, Valid: true}
}

func days(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: true}
}

func units(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: true}
}

func table(rows ...domain.Order) *domain.Table {
	return &domain.Table{Source: "test.csv", Rows: rows}
}
