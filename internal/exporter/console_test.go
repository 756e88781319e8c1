package exporter

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, 1)
	assert.Equal(t, "console", sink.Name())

	require.NoError(t, sink.Write(context.Background(), sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "Procurement report run-1")
	assert.Contains(t, out, "Cleaned orders (first rows)")
	assert.Contains(t, out, "PO-1")
	assert.NotContains(t, out, "PO-2", "preview limited to head rows")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "6,000.00")
	assert.Contains(t, out, "Median delivery days by category")
	assert.Contains(t, out, "Supplier risk")
	assert.Contains(t, out, "Top suppliers by total savings")
	assert.Contains(t, out, "Top suppliers by savings percentage")
	assert.Contains(t, out, "Monthly price trend")
	assert.Contains(t, out, "2023-01")
	assert.Contains(t, out, "10.00%")
	assert.NotContains(t, out, "\nSupplier savings\n", "full ranking goes to files only")
}

func TestPrintProfile(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintProfile(&buf, sampleReport(), 5))
	out := buf.String()

	assert.Contains(t, out, "Missing values")
	assert.Contains(t, out, "Summary statistics")
	assert.Contains(t, out, "PO-2")
	assert.NotContains(t, out, "Supplier risk")
}

func TestRenderTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	renderTable(&buf, riskDataset(nil))
	assert.Equal(t, "(no rows)", strings.TrimSpace(buf.String()))
}
