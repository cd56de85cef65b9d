package tabular_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightsnap/internal/tabular"
)

func TestReconstruct_EmptyGrid(t *testing.T) {
	doc := tabular.Reconstruct(nil, "empty.csv")

	assert.Equal(t, "spreadsheet", doc.DocumentType)
	assert.Equal(t, "empty.csv", doc.Source)
	assert.Empty(t, doc.Columns)
	assert.Empty(t, doc.Rows)
	assert.Equal(t, 0, doc.Summary.TotalRows)
	assert.Equal(t, "Empty file", doc.Summary.KeyInfo)
}

func TestReconstruct_SingleRowGrid(t *testing.T) {
	doc := tabular.Reconstruct([][]string{{"Tracking", "Origin"}}, "one_row.xlsx")

	assert.Empty(t, doc.Columns)
	assert.Empty(t, doc.Rows)
	assert.Equal(t, 0, doc.Summary.TotalRows)
	assert.Equal(t, "Empty file", doc.Summary.KeyInfo)
}

func TestReconstruct_BasicCSVShape(t *testing.T) {
	grid := [][]string{
		{"Tracking", "Origin", "Destination", "Weight"},
		{"TRK001", "Shanghai", "Rotterdam", "1200"},
		{"TRK002", "Shenzhen", "Hamburg", "860"},
		{"TRK003", "Ningbo", "Antwerp", "2040"},
	}

	doc := tabular.Reconstruct(grid, "shipments.csv")

	assert.Equal(t, []string{"tracking", "origin", "destination", "weight"}, doc.Columns)
	require.Len(t, doc.Rows, 3)
	assert.Equal(t, "TRK001", doc.Rows[0]["tracking"])
	assert.Equal(t, "Antwerp", doc.Rows[2]["destination"])
	assert.Equal(t, 3, doc.Summary.TotalRows)
	assert.Equal(t, "Extracted 3 rows with 4 columns", doc.Summary.KeyInfo)
}

func TestReconstruct_HeaderDetection_EarliestWinsOnTie(t *testing.T) {
	// Rows 0 and 2 both have three non-empty cells; row 1 has fewer.
	// The strict > comparison must keep row 0 as the header.
	grid := [][]string{
		{"Container", "Vessel", "Port"},
		{"meta", "", ""},
		{"CMAU123", "Ever Given", "Suez"},
		{"TCLU456", "MSC Oscar", "Valencia"},
	}

	doc := tabular.Reconstruct(grid, "tie.xlsx")

	assert.Equal(t, []string{"container", "vessel", "port"}, doc.Columns)
	require.Len(t, doc.Rows, 3)
	assert.Equal(t, "meta", doc.Rows[0]["container"])
	assert.Equal(t, "CMAU123", doc.Rows[1]["container"])
}

func TestReconstruct_HeaderDetection_SkipsMetadataRows(t *testing.T) {
	grid := [][]string{
		{"Carrier Report Q3", "", "", ""},
		{"", "", "", ""},
		{"Tracking", "Origin", "Destination", "Weight"},
		{"TRK001", "Shanghai", "Rotterdam", "1200"},
	}

	doc := tabular.Reconstruct(grid, "report.xlsx")

	assert.Equal(t, []string{"tracking", "origin", "destination", "weight"}, doc.Columns)
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, "TRK001", doc.Rows[0]["tracking"])
}

func TestReconstruct_ColumnNormalization(t *testing.T) {
	grid := [][]string{
		{"  Gross Weight (kg) ", "B/L No.", "Est.  Arrival"},
		{"1200", "BL-881", "2024-03-01"},
	}

	doc := tabular.Reconstruct(grid, "norm.csv")

	assert.Equal(t, []string{"gross_weight_kg", "bl_no", "est_arrival"}, doc.Columns)
}

func TestReconstruct_DuplicateColumnNumbering(t *testing.T) {
	grid := [][]string{
		{"Rate", "Rate", "Rate"},
		{"10", "20", "30"},
	}

	doc := tabular.Reconstruct(grid, "rates.csv")

	assert.Equal(t, []string{"rate", "rate_1", "rate_2"}, doc.Columns)
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, "10", doc.Rows[0]["rate"])
	assert.Equal(t, "20", doc.Rows[0]["rate_1"])
	assert.Equal(t, "30", doc.Rows[0]["rate_2"])
}

func TestReconstruct_EmptyHeaderCellsDropped(t *testing.T) {
	grid := [][]string{
		{"Tracking", "  ", "???", "Weight"},
		{"TRK001", "ignored", "ignored too", "1200"},
	}

	doc := tabular.Reconstruct(grid, "gaps.csv")

	assert.Equal(t, []string{"tracking", "weight"}, doc.Columns)
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, map[string]string{"tracking": "TRK001", "weight": "1200"}, doc.Rows[0])
}

func TestReconstruct_RowFiltering(t *testing.T) {
	grid := [][]string{
		{"Event", "Location", "Time"},
		{"", "  ", ""},
		{"Event Type Summary", "Rotterdam", "08:00"},
		{"Header repeated below", "x", "y"},
		{"Gate out", "Rotterdam", "09:15"},
	}

	doc := tabular.Reconstruct(grid, "events.xlsx")

	require.Len(t, doc.Rows, 1)
	assert.Equal(t, "Gate out", doc.Rows[0]["event"])
	assert.Equal(t, 1, doc.Summary.TotalRows)
}

func TestReconstruct_RaggedRowsAndTrimming(t *testing.T) {
	grid := [][]string{
		{"Tracking", "Origin", "Destination"},
		{" TRK001 ", "Shanghai"},
		{"TRK002"},
	}

	doc := tabular.Reconstruct(grid, "ragged.csv")

	require.Len(t, doc.Rows, 2)
	assert.Equal(t, "TRK001", doc.Rows[0]["tracking"])
	assert.Equal(t, "Shanghai", doc.Rows[0]["origin"])
	assert.Equal(t, "", doc.Rows[0]["destination"])
	assert.Equal(t, "TRK002", doc.Rows[1]["tracking"])
}

func TestReconstruct_SummaryMatchesRowCount(t *testing.T) {
	grid := [][]string{
		{"A", "B"},
		{"1", "2"},
		{"", ""},
		{"3", "4"},
	}

	doc := tabular.Reconstruct(grid, "sum.csv")

	assert.Equal(t, len(doc.Rows), doc.Summary.TotalRows)
	assert.Equal(t, 2, doc.Summary.TotalRows)
}
