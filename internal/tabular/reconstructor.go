// Package tabular reconstructs a clean column/row table from the raw cell
// grid of a spreadsheet. It is pure: no I/O, no error paths — input without
// usable structure degrades to an empty document.
package tabular

import (
	"fmt"
	"regexp"
	"strings"

	"freightsnap/internal/domain"
)

// headerScanLimit bounds the header search to the top of the sheet;
// freight spreadsheets often carry a few banner/metadata rows first.
const headerScanLimit = 10

// whitespaceRun matches one or more consecutive whitespace characters.
var whitespaceRun = regexp.MustCompile(`\s+`)

// nonWordChar matches characters that are not word characters or underscores.
var nonWordChar = regexp.MustCompile(`[^\w_]`)

// column pairs a retained header cell's grid index with its normalized name.
type column struct {
	index int
	name  string
}

// Reconstruct builds an ExtractedDocument from a raw cell grid. Rows may be
// ragged and cells may be empty strings. A grid with fewer than two rows
// yields the designated empty document rather than an error.
func Reconstruct(grid [][]string, sourceName string) *domain.ExtractedDocument {
	if len(grid) < 2 {
		return emptyDocument(sourceName)
	}

	headerIdx := findHeaderRow(grid)
	columns := normalizeHeader(grid[headerIdx])
	rows := extractRows(grid, headerIdx, columns)

	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.name
	}

	return &domain.ExtractedDocument{
		DocumentType: "spreadsheet",
		Source:       sourceName,
		Columns:      names,
		Rows:         rows,
		Summary: domain.Summary{
			TotalRows: len(rows),
			KeyInfo:   fmt.Sprintf("Extracted %d rows with %d columns", len(rows), len(names)),
		},
	}
}

func emptyDocument(sourceName string) *domain.ExtractedDocument {
	return &domain.ExtractedDocument{
		DocumentType: "spreadsheet",
		Source:       sourceName,
		Columns:      []string{},
		Rows:         []map[string]string{},
		Summary:      domain.Summary{TotalRows: 0, KeyInfo: "Empty file"},
	}
}

// findHeaderRow returns the index of the row with the most non-empty cells
// among the first headerScanLimit rows. Ties go to the earliest row: the
// scan is ascending and only a strictly greater count updates the choice.
func findHeaderRow(grid [][]string) int {
	maxCols := 0
	headerRow := 0

	limit := len(grid)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}
	for i := 0; i < limit; i++ {
		nonEmpty := 0
		for _, cell := range grid[i] {
			if strings.TrimSpace(cell) != "" {
				nonEmpty++
			}
		}
		if nonEmpty > maxCols {
			maxCols = nonEmpty
			headerRow = i
		}
	}
	return headerRow
}

// normalizeHeader cleans header cells into column identifiers. Cells that
// normalize to the empty string produce no column, and their grid index is
// excluded from row extraction. Duplicate names get a numeric suffix: the
// second occurrence of a base name becomes name_1, the third name_2.
func normalizeHeader(header []string) []column {
	var columns []column
	for i, cell := range header {
		name := strings.TrimSpace(cell)
		name = whitespaceRun.ReplaceAllString(name, "_")
		name = nonWordChar.ReplaceAllString(name, "")
		name = strings.ToLower(name)
		if name == "" {
			continue
		}
		columns = append(columns, column{index: i, name: name})
	}

	seen := make(map[string]int, len(columns))
	for i := range columns {
		base := columns[i].name
		if n := seen[base]; n > 0 {
			columns[i].name = fmt.Sprintf("%s_%d", base, n)
		}
		seen[base]++
	}
	return columns
}

// extractRows walks the grid strictly after the header row and builds row
// maps over the retained column indices. Blank rows, repeated header rows
// ("event type" / "header" in the first cell), and rows with no non-empty
// value are dropped.
func extractRows(grid [][]string, headerIdx int, columns []column) []map[string]string {
	rows := make([]map[string]string, 0, len(grid)-headerIdx-1)

	for i := headerIdx + 1; i < len(grid); i++ {
		row := grid[i]

		if !hasNonEmptyCell(row) {
			continue
		}
		firstCell := ""
		if len(row) > 0 {
			firstCell = strings.ToLower(row[0])
		}
		if strings.Contains(firstCell, "event type") || strings.Contains(firstCell, "header") {
			continue
		}

		obj := make(map[string]string, len(columns))
		hasValue := false
		for _, col := range columns {
			val := ""
			if col.index < len(row) {
				val = strings.TrimSpace(row[col.index])
			}
			obj[col.name] = val
			if val != "" {
				hasValue = true
			}
		}
		if hasValue {
			rows = append(rows, obj)
		}
	}
	return rows
}

func hasNonEmptyCell(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}
