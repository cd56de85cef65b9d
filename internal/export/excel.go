package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"freightsnap/internal/domain"
)

const sheetName = "Extracted Data"

// maxColWidth caps the auto-fit column width so one long cell does not
// blow up the sheet.
const maxColWidth = 40

func buildXLSX(doc *domain.ExtractedDocument) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(doc.Columns))
	for i, col := range doc.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	for i, row := range doc.Rows {
		values := make([]interface{}, len(doc.Columns))
		for j, col := range doc.Columns {
			values[j] = row[col]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, err
		}
	}

	if err := autoFitColumns(f, doc); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// autoFitColumns widens each column to its longest value plus padding,
// capped at maxColWidth.
func autoFitColumns(f *excelize.File, doc *domain.ExtractedDocument) error {
	for i, col := range doc.Columns {
		width := len(col)
		for _, row := range doc.Rows {
			if l := len(row[col]); l > width {
				width = l
			}
		}
		width += 2
		if width > maxColWidth {
			width = maxColWidth
		}

		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column %d: %w", i+1, err)
		}
		if err := f.SetColWidth(sheetName, name, name, float64(width)); err != nil {
			return err
		}
	}
	return nil
}
