// Package spreadsheet decodes uploaded workbook bytes into the raw cell
// grid consumed by the tabular reconstructor.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"freightsnap/internal/domain"
)

// utf8BOM is stripped from CSV payloads; Excel prepends it on export.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts raw file bytes into a headerless array-of-arrays grid of
// display strings. Rows may be ragged; missing cells are simply absent.
// Only the first sheet of a workbook is read.
func Decode(fileType domain.FileType, data []byte) ([][]string, error) {
	switch fileType {
	case domain.FileTypeCSV:
		return decodeCSV(data)
	case domain.FileTypeXLS:
		return decodeBIFF(data)
	case domain.FileTypeXLSX:
		return decodeWorkbook(data)
	default:
		return nil, fmt.Errorf("not a spreadsheet type: %s", fileType)
	}
}

func decodeCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var grid [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		grid = append(grid, record)
	}
	return grid, nil
}

// decodeBIFF reads a legacy binary .xls workbook. excelize only
// understands OOXML, so these go through a dedicated BIFF reader.
func decodeBIFF(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening xls workbook: %w", err)
	}

	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("reading xls sheet: %w", err)
	}

	var grid [][]string
	for i := 0; i <= sheet.GetNumberRows(); i++ {
		r, err := sheet.GetRow(i)
		if err != nil || r == nil {
			continue
		}
		cells := r.GetCols()
		cols := make([]string, len(cells))
		for j, cell := range cells {
			cols[j] = cell.GetString()
		}
		grid = append(grid, cols)
	}
	return grid, nil
}

func decodeWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
