package export

import (
	"bytes"
	"encoding/csv"
)

// BOM is the UTF-8 byte order mark, prepended for Excel compatibility on
// Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

func buildCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
