// Package export renders the accumulated document as a downloadable
// file: raw XLSX/CSV, or an accounting-software CSV layout (Pro).
package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"freightsnap/internal/domain"
)

// Result is a fully rendered export ready for a Content-Disposition
// attachment response.
type Result struct {
	Filename    string
	ContentType string
	Data        []byte
}

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

// Build renders the document in the requested format. Accounting layouts
// require an activated license.
func Build(doc *domain.ExtractedDocument, format domain.ExportFormat, pro bool) (*Result, error) {
	if doc == nil || len(doc.Rows) == 0 {
		return nil, domain.ErrNoData
	}
	if format.ProOnly() && !pro {
		return nil, domain.ErrProRequired
	}

	switch format {
	case domain.ExportFormatXLSX:
		data, err := buildXLSX(doc)
		if err != nil {
			return nil, fmt.Errorf("build xlsx export: %w", err)
		}
		return &Result{
			Filename:    BuildFilename(doc.DocumentType, "xlsx"),
			ContentType: contentTypeXLSX,
			Data:        data,
		}, nil
	case domain.ExportFormatCSV:
		data, err := buildCSV(doc.Columns, rawRows(doc))
		if err != nil {
			return nil, fmt.Errorf("build csv export: %w", err)
		}
		return &Result{
			Filename:    BuildFilename(doc.DocumentType, "csv"),
			ContentType: contentTypeCSV,
			Data:        data,
		}, nil
	case domain.ExportFormatQuickBooks, domain.ExportFormatXero:
		layout := layoutFor(format)
		data, err := buildCSV(layout.headers(), layout.apply(doc))
		if err != nil {
			return nil, fmt.Errorf("build %s export: %w", format, err)
		}
		return &Result{
			Filename:    BuildFilename(doc.DocumentType+"_"+string(format), "csv"),
			ContentType: contentTypeCSV,
			Data:        data,
		}, nil
	default:
		return nil, domain.ErrUnsupportedExportFmt
	}
}

// rawRows flattens the document rows into column order; missing keys
// render as "".
func rawRows(doc *domain.ExtractedDocument) [][]string {
	rows := make([][]string, len(doc.Rows))
	for i, row := range doc.Rows {
		out := make([]string, len(doc.Columns))
		for j, col := range doc.Columns {
			out[j] = row[col]
		}
		rows[i] = out
	}
	return rows
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a document type for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized attachment filename.
// Format: FreightSnap_{document_type}_{YYYY-MM-DD}.{ext}
func BuildFilename(documentType, ext string) string {
	sanitized := SanitizeFilename(documentType)
	if sanitized == "" {
		sanitized = "document"
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("FreightSnap_%s_%s.%s", sanitized, date, ext)
}
