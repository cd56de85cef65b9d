// Package pdftext extracts a linear text stream from raw PDF bytes.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor reads PDF bytes into plain text, page by page. Pages that fail
// to decode are skipped; a scanned or image-only PDF yields empty text,
// which the caller treats as "no extractable text".
type Extractor struct{}

// NewExtractor creates a PDF text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the concatenated plain text of all pages. The underlying
// reader panics on some malformed files, so the panic is converted into an
// error here rather than taking down the worker.
func (e *Extractor) Extract(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String()), nil
}
