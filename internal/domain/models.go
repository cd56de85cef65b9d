package domain

import (
	"github.com/google/uuid"
)

// ExtractedDocument is the common output schema of both extraction paths:
// the deterministic spreadsheet reconstructor and the model-backed PDF
// normalizer both produce this shape, and the session aggregator folds
// every successfully processed file into a single accumulated instance.
type ExtractedDocument struct {
	DocumentType string              `json:"document_type"`
	Source       string              `json:"source"`
	Columns      []string            `json:"columns"`
	Rows         []map[string]string `json:"rows"`
	Summary      Summary             `json:"summary"`
}

// Summary holds derived counts for an ExtractedDocument. TotalRows must
// equal len(Rows) after every mutation; it is kept in sync by the code
// that mutates the document, never trusted from stale input.
type Summary struct {
	TotalRows int    `json:"total_rows"`
	KeyInfo   string `json:"key_info"`
}

// Clone returns a deep copy of the document so callers can hand out
// snapshots without exposing the session's mutable state.
func (d *ExtractedDocument) Clone() *ExtractedDocument {
	if d == nil {
		return nil
	}
	cp := &ExtractedDocument{
		DocumentType: d.DocumentType,
		Source:       d.Source,
		Summary:      d.Summary,
	}
	cp.Columns = append([]string(nil), d.Columns...)
	cp.Rows = make([]map[string]string, len(d.Rows))
	for i, row := range d.Rows {
		r := make(map[string]string, len(row))
		for k, v := range row {
			r[k] = v
		}
		cp.Rows[i] = r
	}
	return cp
}

// UploadedFile tracks one file through the per-session extraction queue.
// It lives only for the lifetime of the session; the raw payload is held
// by the queue entry and released once the file reaches a terminal state.
type UploadedFile struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Status       FileStatus `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	RowCount     int        `json:"row_count"`
}
