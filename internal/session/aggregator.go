package session

import (
	"freightsnap/internal/domain"
)

// mergedKeyInfo replaces the per-file summary once a second document is
// folded in; per-file detail lives in the file list instead.
const mergedKeyInfo = "Combined data from multiple files"

// Aggregator folds per-file extraction results into one accumulated
// document and applies client edits to it. It is not safe for concurrent
// use; the owning session serializes access under its mutex.
type Aggregator struct {
	doc *domain.ExtractedDocument
}

// Merge folds an extracted document into the accumulated one. The first
// document is adopted verbatim. Later merges union the column lists
// (accumulated columns first, then unseen incoming columns in order),
// concatenate rows, and take document_type and source from the incoming
// document, so the latest file wins provenance.
func (a *Aggregator) Merge(incoming *domain.ExtractedDocument) {
	if incoming == nil {
		return
	}
	if a.doc == nil {
		a.doc = incoming.Clone()
		return
	}

	seen := make(map[string]bool, len(a.doc.Columns))
	for _, col := range a.doc.Columns {
		seen[col] = true
	}
	for _, col := range incoming.Columns {
		if !seen[col] {
			a.doc.Columns = append(a.doc.Columns, col)
			seen[col] = true
		}
	}

	for _, row := range incoming.Rows {
		cp := make(map[string]string, len(row))
		for k, v := range row {
			cp[k] = v
		}
		a.doc.Rows = append(a.doc.Rows, cp)
	}

	a.doc.DocumentType = incoming.DocumentType
	a.doc.Source = incoming.Source
	a.doc.Summary.TotalRows = len(a.doc.Rows)
	a.doc.Summary.KeyInfo = mergedKeyInfo
}

// EditCell sets one cell of the accumulated document. The field must be
// one of the document's columns; row keys never stray outside the column
// list.
func (a *Aggregator) EditCell(rowIdx int, field, value string) error {
	if a.doc == nil {
		return domain.ErrNoData
	}
	if rowIdx < 0 || rowIdx >= len(a.doc.Rows) {
		return domain.ErrRowIndexOutOfRange
	}
	known := false
	for _, col := range a.doc.Columns {
		if col == field {
			known = true
			break
		}
	}
	if !known {
		return domain.ErrUnknownColumn
	}
	a.doc.Rows[rowIdx][field] = value
	return nil
}

// DeleteRow removes the row at the given position and recounts the
// summary.
func (a *Aggregator) DeleteRow(rowIdx int) error {
	if a.doc == nil {
		return domain.ErrNoData
	}
	if rowIdx < 0 || rowIdx >= len(a.doc.Rows) {
		return domain.ErrRowIndexOutOfRange
	}
	a.doc.Rows = append(a.doc.Rows[:rowIdx], a.doc.Rows[rowIdx+1:]...)
	a.doc.Summary.TotalRows = len(a.doc.Rows)
	return nil
}

// Clear drops the accumulated document.
func (a *Aggregator) Clear() {
	a.doc = nil
}

// Document returns a deep copy of the accumulated document, or nil when
// nothing has been merged yet.
func (a *Aggregator) Document() *domain.ExtractedDocument {
	return a.doc.Clone()
}

// RowCount reports the number of accumulated rows.
func (a *Aggregator) RowCount() int {
	if a.doc == nil {
		return 0
	}
	return len(a.doc.Rows)
}
