package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"freightsnap/internal/domain"
)

// CleanReply strips optional Markdown code-fence wrapping from a model
// reply before it is parsed as JSON.
func CleanReply(reply string) string {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-len("```")]
	}
	return strings.TrimSpace(s)
}

// ParseReply validates a model reply against the ExtractedDocument shape.
// Model output is untrusted: the reply must be a JSON object whose columns
// field is a string array and whose rows field is an array; anything else
// fails with a shape error rather than returning partial data. Row values
// of any JSON scalar type are coerced to strings so a model that emits
// bare numbers does not sink the whole document.
func ParseReply(reply, provider, sourceName string) (*domain.ExtractedDocument, error) {
	cleaned := CleanReply(reply)

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, NewExtractionError(KindBadJSON, provider,
			fmt.Errorf("response was not valid JSON: %w (raw: %s)", err, truncate(cleaned, 500)))
	}

	colsRaw, colsOK := obj["columns"]
	rowsRaw, rowsOK := obj["rows"]
	if !colsOK || !rowsOK {
		return nil, NewExtractionError(KindBadShape, provider,
			fmt.Errorf("invalid AI response format: missing columns or rows"))
	}

	var columns []string
	if err := json.Unmarshal(colsRaw, &columns); err != nil {
		return nil, NewExtractionError(KindBadShape, provider,
			fmt.Errorf("invalid AI response format: columns is not a string array: %w", err))
	}

	var rawRows []map[string]json.RawMessage
	if err := json.Unmarshal(rowsRaw, &rawRows); err != nil {
		return nil, NewExtractionError(KindBadShape, provider,
			fmt.Errorf("invalid AI response format: rows is not an array of objects: %w", err))
	}

	columns = dedupeColumns(columns)

	// Row keys stay a subset of the declared columns; stray keys the
	// model invents are dropped rather than surfacing as phantom cells.
	colSet := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		colSet[c] = struct{}{}
	}

	rows := make([]map[string]string, 0, len(rawRows))
	for _, raw := range rawRows {
		row := make(map[string]string, len(raw))
		for k, v := range raw {
			if _, ok := colSet[k]; !ok {
				continue
			}
			row[k] = coerceString(v)
		}
		rows = append(rows, row)
	}

	doc := &domain.ExtractedDocument{
		DocumentType: stringField(obj, "document_type"),
		Source:       stringField(obj, "source"),
		Columns:      columns,
		Rows:         rows,
	}
	if doc.DocumentType == "" {
		doc.DocumentType = "document"
	}
	if doc.Source == "" {
		doc.Source = sourceName
	}

	// Derived summary is never trusted from the model: total_rows must
	// match the actual row count.
	var summary domain.Summary
	if raw, ok := obj["summary"]; ok {
		_ = json.Unmarshal(raw, &summary)
	}
	summary.TotalRows = len(rows)
	if summary.KeyInfo == "" {
		summary.KeyInfo = fmt.Sprintf("Extracted %d rows with %d columns", len(rows), len(columns))
	}
	doc.Summary = summary

	return doc, nil
}

// dedupeColumns removes exact duplicate column names, keeping first
// occurrence order. The prompt asks the model for unique names; this is
// the structural backstop for the uniqueness invariant.
func dedupeColumns(columns []string) []string {
	seen := make(map[string]struct{}, len(columns))
	out := columns[:0]
	for _, c := range columns {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// coerceString converts a raw JSON value to its string form: strings are
// unwrapped, null becomes "", and other scalars keep their literal text.
func coerceString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

func stringField(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
