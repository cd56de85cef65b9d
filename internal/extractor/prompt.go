package extractor

import "fmt"

// ExtractionPrompt is the system instruction sent with every normalization
// request. It adapts to any tabular document rather than a fixed schema.
const ExtractionPrompt = `You are a document data extraction specialist. Analyze the provided text and extract ALL structured data into a clean, normalized format.

INSTRUCTIONS:
1. Identify ALL columns/fields present in the data
2. Extract EVERY row of data with ALL available fields
3. Normalize field names to be clean (no special chars, use underscores, lowercase)
4. Keep data values exactly as they appear (numbers, dates, IDs, etc.)
5. If a field is empty or N/A, use empty string ""

Return a JSON object with this structure:
{
  "document_type": "invoice/quote/report/manifest/etc",
  "source": "detected source/company name if visible",
  "columns": ["column1", "column2", ...],
  "rows": [
    {"column1": "value1", "column2": "value2", ...},
    ...
  ],
  "summary": {
    "total_rows": number,
    "key_info": "brief summary of what this document contains"
  }
}

IMPORTANT:
- Extract ALL rows, not just a sample
- Preserve container IDs, invoice numbers, tariff codes exactly
- Keep numeric values as strings to preserve formatting
- Detect date formats and keep them consistent

Only return valid JSON, no additional text or explanation.`

// BuildUserMessage formats the user message for a normalization request.
func BuildUserMessage(sourceName, text string) string {
	return fmt.Sprintf("Filename: %s\n\nContent:\n%s", sourceName, text)
}

// truncationMarker is appended when document text exceeds the request budget.
const truncationMarker = "\n...[truncated]"

// TruncateText bounds document text to maxChars to respect model context
// limits, appending a marker when text was cut.
func TruncateText(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	return text[:maxChars] + truncationMarker
}
