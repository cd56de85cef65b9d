// Package pipeline is the extraction entry point: it inspects an uploaded
// file and dispatches it down the spreadsheet-direct path or the PDF
// text-plus-model path, returning the common ExtractedDocument schema.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"freightsnap/internal/domain"
	"freightsnap/internal/extractor"
	"freightsnap/internal/port"
	"freightsnap/internal/spreadsheet"
	"freightsnap/internal/tabular"
)

// minTextChars is the minimum amount of trimmed text a PDF must yield
// before the model is invoked; below this the document is treated as
// having no extractable text (scanned or image-only).
const minTextChars = 10

// Router dispatches uploads to an extraction path by file type.
type Router struct {
	textExtractor port.TextExtractor
	normalizer    port.Normalizer
}

// NewRouter creates a Router over the given text extractor and normalizer.
func NewRouter(textExtractor port.TextExtractor, normalizer port.Normalizer) *Router {
	return &Router{textExtractor: textExtractor, normalizer: normalizer}
}

// ProcessUpload converts one uploaded file into an ExtractedDocument.
// The extension is checked first, case-insensitive; the MIME type is a
// secondary signal for PDFs only. Every failure maps to a domain sentinel
// or a typed extraction error — nothing escapes uncaught. Failed files are
// isolated: the caller's accumulated data is never touched on error.
//
// progress, if non-nil, is invoked on status transitions: the file enters
// "extracting" only when the model call begins, so spreadsheets go
// straight from reading to a terminal state.
//
// The router performs no retries. A spreadsheet decode failure is
// deterministic, and a failed model call is expensive to repeat blindly;
// provider-level availability fallback lives in the normalizer chain.
func (r *Router) ProcessUpload(ctx context.Context, fileName, mimeType string, data []byte, progress func(domain.FileStatus)) (*domain.ExtractedDocument, error) {
	fileType, ok := domain.DetectFileType(fileName, mimeType)
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	if fileType.IsSpreadsheet() {
		grid, err := spreadsheet.Decode(fileType, data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSpreadsheetParse, err)
		}
		return tabular.Reconstruct(grid, fileName), nil
	}

	// PDF path: extract text, then normalize via the model.
	text, err := r.textExtractor.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPDFRead, err)
	}
	if len(strings.TrimSpace(text)) < minTextChars {
		return nil, domain.ErrPDFNoText
	}

	if progress != nil {
		progress(domain.FileStatusExtracting)
	}
	return r.normalizer.Normalize(ctx, text, fileName)
}

// UserMessage converts an extraction failure into the message shown next
// to the failed file. Classified details stay in the error chain for logs.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return "Unsupported file type"
	case errors.Is(err, domain.ErrSpreadsheetParse):
		return "Failed to parse spreadsheet file."
	case errors.Is(err, domain.ErrPDFRead):
		return "Failed to read PDF file."
	case errors.Is(err, domain.ErrPDFNoText):
		return "Could not extract text from PDF."
	case errors.Is(err, domain.ErrDailyLimitReached):
		return "Daily limit reached. Upgrade for unlimited."
	case errors.Is(err, context.Canceled):
		return "Processing canceled"
	}

	var rlErr *extractor.RateLimitError
	if errors.As(err, &rlErr) {
		return "AI service is busy. Please try again shortly."
	}

	var exErr *extractor.ExtractionError
	if errors.As(err, &exErr) {
		switch exErr.Kind {
		case extractor.KindBadShape:
			return "Invalid AI response format"
		case extractor.KindBadJSON:
			return "Failed to parse AI response"
		default:
			return "AI extraction failed. Please try again."
		}
	}

	return "Failed to process file"
}
