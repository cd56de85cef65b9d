package domain

import (
	"path/filepath"
	"strings"
)

// FileType represents the accepted upload formats.
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLS  FileType = "xls"
	FileTypeXLSX FileType = "xlsx"
	FileTypePDF  FileType = "pdf"
)

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"csv":  FileTypeCSV,
	"xls":  FileTypeXLS,
	"xlsx": FileTypeXLSX,
	"pdf":  FileTypePDF,
}

// IsSpreadsheet reports whether the file type takes the direct
// (non-model) extraction path.
func (t FileType) IsSpreadsheet() bool {
	return t == FileTypeCSV || t == FileTypeXLS || t == FileTypeXLSX
}

// DetectFileType resolves a FileType from a file name and declared MIME
// type. The extension is checked first; the MIME type is only a secondary
// signal for PDFs with a missing or unhelpful extension.
func DetectFileType(fileName, mimeType string) (FileType, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if t, ok := AllowedExtensions[ext]; ok {
		return t, true
	}
	if mimeType == "application/pdf" {
		return FileTypePDF, true
	}
	return "", false
}

// FileStatus represents the lifecycle of an uploaded file within a
// session. Terminal states are done and error; the only way out of a
// terminal state is removing the file from the session.
type FileStatus string

const (
	FileStatusPending    FileStatus = "pending"
	FileStatusReading    FileStatus = "reading"
	FileStatusExtracting FileStatus = "extracting"
	FileStatusDone       FileStatus = "done"
	FileStatusError      FileStatus = "error"
)

// Terminal reports whether the status is done or error.
func (s FileStatus) Terminal() bool {
	return s == FileStatusDone || s == FileStatusError
}

// ExportFormat identifies a downloadable export layout.
type ExportFormat string

const (
	ExportFormatXLSX       ExportFormat = "xlsx"
	ExportFormatCSV        ExportFormat = "csv"
	ExportFormatQuickBooks ExportFormat = "quickbooks"
	ExportFormatXero       ExportFormat = "xero"
)

// ProOnly reports whether the format requires an active Pro license.
func (f ExportFormat) ProOnly() bool {
	return f == ExportFormatQuickBooks || f == ExportFormatXero
}
