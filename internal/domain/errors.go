package domain

import "errors"

var (
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrSpreadsheetParse     = errors.New("failed to parse spreadsheet file")
	ErrPDFRead              = errors.New("failed to read pdf file")
	ErrPDFNoText            = errors.New("could not extract text from pdf")
	ErrSessionNotFound      = errors.New("session not found")
	ErrFileNotFound         = errors.New("file not found in session")
	ErrRowIndexOutOfRange   = errors.New("row index out of range")
	ErrUnknownColumn        = errors.New("unknown column")
	ErrNoData               = errors.New("no extracted data in session")
	ErrDailyLimitReached    = errors.New("daily file limit reached")
	ErrProRequired          = errors.New("pro license required")
	ErrInvalidLicense       = errors.New("invalid license key")
	ErrUnsupportedExportFmt = errors.New("unsupported export format")
	ErrMissingFile          = errors.New("no file provided")
	ErrUploadQueueFull      = errors.New("upload queue is full")
	ErrFileTooLarge         = errors.New("file exceeds the maximum allowed size")
)
