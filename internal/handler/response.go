package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"freightsnap/internal/domain"
	"freightsnap/internal/extractor"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var rlErr *extractor.RateLimitError
	if errors.As(err, &rlErr) {
		return http.StatusServiceUnavailable, "AI_SERVICE_BUSY", "AI service is rate limited; try again shortly"
	}

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "SESSION_NOT_FOUND", "session expired or does not exist"
	case errors.Is(err, domain.ErrFileNotFound):
		return http.StatusNotFound, "FILE_NOT_FOUND", "file not found in this session"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, csv, xls, xlsx"
	case errors.Is(err, domain.ErrMissingFile):
		return http.StatusBadRequest, "MISSING_FILE", "file field is required"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrRowIndexOutOfRange):
		return http.StatusBadRequest, "ROW_INDEX_OUT_OF_RANGE", "row index out of range"
	case errors.Is(err, domain.ErrUnknownColumn):
		return http.StatusBadRequest, "UNKNOWN_COLUMN", "field is not a column of the extracted data"
	case errors.Is(err, domain.ErrNoData):
		return http.StatusBadRequest, "NO_DATA", "no extracted data in this session"
	case errors.Is(err, domain.ErrDailyLimitReached):
		return http.StatusTooManyRequests, "DAILY_LIMIT_REACHED", "daily free limit reached; upgrade for unlimited"
	case errors.Is(err, domain.ErrUploadQueueFull):
		return http.StatusTooManyRequests, "UPLOAD_QUEUE_FULL", "too many files queued; wait for processing to finish"
	case errors.Is(err, domain.ErrProRequired):
		return http.StatusPaymentRequired, "PRO_REQUIRED", "this export format requires a Pro license"
	case errors.Is(err, domain.ErrInvalidLicense):
		return http.StatusBadRequest, "INVALID_LICENSE", "license key is invalid or no longer active"
	case errors.Is(err, domain.ErrUnsupportedExportFmt):
		return http.StatusBadRequest, "UNSUPPORTED_EXPORT_FORMAT", "unsupported export format; allowed: xlsx, csv, quickbooks, xero"
	case errors.Is(err, domain.ErrSpreadsheetParse):
		return http.StatusUnprocessableEntity, "SPREADSHEET_PARSE_FAILED", "failed to parse spreadsheet file"
	case errors.Is(err, domain.ErrPDFRead):
		return http.StatusUnprocessableEntity, "PDF_READ_FAILED", "failed to read PDF file"
	case errors.Is(err, domain.ErrPDFNoText):
		return http.StatusUnprocessableEntity, "PDF_NO_TEXT", "could not extract text from PDF"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
