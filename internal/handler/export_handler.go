package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"freightsnap/internal/domain"
	"freightsnap/internal/export"
	"freightsnap/internal/middleware"
)

// ExportHandler handles the export download endpoint.
type ExportHandler struct{}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// Export handles GET /api/v1/session/export?format=xlsx|csv|quickbooks|xero
func (h *ExportHandler) Export(c *gin.Context) {
	s, err := middleware.GetSession(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "SESSION_REQUIRED", "create a session first")
		return
	}

	format := domain.ExportFormat(strings.ToLower(c.DefaultQuery("format", "xlsx")))

	res, err := export.Build(s.Document(), format, s.Pro())
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, res.Filename))
	c.Data(http.StatusOK, res.ContentType, res.Data)
}
