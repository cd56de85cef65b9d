package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freightsnap/internal/middleware"
	"freightsnap/internal/port"
)

// UsageHandler reports free-tier usage for the usage badge.
type UsageHandler struct {
	meter      port.UsageMeter
	dailyLimit int
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(meter port.UsageMeter, dailyLimit int) *UsageHandler {
	return &UsageHandler{meter: meter, dailyLimit: dailyLimit}
}

// Usage handles GET /api/v1/usage
func (h *UsageHandler) Usage(c *gin.Context) {
	s, err := middleware.GetSession(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "SESSION_REQUIRED", "create a session first")
		return
	}

	RespondOK(c, gin.H{
		"daily_limit": h.dailyLimit,
		"remaining":   h.meter.Remaining(),
		"pro":         s.Pro(),
	})
}
