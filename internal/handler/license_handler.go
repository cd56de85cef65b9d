package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freightsnap/internal/middleware"
	"freightsnap/internal/port"
)

// LicenseHandler handles license activation.
type LicenseHandler struct {
	verifier port.LicenseVerifier
}

// NewLicenseHandler creates a new LicenseHandler.
func NewLicenseHandler(verifier port.LicenseVerifier) *LicenseHandler {
	return &LicenseHandler{verifier: verifier}
}

// Activate handles POST /api/v1/license/activate
func (h *LicenseHandler) Activate(c *gin.Context) {
	s, err := middleware.GetSession(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "SESSION_REQUIRED", "create a session first")
		return
	}

	var req struct {
		LicenseKey string `json:"license_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "license_key is required")
		return
	}

	uses, err := h.verifier.Verify(c.Request.Context(), req.LicenseKey)
	if err != nil {
		HandleError(c, err)
		return
	}

	s.SetPro(true)
	RespondOK(c, gin.H{"pro": true, "uses": uses})
}
