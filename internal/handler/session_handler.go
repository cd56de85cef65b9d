package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"freightsnap/internal/config"
	"freightsnap/internal/middleware"
	"freightsnap/internal/session"
)

// SessionHandler handles session lifecycle and row editing endpoints.
type SessionHandler struct {
	manager *session.Manager
	cfg     config.SessionConfig
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(manager *session.Manager, cfg config.SessionConfig) *SessionHandler {
	return &SessionHandler{manager: manager, cfg: cfg}
}

// Create handles POST /api/v1/session
func (h *SessionHandler) Create(c *gin.Context) {
	s := h.manager.Create()

	// Cookie fallback for plain navigation requests (export download link).
	c.SetCookie(middleware.SessionCookie, s.ID.String(), int(h.cfg.TTL.Seconds()), "/", "", false, true)

	RespondCreated(c, gin.H{"session_id": s.ID})
}

// Data handles GET /api/v1/session/data
func (h *SessionHandler) Data(c *gin.Context) {
	s, err := middleware.GetSession(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "SESSION_REQUIRED", "create a session first")
		return
	}

	doc, files := s.Snapshot()
	RespondOK(c, gin.H{"document": doc, "files": files})
}

// EditRow handles PATCH /api/v1/session/rows/:index
func (h *SessionHandler) EditRow(c *gin.Context) {
	s, err := middleware.GetSession(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "SESSION_REQUIRED", "create a session first")
		return
	}

	rowIdx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ROW_INDEX", "row index must be an integer")
		return
	}

	var req struct {
		Field string `json:"field" binding:"required"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "field is required")
		return
	}

	if err := s.EditCell(rowIdx, req.Field, req.Value); err != nil {
		HandleError(c, err)
		return
	}

	doc, _ := s.Snapshot()
	RespondOK(c, gin.H{"document": doc})
}

// DeleteRow handles DELETE /api/v1/session/rows/:index
func (h *SessionHandler) DeleteRow(c *gin.Context) {
	s, err := middleware.GetSession(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "SESSION_REQUIRED", "create a session first")
		return
	}

	rowIdx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ROW_INDEX", "row index must be an integer")
		return
	}

	if err := s.DeleteRow(rowIdx); err != nil {
		HandleError(c, err)
		return
	}

	doc, _ := s.Snapshot()
	RespondOK(c, gin.H{"document": doc})
}

// Clear handles POST /api/v1/session/clear
func (h *SessionHandler) Clear(c *gin.Context) {
	s, err := middleware.GetSession(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "SESSION_REQUIRED", "create a session first")
		return
	}

	s.Clear()
	RespondOK(c, gin.H{"cleared": true})
}

// End handles DELETE /api/v1/session
func (h *SessionHandler) End(c *gin.Context) {
	s, err := middleware.GetSession(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "SESSION_REQUIRED", "create a session first")
		return
	}

	h.manager.Destroy(s.ID)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	RespondOK(c, gin.H{"ended": true})
}
