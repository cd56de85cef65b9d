package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"freightsnap/internal/config"
	"freightsnap/internal/domain"
	"freightsnap/internal/middleware"
)

// FileHandler handles file upload and removal endpoints.
type FileHandler struct {
	cfg config.SessionConfig
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(cfg config.SessionConfig) *FileHandler {
	return &FileHandler{cfg: cfg}
}

// Upload handles POST /api/v1/files/upload
func (h *FileHandler) Upload(c *gin.Context) {
	s, err := middleware.GetSession(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "SESSION_REQUIRED", "create a session first")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		HandleError(c, domain.ErrMissingFile)
		return
	}
	defer func() { _ = file.Close() }()

	maxBytes := h.cfg.MaxFileSizeMB << 20
	if header.Size > maxBytes {
		HandleError(c, domain.ErrFileTooLarge)
		return
	}

	// The declared size can lie; cap the actual read too.
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UPLOAD_READ_FAILED", "could not read uploaded file")
		return
	}
	if int64(len(data)) > maxBytes {
		HandleError(c, domain.ErrFileTooLarge)
		return
	}

	meta, err := s.Enqueue(header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, meta)
}

// Delete handles DELETE /api/v1/files/:id
func (h *FileHandler) Delete(c *gin.Context) {
	s, err := middleware.GetSession(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "SESSION_REQUIRED", "create a session first")
		return
	}

	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FILE_ID", "file id must be a UUID")
		return
	}

	if err := s.RemoveFile(fileID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"removed": fileID})
}
