package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"freightsnap/internal/session"
)

// SessionHeader carries the session id; SPA clients send it on every
// data-plane request. A cookie fallback covers plain browser downloads
// (the export link), where custom headers are not available.
const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "fs_session"

	sessionKey = "session"
)

// Session resolves the caller's session from the X-Session-ID header or
// the fs_session cookie and stores it in the request context. Requests
// without a live session are rejected.
func Session(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(SessionHeader)
		if raw == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				raw = cookie
			}
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "SESSION_REQUIRED", "message": "create a session first"},
			})
			return
		}

		s, err := manager.Get(id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   gin.H{"code": "SESSION_NOT_FOUND", "message": "session expired or does not exist"},
			})
			return
		}

		c.Set(sessionKey, s)
		c.Next()
	}
}

// GetSession returns the session stored by the Session middleware.
func GetSession(c *gin.Context) (*session.Session, error) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, errors.New("session not found in context")
	}
	s, ok := v.(*session.Session)
	if !ok {
		return nil, errors.New("invalid session in context")
	}
	return s, nil
}
