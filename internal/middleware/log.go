package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"rentexpress/internal/models"

	"github.com/gin-gonic/gin"
)

const maxAuditBody = 2000

// AuditRecorder persists one audit entry with its plaintext action.
type AuditRecorder interface {
	RecordAudit(ctx context.Context, entry models.AuditLog, action string) error
}

// Audit records every mutating request made by an authenticated actor.
// Bodies of password and login requests are never recorded.
func Audit(rec AuditRecorder, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody+1))
			rest := c.Request.Body
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), rest))
		}

		c.Next()

		a, ok := CurrentActor(c)
		if !ok {
			return
		}
		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(body) > 0 && len(body) <= maxAuditBody && !sensitive(path) {
			action += " " + string(body)
		}

		entry := models.AuditLog{
			ActorID:   a.ID,
			Role:      a.Role,
			Method:    c.Request.Method,
			Path:      path,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if err := rec.RecordAudit(context.WithoutCancel(c.Request.Context()), entry, action); err != nil {
			logger.ErrorContext(c.Request.Context(), "record audit log", "actor_id", a.ID, "path", path, "err", err)
		}
	}
}

func sensitive(path string) bool {
	switch path {
	case "/api/profile/password", "/api/auth/login", "/api/auth/register":
		return true
	}
	return false
}
