// audit.go provides Gin middleware that records failed API requests to the
// audit trail so admins can spot probing and broken clients.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/vitrine-app/vitrine-backend/internal/audit"
)

// auditedKey marks a request whose outcome the handler already wrote to the
// audit trail, so the generic failed-request record is suppressed and each
// outcome yields exactly one record.
const auditedKey = "audit_recorded"

// MarkAudited tells FailedRequestAudit that the current request's outcome has
// already been recorded by the handler.
func MarkAudited(c *gin.Context) {
	c.Set(auditedKey, true)
}

// FailedRequestAudit returns middleware that writes one audit record for
// every request finishing with a 4xx or 5xx status. When enabled is false the
// middleware is a pass-through.
func FailedRequestAudit(auditor *audit.Logger, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if !enabled || auditor == nil {
			return
		}
		if c.Request.Method == "OPTIONS" {
			return
		}
		if c.GetBool(auditedKey) {
			return
		}

		status := c.Writer.Status()
		if status < 400 {
			return
		}

		// Route template, not the raw URL, so record IDs and file names
		// never leak into the audit message.
		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		errMsg := ""
		if len(c.Errors) > 0 {
			errMsg = c.Errors.Last().Error()
		}

		auditor.LogAPIError(audit.APIErrorEvent{
			Method:     c.Request.Method,
			Path:       path,
			StatusCode: status,
			ActorID:    CallerID(c),
			Origin:     c.ClientIP(),
			Error:      errMsg,
		})
	}
}
