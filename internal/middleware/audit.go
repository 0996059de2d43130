package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-fleet-api/internal/models"
)

type auditRecorder interface {
	Record(entry models.AuditLog)
}

// Audit queues an audit record for every successful mutating request on resource.
func Audit(recorder auditRecorder, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if recorder == nil || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		action, ok := auditAction(c.Request.Method)
		if !ok {
			return
		}

		entry := models.AuditLog{
			Action:    action,
			Resource:  resource,
			Path:      c.FullPath(),
			Status:    c.Writer.Status(),
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			CreatedAt: start,
		}
		if principal, ok := PrincipalFromContext(c); ok {
			userID := principal.UserID
			entry.UserID = &userID
		}
		if id := c.Param("id"); id != "" {
			entry.ResourceID = &id
		}
		entry.NewValues, _ = json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"latency_ms": time.Since(start).Milliseconds(),
		})

		recorder.Record(entry)
	}
}

func auditAction(method string) (string, bool) {
	switch method {
	case http.MethodPost:
		return models.AuditActionCreate, true
	case http.MethodPut, http.MethodPatch:
		return models.AuditActionUpdate, true
	case http.MethodDelete:
		return models.AuditActionDelete, true
	}
	return "", false
}
