package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-fleet-api/internal/models"
	"github.com/noah-isme/edu-fleet-api/internal/service"
	appErrors "github.com/noah-isme/edu-fleet-api/pkg/errors"
	"github.com/noah-isme/edu-fleet-api/pkg/response"
)

// Context keys populated by JWT.
const (
	ContextUserKey      = "currentUser"
	ContextPrincipalKey = "principal"
)

// JWT protects routes by requiring a valid access token. The caller is exposed as a
// models.Principal under ContextPrincipalKey.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "Access token required"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextPrincipalKey, claims.Principal())
		c.Next()
	}
}

// PrincipalFromContext returns the caller resolved by JWT.
func PrincipalFromContext(c *gin.Context) (models.Principal, bool) {
	value, ok := c.Get(ContextPrincipalKey)
	if !ok {
		return models.Principal{}, false
	}
	principal, ok := value.(models.Principal)
	return principal, ok
}
