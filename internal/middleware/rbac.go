package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-fleet-api/internal/models"
	appErrors "github.com/noah-isme/edu-fleet-api/pkg/errors"
	"github.com/noah-isme/edu-fleet-api/pkg/response"
)

// RequireRoles only lets callers holding one of roles through.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !principal.HasRole(roles...) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Insufficient permissions"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// TeacherOrAdmin guards lesson plan and subject mutations.
func TeacherOrAdmin() gin.HandlerFunc {
	return RequireRoles(models.RoleTeacher, models.RoleAdmin)
}

// AdminOnly guards inventory administration.
func AdminOnly() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin)
}

// ManagerTeacherOrAdmin guards maintenance workflows and equipment requests.
func ManagerTeacherOrAdmin() gin.HandlerFunc {
	return RequireRoles(models.RoleManager, models.RoleTeacher, models.RoleAdmin)
}

// ManagerOrAdmin guards reservation approval.
func ManagerOrAdmin() gin.HandlerFunc {
	return RequireRoles(models.RoleManager, models.RoleAdmin)
}
