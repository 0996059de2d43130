package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-fleet-api/internal/middleware"
	"github.com/noah-isme/edu-fleet-api/internal/models"
	"github.com/noah-isme/edu-fleet-api/pkg/response"
)

// AuthHandler exposes the caller identity carried by the access token.
type AuthHandler struct{}

// NewAuthHandler creates a new handler.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type meResponse struct {
	models.Principal
	Email     string `json:"email,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

// Me godoc
// @Summary Current caller
// @Description Returns the identity resolved from the bearer token.
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	resp := meResponse{Principal: principal}
	if value, exists := c.Get(middleware.ContextUserKey); exists {
		if claims, ok := value.(*models.JWTClaims); ok {
			resp.Email = claims.Email
			if claims.ExpiresAt != nil {
				resp.ExpiresAt = claims.ExpiresAt.Unix()
			}
		}
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
