package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-fleet-api/internal/middleware"
	"github.com/noah-isme/edu-fleet-api/internal/models"
	appErrors "github.com/noah-isme/edu-fleet-api/pkg/errors"
	"github.com/noah-isme/edu-fleet-api/pkg/response"
)

// principalFromContext returns the authenticated caller or writes a 401.
func principalFromContext(c *gin.Context) (models.Principal, bool) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Principal{}, false
	}
	return principal, true
}

// bindJSON decodes the request body into dest or writes a 400.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return fallback
}

func withCacheMeta(c *gin.Context, hit bool) map[string]interface{} {
	middleware.SetCacheHit(c, hit)
	return middleware.ExtractMeta(c)
}
