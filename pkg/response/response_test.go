package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/edu-fleet-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestErrorIncludesDetails(t *testing.T) {
	c, rec := newContext()
	Error(c, appErrors.WithDetails(appErrors.ErrFleetExhausted, map[string]interface{}{"skipped": []string{"e1"}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "FLEET_EXHAUSTED", body["error"]["code"])
	assert.NotNil(t, body["error"]["details"])
}

func TestErrorMasksInternal(t *testing.T) {
	c, rec := newContext()
	Error(c, errors.New("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation")
	assert.Len(t, c.Errors, 1)
}

func TestAttachment(t *testing.T) {
	c, rec := newContext()
	Attachment(c, "curriculum.csv", "text/csv", []byte("a,b\n"))

	assert.Equal(t, `attachment; filename="curriculum.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", rec.Body.String())
}
