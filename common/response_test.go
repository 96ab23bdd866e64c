package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier-backend/domain"
)

func newResponseContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestResponseForbidden(t *testing.T) {
	c, w := newResponseContext(t)

	ResponseForbidden(c, "staff only")

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "PERMISSION_DENIED")
}

func TestResponseErrorRendersDetailedError(t *testing.T) {
	c, w := newResponseContext(t)

	ResponseError(c, domain.ErrOwnershipViolation.WithDetail("resource", "orders"))

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "OWNERSHIP_VIOLATION")
	assert.Contains(t, w.Body.String(), "orders")
}

func TestResponseErrorWrapsUnknownErrors(t *testing.T) {
	c, w := newResponseContext(t)

	ResponseError(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
}
