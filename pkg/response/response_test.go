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
)

func run(t *testing.T, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", h)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	return rr
}

func TestSuccess(t *testing.T) {
	rr := run(t, func(c *gin.Context) { Success(c, gin.H{"status": "ok"}) })

	assert.Equal(t, http.StatusOK, rr.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, map[string]interface{}{"status": "ok"}, body.Data)
}

func TestError_HidesDetailOutsideDebug(t *testing.T) {
	rr := run(t, func(c *gin.Context) {
		Error(c, http.StatusServiceUnavailable, "db-down", gin.H{"database": "down"}, errors.New("dial tcp: refused"))
	})

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "db-down", body.Message)
	assert.Equal(t, map[string]interface{}{"database": "down"}, body.Data)
	assert.Empty(t, body.Error)
}

func TestNotAllowed(t *testing.T) {
	rr := run(t, func(c *gin.Context) { NotAllowed(c, "You are not allowed here!!") })

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "You are not allowed here!!", rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
}

func TestRedirect(t *testing.T) {
	rr := run(t, func(c *gin.Context) { Redirect(c, "/room/1") })

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/room/1", rr.Header().Get("Location"))
}
