package middelware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prcontacts-backend/models"
	"prcontacts-backend/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(m *RateLimitMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auth/login", m.Limit(), func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func hit(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = ip + ":4321"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewRateLimitMiddleware(60, 2, logger.NewNopLogger())
	m.now = func() time.Time { return clock }
	router := newLimitedRouter(m)

	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)

	w := hit(router, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "RateLimitError", resp.Error.Type)

	// other clients have their own budget
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.2").Code)

	// one token refills per second
	clock = clock.Add(time.Second)
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1").Code)
}

func TestRateLimitMiddlewareForgetsIdleClients(t *testing.T) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewRateLimitMiddleware(60, 1, logger.NewNopLogger())
	m.now = func() time.Time { return clock }
	router := newLimitedRouter(m)

	hit(router, "10.0.0.1")
	hit(router, "10.0.0.2")
	assert.Equal(t, 2, m.Visitors())

	clock = clock.Add(visitorIdleTimeout + time.Minute)
	hit(router, "10.0.0.3")
	assert.Equal(t, 1, m.Visitors())
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	m := NewRateLimitMiddleware(0, 0, logger.NewNopLogger())
	router := newLimitedRouter(m)

	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
	}
	assert.Equal(t, 0, m.Visitors())
}
