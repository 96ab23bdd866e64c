package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier-backend/pkg/cache"
	"atelier-backend/pkg/log"
)

func newTestMiddlewares(t *testing.T) Middlewares {
	t.Helper()
	gin.SetMode(gin.TestMode)

	memory := cache.NewMemoryCache(&cache.Config{DefaultTTL: time.Minute}, nil)
	t.Cleanup(func() { _ = memory.Close() })

	return NewMiddlewares(Dependencies{
		Cache:  memory,
		Logger: log.NewNopLogger(),
	})
}

func performRequest(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	m := newTestMiddlewares(t)

	r := gin.New()
	r.Use(m.RateLimit(RateLimitConfig{
		WindowSize:              time.Minute,
		MaxRequests:             2,
		KeyPrefix:               "test:",
		HeaderRemainingRequests: "X-RateLimit-Remaining",
		HeaderRetryAfter:        "X-RateLimit-Retry-After",
		HeaderRateLimit:         "X-RateLimit-Limit",
	}))
	r.GET("/orders", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := performRequest(r, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := performRequest(r, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := performRequest(r, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Contains(t, third.Body.String(), "TOO_MANY_REQUESTS")
}

func TestRateLimitSkipsConfiguredPaths(t *testing.T) {
	m := newTestMiddlewares(t)

	r := gin.New()
	r.Use(m.RateLimit(RateLimitConfig{
		WindowSize:  time.Minute,
		MaxRequests: 1,
		SkipPaths:   []string{"/health"},
	}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := performRequest(r, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestAuthRateLimitsThrottlesLogin(t *testing.T) {
	m := newTestMiddlewares(t)

	r := gin.New()
	r.POST("/api/v1/auth/staff/login", m.AuthRateLimits(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 5; i++ {
		w := performRequest(r, http.MethodPost, "/api/v1/auth/staff/login", nil)
		require.Equal(t, http.StatusOK, w.Code, "attempt %d should pass", i+1)
	}

	w := performRequest(r, http.MethodPost, "/api/v1/auth/staff/login", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many login attempts")
}

func TestUserKeyGeneratorFallsBackToIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Equal(t, "ip:192.0.2.1", UserKeyGenerator(c))

	c.Set("user_id", "u42")
	assert.Equal(t, "user:u42", UserKeyGenerator(c))
}

func TestCORSPreflight(t *testing.T) {
	m := newTestMiddlewares(t)

	r := gin.New()
	r.Use(m.CORS())
	r.GET("/orders", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(r, http.MethodOptions, "/orders", map[string]string{
		"Origin": "https://app.example.com",
	})

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSWithLoggerRestrictsOrigins(t *testing.T) {
	m := newTestMiddlewares(t)

	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://app.example.com"}

	r := gin.New()
	r.Use(m.CORSWithLogger(cfg))
	r.GET("/orders", func(c *gin.Context) { c.Status(http.StatusOK) })

	allowed := performRequest(r, http.MethodGet, "/orders", map[string]string{
		"Origin": "https://app.example.com",
	})
	assert.Equal(t, "https://app.example.com", allowed.Header().Get("Access-Control-Allow-Origin"))

	denied := performRequest(r, http.MethodGet, "/orders", map[string]string{
		"Origin": "https://evil.example.com",
	})
	assert.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDMiddleware(t *testing.T) {
	m := newTestMiddlewares(t)

	r := gin.New()
	r.Use(m.RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	generated := performRequest(r, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, generated.Code)
	assert.NotEmpty(t, generated.Header().Get("X-Request-ID"))
	assert.Equal(t, generated.Header().Get("X-Request-ID"), generated.Body.String())

	supplied := performRequest(r, http.MethodGet, "/", map[string]string{
		"X-Request-ID": "req-123",
	})
	assert.Equal(t, "req-123", supplied.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-123", supplied.Body.String())
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	m := newTestMiddlewares(t)

	r := gin.New()
	r.Use(m.LoggingMiddleware(LoggerConfig{SkipPaths: []string{"/health"}}))
	r.GET("/orders", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	w := performRequest(r, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
}
