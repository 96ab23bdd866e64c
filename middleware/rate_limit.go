package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"atelier-backend/common"
	"atelier-backend/pkg/cache"
	"atelier-backend/pkg/log"
)

// RateLimitConfig configures a fixed-window rate limiter backed by the cache.
type RateLimitConfig struct {
	WindowSize  time.Duration
	MaxRequests int64

	KeyPrefix    string
	KeyGenerator func(*gin.Context) string

	HeaderRemainingRequests string
	HeaderRetryAfter        string
	HeaderRateLimit         string

	SkipPaths     []string
	SkipCondition func(*gin.Context) bool

	OnLimitReached func(*gin.Context, RateLimitInfo)
}

// RateLimitInfo describes the limiter state for the current request.
type RateLimitInfo struct {
	Key        string
	Limit      int64
	Remaining  int64
	ResetTime  time.Time
	RetryAt    time.Time
	WindowSize time.Duration
}

// DefaultRateLimitConfig returns an IP-keyed limit of 100 requests per minute.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		WindowSize:              time.Minute,
		MaxRequests:             100,
		KeyPrefix:               "rate_limit:",
		KeyGenerator:            ipKeyGenerator,
		HeaderRemainingRequests: "X-RateLimit-Remaining",
		HeaderRetryAfter:        "X-RateLimit-Retry-After",
		HeaderRateLimit:         "X-RateLimit-Limit",
		SkipPaths:               []string{"/health", "/metrics"},
		OnLimitReached:          defaultOnLimitReached,
	}
}

// withDefaults fills any zero-valued field so a partially specified config
// still produces a working limiter.
func (cfg RateLimitConfig) withDefaults() RateLimitConfig {
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = ipKeyGenerator
	}
	if cfg.OnLimitReached == nil {
		cfg.OnLimitReached = defaultOnLimitReached
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "rate_limit:"
	}
	if cfg.WindowSize == 0 {
		cfg.WindowSize = time.Minute
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 100
	}
	return cfg
}

// RateLimit returns a rate limiting middleware.
func (m *middlewares) RateLimit(config ...RateLimitConfig) gin.HandlerFunc {
	cfg := DefaultRateLimitConfig()
	if len(config) > 0 {
		cfg = config[0].withDefaults()
	}

	skipPaths := make(map[string]bool, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skipPaths[path] = true
	}

	return func(c *gin.Context) {
		if skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}
		if cfg.SkipCondition != nil && cfg.SkipCondition(c) {
			c.Next()
			return
		}

		key := cfg.KeyPrefix + cfg.KeyGenerator(c)
		info, allowed := checkRateLimit(c.Request.Context(), m.cache, key, cfg)

		setRateLimitHeaders(c, cfg, info)

		if !allowed {
			cfg.OnLimitReached(c, info)
			return
		}

		c.Next()
	}
}

// RateLimitWithLogger behaves like RateLimit but logs every rejected request.
func (m *middlewares) RateLimitWithLogger(config ...RateLimitConfig) gin.HandlerFunc {
	cfg := DefaultRateLimitConfig()
	if len(config) > 0 {
		cfg = config[0].withDefaults()
	}

	next := cfg.OnLimitReached
	cfg.OnLimitReached = func(c *gin.Context, info RateLimitInfo) {
		if m.logger != nil {
			m.logger.Warn("rate limit exceeded",
				log.String("key", info.Key),
				log.Int64("limit", info.Limit),
				log.String("client_ip", c.ClientIP()),
				log.String("path", c.Request.URL.Path),
			)
		}
		next(c, info)
	}

	return m.RateLimit(cfg)
}

// AuthRateLimits throttles the login endpoints harder than the rest of the
// API. Credentials are guessable, session tokens are not.
func (m *middlewares) AuthRateLimits() gin.HandlerFunc {
	loginLimit := m.RateLimitWithLogger(RateLimitConfig{
		WindowSize:   5 * time.Minute,
		MaxRequests:  5,
		KeyPrefix:    "login:",
		KeyGenerator: ipKeyGenerator,
		OnLimitReached: func(c *gin.Context, info RateLimitInfo) {
			common.ResponseTooManyRequests(c, "Too many login attempts. Please try again later.", info.RetryAt)
		},
	})
	fallback := m.RateLimitWithLogger()

	return func(c *gin.Context) {
		switch c.Request.URL.Path {
		case "/api/v1/auth/staff/login", "/api/v1/auth/customer/login":
			loginLimit(c)
		default:
			fallback(c)
		}
	}
}

// APIRateLimits keys on the authenticated user so one noisy tenant cannot
// starve the others behind a shared IP.
func (m *middlewares) APIRateLimits() gin.HandlerFunc {
	return m.RateLimitWithLogger(RateLimitConfig{
		WindowSize:   time.Minute,
		MaxRequests:  60,
		KeyPrefix:    "api:",
		KeyGenerator: UserKeyGenerator,
		SkipPaths:    []string{"/health", "/metrics"},
	})
}

// AdminRateLimits is a tighter per-user limit for administrative surfaces
// such as role management.
func (m *middlewares) AdminRateLimits() gin.HandlerFunc {
	return m.RateLimitWithLogger(RateLimitConfig{
		WindowSize:   time.Minute,
		MaxRequests:  30,
		KeyPrefix:    "admin:",
		KeyGenerator: UserKeyGenerator,
	})
}

// checkRateLimit increments the window counter and reports whether the
// request fits under the limit. A cache failure fails open, degraded rate
// limiting beats a hard outage.
func checkRateLimit(ctx context.Context, cache cache.Client, key string, cfg RateLimitConfig) (RateLimitInfo, bool) {
	now := time.Now()
	resetTime := now.Truncate(cfg.WindowSize).Add(cfg.WindowSize)

	current, err := cache.Increment(ctx, key, 1, cfg.WindowSize)
	if err != nil {
		return RateLimitInfo{
			Key:        key,
			Limit:      cfg.MaxRequests,
			Remaining:  cfg.MaxRequests,
			ResetTime:  resetTime,
			WindowSize: cfg.WindowSize,
		}, true
	}

	remaining := cfg.MaxRequests - current
	if remaining < 0 {
		remaining = 0
	}

	info := RateLimitInfo{
		Key:        key,
		Limit:      cfg.MaxRequests,
		Remaining:  remaining,
		ResetTime:  resetTime,
		RetryAt:    resetTime,
		WindowSize: cfg.WindowSize,
	}

	return info, current <= cfg.MaxRequests
}

func setRateLimitHeaders(c *gin.Context, cfg RateLimitConfig, info RateLimitInfo) {
	if cfg.HeaderRateLimit != "" {
		c.Header(cfg.HeaderRateLimit, strconv.FormatInt(info.Limit, 10))
	}
	if cfg.HeaderRemainingRequests != "" {
		c.Header(cfg.HeaderRemainingRequests, strconv.FormatInt(info.Remaining, 10))
	}
	if cfg.HeaderRetryAfter != "" && info.Remaining == 0 && !info.RetryAt.IsZero() {
		if seconds := int64(time.Until(info.RetryAt).Seconds()); seconds > 0 {
			c.Header(cfg.HeaderRetryAfter, strconv.FormatInt(seconds, 10))
		}
	}
}

func ipKeyGenerator(c *gin.Context) string {
	return c.ClientIP()
}

// UserKeyGenerator keys on the authenticated user, falling back to the
// client IP for anonymous requests.
func UserKeyGenerator(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		return fmt.Sprintf("user:%v", userID)
	}
	return fmt.Sprintf("ip:%s", c.ClientIP())
}

func defaultOnLimitReached(c *gin.Context, info RateLimitInfo) {
	message := fmt.Sprintf("Too many requests. Limit %d requests per %v", info.Limit, info.WindowSize)
	common.ResponseTooManyRequests(c, message, info.RetryAt)
}
