package middleware

import (
	"github.com/gin-gonic/gin"

	"atelier-backend/pkg/cache"
	"atelier-backend/pkg/log"
)

// Middlewares defines all available middleware methods
type Middlewares interface {
	// Rate limiting middlewares
	RateLimit(config ...RateLimitConfig) gin.HandlerFunc
	RateLimitWithLogger(config ...RateLimitConfig) gin.HandlerFunc
	AuthRateLimits() gin.HandlerFunc
	APIRateLimits() gin.HandlerFunc
	AdminRateLimits() gin.HandlerFunc

	// Logging middlewares
	LoggingMiddleware(config ...LoggerConfig) gin.HandlerFunc
	DetailedLoggingMiddleware(config LoggerConfig) gin.HandlerFunc
	RequestIDMiddleware() gin.HandlerFunc

	// CORS middlewares
	CORS(config ...CORSConfig) gin.HandlerFunc
	CORSWithLogger(config ...CORSConfig) gin.HandlerFunc

	// Authentication middlewares
	Authenticator() gin.HandlerFunc
	OptionalAuthenticator() gin.HandlerFunc
	RequireStaff() gin.HandlerFunc
}

// Dependencies holds all dependencies needed by middlewares
type Dependencies struct {
	Cache        cache.Client
	Logger       log.Logger
	JwtProvider  JwtProvider
	AuthResolver AuthResolver
}

// NewMiddlewares creates a new instance of middlewares with dependencies
func NewMiddlewares(deps Dependencies) Middlewares {
	return &middlewares{
		cache:        deps.Cache,
		logger:       deps.Logger,
		jwtProvider:  deps.JwtProvider,
		authResolver: deps.AuthResolver,
	}
}

// middlewares is the concrete implementation of Middlewares interface
type middlewares struct {
	cache        cache.Client
	logger       log.Logger
	jwtProvider  JwtProvider
	authResolver AuthResolver
}
