package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"atelier-backend/common"
	"atelier-backend/domain"
	"atelier-backend/middleware"
)

type AuthHandler struct {
	usecase     domain.AuthUsecase
	middlewares middleware.Middlewares
}

func NewAuthHandler(
	usecase domain.AuthUsecase,
	middlewares middleware.Middlewares,
) *AuthHandler {
	return &AuthHandler{
		usecase:     usecase,
		middlewares: middlewares,
	}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")

	// Public routes
	auth.POST("/staff/login", h.middlewares.AuthRateLimits(), h.LoginStaff)
	auth.POST("/customer/login", h.middlewares.AuthRateLimits(), h.LoginCustomer)

	// Refresh token with specific rate limiting
	auth.POST("/refresh-token", h.refreshTokenRateLimit(), h.RefreshToken)

	// Protected routes (authentication required)
	protected := auth.Group("")
	protected.Use(h.middlewares.Authenticator())
	{
		protected.POST("/logout", h.Logout)
	}
}

// refreshTokenRateLimit creates specific rate limiting for refresh token endpoint
func (h *AuthHandler) refreshTokenRateLimit() gin.HandlerFunc {
	return h.middlewares.RateLimitWithLogger(middleware.RateLimitConfig{
		WindowSize:  1 * time.Minute, // 1 minute window
		MaxRequests: 1,               // Max 1 refresh attempt per minute
		KeyPrefix:   "refresh_token:",
		KeyGenerator: func(c *gin.Context) string {
			// Rate limit by IP address
			return c.ClientIP()
		},
		HeaderRemainingRequests: "X-RateLimit-Remaining",
		HeaderRetryAfter:        "X-RateLimit-Retry-After",
		HeaderRateLimit:         "X-RateLimit-Limit",
	})
}

func (h *AuthHandler) LoginStaff(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}
	common.PopulateClientInfo(c, &req.IPAddress, &req.UserAgent)

	resp, err := h.usecase.LoginStaff(c.Request.Context(), &req)
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseOK(c, resp, "Login successful")
}

func (h *AuthHandler) LoginCustomer(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}
	common.PopulateClientInfo(c, &req.IPAddress, &req.UserAgent)

	resp, err := h.usecase.LoginCustomer(c.Request.Context(), &req)
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseOK(c, resp, "Login successful")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := common.GetSessionIDFromCtx(c)
	if sessionID == "" {
		common.ResponseError(c, domain.ErrUnauthorized)
		return
	}

	if err := h.usecase.Logout(c.Request.Context(), sessionID); err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseOK(c, true, "Logout successful")
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req domain.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}
	common.PopulateClientInfo(c, &req.IPAddress, &req.UserAgent)

	resp, err := h.usecase.RefreshToken(c.Request.Context(), &req)
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseOK(c, resp, "Token refreshed")
}
