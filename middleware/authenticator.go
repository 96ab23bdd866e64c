package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"atelier-backend/common"
	"atelier-backend/domain"
)

type JwtProvider interface {
	Verify(tokenType domain.TokenType, tokenStr string) (*domain.JwtClaims, error)
}

// AuthResolver turns verified token claims into a request auth context.
type AuthResolver interface {
	ResolveAuthContext(ctx context.Context, claims *domain.JwtClaims) (*domain.AuthContext, error)
}

type headerData struct {
	AccessToken string
}

func extractHeaderData(c *gin.Context) *headerData {
	hData := &headerData{}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		hData.AccessToken = strings.TrimPrefix(authHeader, "Bearer ")
	}

	return hData
}

// Authenticator requires a valid access token and attaches the resolved
// auth context to the request.
func (m *middlewares) Authenticator() gin.HandlerFunc {
	return func(c *gin.Context) {
		headerData := extractHeaderData(c)

		claims, err := m.jwtProvider.Verify(domain.TokenTypeAccess, headerData.AccessToken)
		if err != nil {
			common.ResponseError(c, domain.ErrInvalidToken.WithWrap(err))
			return
		}

		actx, err := m.authResolver.ResolveAuthContext(c.Request.Context(), claims)
		if err != nil {
			common.ResponseError(c, err)
			return
		}

		c.Set(common.AuthContextKey, actx)
		c.Set(common.SessionIDContextKey, claims.Sid)
		c.Next()
	}
}

// OptionalAuthenticator resolves the auth context when a token is present
// but lets anonymous requests through. Used for public endpoints that
// behave differently for logged-in callers.
func (m *middlewares) OptionalAuthenticator() gin.HandlerFunc {
	return func(c *gin.Context) {
		headerData := extractHeaderData(c)
		if headerData.AccessToken == "" {
			c.Next()
			return
		}

		claims, err := m.jwtProvider.Verify(domain.TokenTypeAccess, headerData.AccessToken)
		if err != nil {
			common.ResponseError(c, domain.ErrInvalidToken.WithWrap(err))
			return
		}

		actx, err := m.authResolver.ResolveAuthContext(c.Request.Context(), claims)
		if err != nil {
			common.ResponseError(c, err)
			return
		}

		c.Set(common.AuthContextKey, actx)
		c.Set(common.SessionIDContextKey, claims.Sid)
		c.Next()
	}
}

// RequireStaff rejects customer and anonymous callers before the handler
// runs. Fine-grained permission checks still happen in the usecases.
func (m *middlewares) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		actx := common.GetAuthContext(c)
		if actx == nil {
			common.ResponseError(c, domain.ErrUnauthorized)
			return
		}
		if !actx.IsStaff() {
			common.ResponseForbidden(c, "Staff account required")
			return
		}
		c.Next()
	}
}
