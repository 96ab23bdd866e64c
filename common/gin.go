package common

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"

	"atelier-backend/domain"
)

const (
	AuthContextKey      = "auth_context"
	SessionIDContextKey = "session_id"
)

type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// ExtractClientInfo extracts client information from the Gin context
func ExtractClientInfo(c *gin.Context) *ClientInfo {
	return &ClientInfo{
		UserAgent: c.GetHeader("User-Agent"),
		IPAddress: GetClientIP(c),
	}
}

// GetClientIP gets the real client IP address
func GetClientIP(c *gin.Context) string {
	// Check X-Forwarded-For header (for proxies)
	xff := c.GetHeader("X-Forwarded-For")
	if xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if ip != "" && net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	// Check X-Real-IP header
	xri := c.GetHeader("X-Real-IP")
	if xri != "" && net.ParseIP(xri) != nil {
		return xri
	}

	// Fallback to remote address
	remoteIP, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return remoteIP
}

// PopulateClientInfo automatically fills empty client info fields with extracted values
func PopulateClientInfo(c *gin.Context, ipAddress, userAgent *string) {
	clientInfo := ExtractClientInfo(c)

	if ipAddress != nil && *ipAddress == "" {
		*ipAddress = clientInfo.IPAddress
	}
	if userAgent != nil && *userAgent == "" {
		*userAgent = clientInfo.UserAgent
	}
}

// GetAuthContext returns the caller's auth context set by the authenticator
// middleware, or nil on unauthenticated routes.
func GetAuthContext(c *gin.Context) *domain.AuthContext {
	if v, ok := c.Get(AuthContextKey); ok {
		if actx, ok := v.(*domain.AuthContext); ok {
			return actx
		}
	}
	return nil
}

func GetSessionIDFromCtx(c *gin.Context) string {
	if v, ok := c.Get(SessionIDContextKey); ok {
		if sID, ok := v.(string); ok {
			return sID
		}
	}
	return ""
}
