package domain

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

/****************************
*        Auth errors        *
****************************/
var (
	ErrInvalidCredentials = &DetailedError{
		IDField:         "INVALID_CREDENTIALS",
		StatusDescField: http.StatusText(http.StatusUnauthorized),
		ErrorField:      "Invalid email or password",
		StatusCodeField: http.StatusUnauthorized,
	}
	ErrInvalidToken = &DetailedError{
		IDField:         "INVALID_TOKEN",
		StatusDescField: http.StatusText(http.StatusUnauthorized),
		ErrorField:      "Invalid or expired token",
		StatusCodeField: http.StatusUnauthorized,
	}
	ErrSessionExpired = &DetailedError{
		IDField:         "SESSION_EXPIRED",
		StatusDescField: http.StatusText(http.StatusUnauthorized),
		ErrorField:      "Session has expired",
		StatusCodeField: http.StatusUnauthorized,
	}
	ErrSessionFindFailed = &DetailedError{
		IDField:         "SESSION_FIND_FAILED",
		StatusDescField: http.StatusText(http.StatusInternalServerError),
		ErrorField:      "Failed to find session",
		StatusCodeField: http.StatusInternalServerError,
	}
	ErrTokenExpired = &DetailedError{
		IDField:         "TOKEN_EXPIRED",
		StatusDescField: http.StatusText(http.StatusUnauthorized),
		ErrorField:      "Token has expired",
		StatusCodeField: http.StatusUnauthorized,
	}
	ErrCannotCreateSession = &DetailedError{
		IDField:         "CANNOT_CREATE_SESSION",
		StatusDescField: http.StatusText(http.StatusInternalServerError),
		ErrorField:      "Failed to create session",
		StatusCodeField: http.StatusInternalServerError,
	}
)

/***************************************
*       Auth entities and types       *
***************************************/

type TokenType int

const (
	TokenTypeAccess TokenType = iota
	TokenTypeRefresh
)

func (t TokenType) String() string {
	switch t {
	case TokenTypeAccess:
		return "access"
	case TokenTypeRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// JwtClaims carries the actor identity only. Permissions are resolved fresh
// on every request so role edits apply without re-login.
type JwtClaims struct {
	Sub string `json:"sub"` // User or customer ID
	Sid string `json:"sid"` // Session ID
	Typ string `json:"typ"` // Actor type, staff or customer
	jwt.RegisteredClaims
}

func (c *JwtClaims) ActorType() UserType {
	return UserType(c.Typ)
}

// Session is a login session for either actor type.
type Session struct {
	SQLModel
	ActorID        string `json:"actor_id" gorm:"type:varchar(36);not null;index"`
	ActorType      string `json:"actor_type" gorm:"type:varchar(20);not null"`
	RefreshToken   string `json:"refresh_token" gorm:"type:varchar(64);index"`
	IPAddress      string `json:"ip_address" gorm:"type:varchar(45)"`
	UserAgent      string `json:"user_agent" gorm:"type:varchar(255)"`
	Active         bool   `json:"active" gorm:"default:true"`
	ExpiresAt      int64  `json:"expires_at" gorm:"default:0"`
	LastActivityAt int64  `json:"last_activity_at" gorm:"default:0"`
}

func (s *Session) IsActive() bool {
	return s.Active && (s.ExpiresAt == 0 || s.ExpiresAt > time.Now().UnixMilli())
}

type SessionFilter struct {
	ID           *string `json:"id,omitempty"`
	ActorID      *string `json:"actor_id,omitempty"`
	ActorType    *string `json:"actor_type,omitempty"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	Active       *bool   `json:"active,omitempty"`
}

/*************************************
*  Auth usecase interfaces and types *
**************************************/
type AuthUsecase interface {
	LoginStaff(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	LoginCustomer(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, sessionID string) error
	RefreshToken(ctx context.Context, req *RefreshTokenRequest) (*AuthResponse, error)

	// ResolveAuthContext rebuilds the caller's authorization context from
	// verified token claims. Used by the authentication middleware.
	ResolveAuthContext(ctx context.Context, claims *JwtClaims) (*AuthContext, error)
}

type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IPAddress    string `json:"ip_address,omitempty"`
	UserAgent    string `json:"user_agent,omitempty"`
}

type AuthResponse struct {
	ActorType    UserType  `json:"actor_type"`
	User         *User     `json:"user,omitempty"`
	Customer     *Customer `json:"customer,omitempty"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}
