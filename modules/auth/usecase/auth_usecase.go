package usecase

import (
	"context"
	"time"

	"atelier-backend/domain"
	"atelier-backend/pkg/utils"
)

type Hasher interface {
	Hash(password string) (string, error)
	Compare(hashed, password string) bool
}

type JWTProvider interface {
	Generate(tokenType domain.TokenType, actorType domain.UserType, actorID, sessionID string) (string, error)
	Verify(tokenType domain.TokenType, tokenStr string) (*domain.JwtClaims, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	FindByID(ctx context.Context, sessionID string, option *domain.FindOneOption) (*domain.Session, error)
	FindByRefreshToken(ctx context.Context, refreshToken string, option *domain.FindOneOption) (*domain.Session, error)
	Update(ctx context.Context, session *domain.Session) error
	InvalidateRefreshToken(ctx context.Context, sessionID string) error
	Touch(ctx context.Context, sessionID string, at int64) error
}

type UserFinder interface {
	FindByID(ctx context.Context, userID string, option *domain.FindOneOption) (*domain.User, error)
	FindOne(ctx context.Context, filter *domain.UserFilter, option *domain.FindOneOption) (*domain.User, error)
	UpdateFields(ctx context.Context, userID string, fields map[string]any) error
}

type CustomerFinder interface {
	FindByID(ctx context.Context, customerID string, option *domain.FindOneOption) (*domain.Customer, error)
	FindOne(ctx context.Context, filter *domain.CustomerFilter, option *domain.FindOneOption) (*domain.Customer, error)
	UpdateFields(ctx context.Context, customerID string, fields map[string]any) error
}

type authUsecase struct {
	sessions   SessionRepository
	users      UserFinder
	customers  CustomerFinder
	jwt        JWTProvider
	hasher     Hasher
	sessionTTL time.Duration
	now        func() int64
}

func NewAuthUsecase(
	sessions SessionRepository,
	users UserFinder,
	customers CustomerFinder,
	jwtProvider JWTProvider,
	hasher Hasher,
	sessionTTL time.Duration,
) domain.AuthUsecase {
	return &authUsecase{
		sessions:   sessions,
		users:      users,
		customers:  customers,
		jwt:        jwtProvider,
		hasher:     hasher,
		sessionTTL: sessionTTL,
		now:        utils.NowUnixMillis,
	}
}

func (a *authUsecase) LoginStaff(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	user, err := a.users.FindOne(ctx, &domain.UserFilter{Email: &req.Email}, &domain.FindOneOption{
		Preloads: []string{"Role"},
	})
	if err != nil || user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !a.hasher.Compare(user.Password, req.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, domain.ErrUserInactive
	}

	session, refreshToken, err := a.openSession(ctx, domain.UserTypeStaff, user.ID, req.IPAddress, req.UserAgent)
	if err != nil {
		return nil, err
	}

	accessToken, err := a.jwt.Generate(domain.TokenTypeAccess, domain.UserTypeStaff, user.ID, session.ID)
	if err != nil {
		return nil, domain.ErrInternalServerError.WithWrap(err)
	}

	_ = a.users.UpdateFields(ctx, user.ID, map[string]any{"last_login_at": a.now()})

	return &domain.AuthResponse{
		ActorType:    domain.UserTypeStaff,
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (a *authUsecase) LoginCustomer(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	customer, err := a.customers.FindOne(ctx, &domain.CustomerFilter{Email: &req.Email}, nil)
	if err != nil || customer == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !a.hasher.Compare(customer.Password, req.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	if !customer.IsActive() {
		return nil, domain.ErrCustomerInactive
	}

	session, refreshToken, err := a.openSession(ctx, domain.UserTypeCustomer, customer.ID, req.IPAddress, req.UserAgent)
	if err != nil {
		return nil, err
	}

	accessToken, err := a.jwt.Generate(domain.TokenTypeAccess, domain.UserTypeCustomer, customer.ID, session.ID)
	if err != nil {
		return nil, domain.ErrInternalServerError.WithWrap(err)
	}

	_ = a.customers.UpdateFields(ctx, customer.ID, map[string]any{"last_login_at": a.now()})

	return &domain.AuthResponse{
		ActorType:    domain.UserTypeCustomer,
		Customer:     customer,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (a *authUsecase) Logout(ctx context.Context, sessionID string) error {
	session, err := a.sessions.FindByID(ctx, sessionID, nil)
	if err != nil || session == nil {
		return domain.ErrSessionExpired.WithWrap(err)
	}
	if !session.Active {
		return nil
	}
	session.Active = false
	if err := a.sessions.Update(ctx, session); err != nil {
		return domain.ErrInternalServerError.WithWrap(err)
	}
	return nil
}

func (a *authUsecase) RefreshToken(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.AuthResponse, error) {
	session, err := a.sessions.FindByRefreshToken(ctx, req.RefreshToken, nil)
	if err != nil || session == nil {
		return nil, domain.ErrInvalidToken.WithReason("refresh token is not recognized")
	}
	if !session.IsActive() {
		return nil, domain.ErrSessionExpired
	}

	// Refresh tokens rotate, each one is single use.
	if err := a.sessions.InvalidateRefreshToken(ctx, session.ID); err != nil {
		return nil, domain.ErrInternalServerError.WithWrap(err)
	}

	actorType := domain.UserType(session.ActorType)
	resp := &domain.AuthResponse{ActorType: actorType}
	switch actorType {
	case domain.UserTypeStaff:
		user, err := a.users.FindByID(ctx, session.ActorID, &domain.FindOneOption{Preloads: []string{"Role"}})
		if err != nil || user == nil {
			return nil, domain.ErrUserNotFound.WithWrap(err)
		}
		if !user.IsActive() {
			return nil, domain.ErrUserInactive
		}
		resp.User = user

	case domain.UserTypeCustomer:
		customer, err := a.customers.FindByID(ctx, session.ActorID, nil)
		if err != nil || customer == nil {
			return nil, domain.ErrCustomerNotFound.WithWrap(err)
		}
		if !customer.IsActive() {
			return nil, domain.ErrCustomerInactive
		}
		resp.Customer = customer

	default:
		return nil, domain.ErrSessionExpired
	}

	newRefreshToken, err := a.jwt.Generate(domain.TokenTypeRefresh, actorType, "", "")
	if err != nil {
		return nil, domain.ErrInternalServerError.WithWrap(err)
	}

	session.RefreshToken = newRefreshToken
	if req.IPAddress != "" {
		session.IPAddress = req.IPAddress
	}
	if req.UserAgent != "" {
		session.UserAgent = req.UserAgent
	}
	session.LastActivityAt = a.now()
	if err := a.sessions.Update(ctx, session); err != nil {
		return nil, domain.ErrInternalServerError.WithWrap(err)
	}

	accessToken, err := a.jwt.Generate(domain.TokenTypeAccess, actorType, session.ActorID, session.ID)
	if err != nil {
		return nil, domain.ErrInternalServerError.WithWrap(err)
	}

	resp.AccessToken = accessToken
	resp.RefreshToken = newRefreshToken
	return resp, nil
}

// ResolveAuthContext rebuilds the caller's capability bundle from verified
// claims. Permissions come from the current role record, not from the token,
// so a role edit takes effect on the next request.
func (a *authUsecase) ResolveAuthContext(ctx context.Context, claims *domain.JwtClaims) (*domain.AuthContext, error) {
	if claims == nil || claims.Sub == "" {
		return nil, domain.ErrInvalidToken
	}

	session, err := a.sessions.FindByID(ctx, claims.Sid, nil)
	if err != nil || session == nil {
		return nil, domain.ErrSessionExpired.WithWrap(err)
	}
	if !session.IsActive() || session.ActorID != claims.Sub {
		return nil, domain.ErrSessionExpired
	}

	switch claims.ActorType() {
	case domain.UserTypeStaff:
		user, err := a.users.FindByID(ctx, claims.Sub, &domain.FindOneOption{Preloads: []string{"Role"}})
		if err != nil || user == nil {
			return nil, domain.ErrUserNotFound.WithWrap(err)
		}
		if !user.IsActive() {
			return nil, domain.ErrUserInactive
		}
		_ = a.sessions.Touch(ctx, session.ID, a.now())
		return domain.NewStaffContext(user.ID, user.RoleName(), user.EffectivePermissions()), nil

	case domain.UserTypeCustomer:
		customer, err := a.customers.FindByID(ctx, claims.Sub, nil)
		if err != nil || customer == nil {
			return nil, domain.ErrCustomerNotFound.WithWrap(err)
		}
		if !customer.IsActive() {
			return nil, domain.ErrCustomerInactive
		}
		_ = a.sessions.Touch(ctx, session.ID, a.now())
		return domain.NewCustomerContext(customer.ID), nil

	default:
		return nil, domain.ErrInvalidToken
	}
}

func (a *authUsecase) openSession(ctx context.Context, actorType domain.UserType, actorID, ipAddress, userAgent string) (*domain.Session, string, error) {
	refreshToken, err := a.jwt.Generate(domain.TokenTypeRefresh, actorType, "", "")
	if err != nil {
		return nil, "", domain.ErrInternalServerError.WithWrap(err)
	}

	session := &domain.Session{
		ActorID:        actorID,
		ActorType:      string(actorType),
		RefreshToken:   refreshToken,
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
		Active:         true,
		LastActivityAt: a.now(),
	}
	if a.sessionTTL > 0 {
		session.ExpiresAt = a.now() + a.sessionTTL.Milliseconds()
	}
	if err := a.sessions.Create(ctx, session); err != nil {
		return nil, "", domain.ErrCannotCreateSession.WithWrap(err)
	}
	return session, refreshToken, nil
}
