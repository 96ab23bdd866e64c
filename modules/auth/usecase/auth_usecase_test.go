package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier-backend/domain"
)

type fakeSessionRepo struct {
	byID        map[string]*domain.Session
	invalidated []string
	touched     []string
	nextID      int
}

func newFakeSessionRepo(sessions ...*domain.Session) *fakeSessionRepo {
	byID := make(map[string]*domain.Session, len(sessions))
	for _, s := range sessions {
		byID[s.ID] = s
	}
	return &fakeSessionRepo{byID: byID}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *domain.Session) error {
	if session.ID == "" {
		f.nextID++
		session.ID = fmt.Sprintf("sess-%d", f.nextID)
	}
	f.byID[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) FindByID(_ context.Context, sessionID string, _ *domain.FindOneOption) (*domain.Session, error) {
	session, ok := f.byID[sessionID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return session, nil
}

func (f *fakeSessionRepo) FindByRefreshToken(_ context.Context, refreshToken string, _ *domain.FindOneOption) (*domain.Session, error) {
	for _, session := range f.byID {
		if session.RefreshToken == refreshToken && refreshToken != "" {
			return session, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (f *fakeSessionRepo) Update(_ context.Context, session *domain.Session) error {
	f.byID[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) InvalidateRefreshToken(_ context.Context, sessionID string) error {
	f.invalidated = append(f.invalidated, sessionID)
	if session, ok := f.byID[sessionID]; ok {
		session.RefreshToken = ""
	}
	return nil
}

func (f *fakeSessionRepo) Touch(_ context.Context, sessionID string, at int64) error {
	f.touched = append(f.touched, sessionID)
	if session, ok := f.byID[sessionID]; ok {
		session.LastActivityAt = at
	}
	return nil
}

type fakeUserFinder struct {
	byID          map[string]*domain.User
	updatedFields map[string]map[string]any
}

func newFakeUserFinder(users ...*domain.User) *fakeUserFinder {
	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return &fakeUserFinder{byID: byID, updatedFields: make(map[string]map[string]any)}
}

func (f *fakeUserFinder) FindByID(_ context.Context, userID string, _ *domain.FindOneOption) (*domain.User, error) {
	user, ok := f.byID[userID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserFinder) FindOne(_ context.Context, filter *domain.UserFilter, _ *domain.FindOneOption) (*domain.User, error) {
	for _, user := range f.byID {
		if filter.Email != nil && user.Email == *filter.Email {
			return user, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (f *fakeUserFinder) UpdateFields(_ context.Context, userID string, fields map[string]any) error {
	f.updatedFields[userID] = fields
	return nil
}

type fakeCustomerFinder struct {
	byID map[string]*domain.Customer
}

func newFakeCustomerFinder(customers ...*domain.Customer) *fakeCustomerFinder {
	byID := make(map[string]*domain.Customer, len(customers))
	for _, c := range customers {
		byID[c.ID] = c
	}
	return &fakeCustomerFinder{byID: byID}
}

func (f *fakeCustomerFinder) FindByID(_ context.Context, customerID string, _ *domain.FindOneOption) (*domain.Customer, error) {
	customer, ok := f.byID[customerID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return customer, nil
}

func (f *fakeCustomerFinder) FindOne(_ context.Context, filter *domain.CustomerFilter, _ *domain.FindOneOption) (*domain.Customer, error) {
	for _, customer := range f.byID {
		if filter.Email != nil && customer.Email == *filter.Email {
			return customer, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (f *fakeCustomerFinder) UpdateFields(_ context.Context, _ string, _ map[string]any) error {
	return nil
}

type fakeJWT struct {
	seq int
}

func (f *fakeJWT) Generate(tokenType domain.TokenType, actorType domain.UserType, actorID, sessionID string) (string, error) {
	f.seq++
	return fmt.Sprintf("%s-%s-%d", tokenType, actorType, f.seq), nil
}

func (f *fakeJWT) Verify(_ domain.TokenType, _ string) (*domain.JwtClaims, error) {
	return nil, domain.ErrInvalidToken
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hashed, password string) bool { return hashed == "hashed:"+password }

func activeStaff(id, email string) *domain.User {
	return &domain.User{
		SQLModel: domain.SQLModel{ID: id},
		Email:    email,
		Password: "hashed:secret123",
		Status:   domain.UserSTTActive,
		Role: &domain.Role{
			Name:        "manager",
			Permissions: domain.StringSlice{"orders:manage", "inquiries:manage"},
		},
	}
}

func activeCustomer(id, email string) *domain.Customer {
	return &domain.Customer{
		SQLModel: domain.SQLModel{ID: id},
		Email:    email,
		Password: "hashed:secret123",
		Status:   domain.CustomerSTTActive,
	}
}

func newTestAuthUsecase(sessions *fakeSessionRepo, users *fakeUserFinder, customers *fakeCustomerFinder) domain.AuthUsecase {
	return NewAuthUsecase(sessions, users, customers, &fakeJWT{}, fakeHasher{}, 0)
}

func TestLoginStaff(t *testing.T) {
	sessions := newFakeSessionRepo()
	users := newFakeUserFinder(activeStaff("user-1", "staff@example.com"))
	uc := newTestAuthUsecase(sessions, users, newFakeCustomerFinder())

	resp, err := uc.LoginStaff(context.Background(), &domain.LoginRequest{
		Email:    "staff@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UserTypeStaff, resp.ActorType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "user-1", resp.User.ID)

	// A session was opened and the login timestamp recorded.
	assert.Len(t, sessions.byID, 1)
	assert.Contains(t, users.updatedFields["user-1"], "last_login_at")
}

func TestLoginStaffWrongPassword(t *testing.T) {
	users := newFakeUserFinder(activeStaff("user-1", "staff@example.com"))
	uc := newTestAuthUsecase(newFakeSessionRepo(), users, newFakeCustomerFinder())

	_, err := uc.LoginStaff(context.Background(), &domain.LoginRequest{
		Email:    "staff@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginStaffUnknownEmail(t *testing.T) {
	uc := newTestAuthUsecase(newFakeSessionRepo(), newFakeUserFinder(), newFakeCustomerFinder())

	_, err := uc.LoginStaff(context.Background(), &domain.LoginRequest{
		Email:    "ghost@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginStaffInactive(t *testing.T) {
	user := activeStaff("user-1", "staff@example.com")
	user.Status = domain.UserSTTInactive
	uc := newTestAuthUsecase(newFakeSessionRepo(), newFakeUserFinder(user), newFakeCustomerFinder())

	_, err := uc.LoginStaff(context.Background(), &domain.LoginRequest{
		Email:    "staff@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestLoginCustomer(t *testing.T) {
	sessions := newFakeSessionRepo()
	customers := newFakeCustomerFinder(activeCustomer("cust-1", "client@example.com"))
	uc := newTestAuthUsecase(sessions, newFakeUserFinder(), customers)

	resp, err := uc.LoginCustomer(context.Background(), &domain.LoginRequest{
		Email:    "client@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UserTypeCustomer, resp.ActorType)
	require.NotNil(t, resp.Customer)
	assert.Equal(t, "cust-1", resp.Customer.ID)
	assert.Len(t, sessions.byID, 1)
}

func TestLogoutDeactivatesSession(t *testing.T) {
	sessions := newFakeSessionRepo(&domain.Session{
		SQLModel: domain.SQLModel{ID: "sess-1"},
		ActorID:  "user-1",
		Active:   true,
	})
	uc := newTestAuthUsecase(sessions, newFakeUserFinder(), newFakeCustomerFinder())

	require.NoError(t, uc.Logout(context.Background(), "sess-1"))
	assert.False(t, sessions.byID["sess-1"].Active)

	// Logging out twice is a no-op.
	require.NoError(t, uc.Logout(context.Background(), "sess-1"))
}

func TestRefreshTokenRotates(t *testing.T) {
	sessions := newFakeSessionRepo(&domain.Session{
		SQLModel:     domain.SQLModel{ID: "sess-1"},
		ActorID:      "user-1",
		ActorType:    string(domain.UserTypeStaff),
		RefreshToken: "old-refresh",
		Active:       true,
	})
	users := newFakeUserFinder(activeStaff("user-1", "staff@example.com"))
	uc := newTestAuthUsecase(sessions, users, newFakeCustomerFinder())

	resp, err := uc.RefreshToken(context.Background(), &domain.RefreshTokenRequest{RefreshToken: "old-refresh"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, "old-refresh", resp.RefreshToken)
	assert.Equal(t, []string{"sess-1"}, sessions.invalidated)

	// The old token no longer resolves to a session.
	_, err = uc.RefreshToken(context.Background(), &domain.RefreshTokenRequest{RefreshToken: "old-refresh"})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRefreshTokenInactiveSession(t *testing.T) {
	sessions := newFakeSessionRepo(&domain.Session{
		SQLModel:     domain.SQLModel{ID: "sess-1"},
		ActorID:      "user-1",
		ActorType:    string(domain.UserTypeStaff),
		RefreshToken: "old-refresh",
		Active:       false,
	})
	uc := newTestAuthUsecase(sessions, newFakeUserFinder(), newFakeCustomerFinder())

	_, err := uc.RefreshToken(context.Background(), &domain.RefreshTokenRequest{RefreshToken: "old-refresh"})
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestResolveAuthContextStaff(t *testing.T) {
	sessions := newFakeSessionRepo(&domain.Session{
		SQLModel:  domain.SQLModel{ID: "sess-1"},
		ActorID:   "user-1",
		ActorType: string(domain.UserTypeStaff),
		Active:    true,
	})
	users := newFakeUserFinder(activeStaff("user-1", "staff@example.com"))
	uc := newTestAuthUsecase(sessions, users, newFakeCustomerFinder())

	actx, err := uc.ResolveAuthContext(context.Background(), &domain.JwtClaims{
		Sub: "user-1",
		Sid: "sess-1",
		Typ: string(domain.UserTypeStaff),
	})
	require.NoError(t, err)
	assert.True(t, actx.IsStaff())
	assert.Equal(t, "user-1", actx.UserID)
	assert.Equal(t, "manager", actx.Role)
	assert.NotEmpty(t, actx.Permissions)
	assert.Equal(t, []string{"sess-1"}, sessions.touched)
}

func TestResolveAuthContextCustomer(t *testing.T) {
	sessions := newFakeSessionRepo(&domain.Session{
		SQLModel:  domain.SQLModel{ID: "sess-1"},
		ActorID:   "cust-1",
		ActorType: string(domain.UserTypeCustomer),
		Active:    true,
	})
	customers := newFakeCustomerFinder(activeCustomer("cust-1", "client@example.com"))
	uc := newTestAuthUsecase(sessions, newFakeUserFinder(), customers)

	actx, err := uc.ResolveAuthContext(context.Background(), &domain.JwtClaims{
		Sub: "cust-1",
		Sid: "sess-1",
		Typ: string(domain.UserTypeCustomer),
	})
	require.NoError(t, err)
	assert.True(t, actx.IsCustomer())
	assert.Equal(t, "cust-1", actx.UserID)
	assert.Empty(t, actx.Permissions)
}

func TestResolveAuthContextSessionMismatch(t *testing.T) {
	sessions := newFakeSessionRepo(&domain.Session{
		SQLModel:  domain.SQLModel{ID: "sess-1"},
		ActorID:   "user-1",
		ActorType: string(domain.UserTypeStaff),
		Active:    true,
	})
	uc := newTestAuthUsecase(sessions, newFakeUserFinder(), newFakeCustomerFinder())

	// Token subject does not own the session.
	_, err := uc.ResolveAuthContext(context.Background(), &domain.JwtClaims{
		Sub: "user-2",
		Sid: "sess-1",
		Typ: string(domain.UserTypeStaff),
	})
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestResolveAuthContextInactiveUser(t *testing.T) {
	sessions := newFakeSessionRepo(&domain.Session{
		SQLModel:  domain.SQLModel{ID: "sess-1"},
		ActorID:   "user-1",
		ActorType: string(domain.UserTypeStaff),
		Active:    true,
	})
	user := activeStaff("user-1", "staff@example.com")
	user.Status = domain.UserSTTInactive
	uc := newTestAuthUsecase(sessions, newFakeUserFinder(user), newFakeCustomerFinder())

	_, err := uc.ResolveAuthContext(context.Background(), &domain.JwtClaims{
		Sub: "user-1",
		Sid: "sess-1",
		Typ: string(domain.UserTypeStaff),
	})
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}
