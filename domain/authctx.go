package domain

// UserType separates the two caller kinds. It is an axis orthogonal to the
// permission set: a customer is never inferred from (or granted) catalog
// permissions, it is authorized through ownership checks instead.
type UserType string

const (
	UserTypeStaff    UserType = "staff"
	UserTypeCustomer UserType = "customer"
)

// AuthContext is the per-request identity and capability bundle. It is built
// once by the authenticator from a verified session and treated as read-only
// for the rest of the call chain.
type AuthContext struct {
	UserID      string       `json:"user_id"`
	UserType    UserType     `json:"user_type"`
	Role        string       `json:"role"`
	Permissions []Permission `json:"permissions"`
}

func NewStaffContext(userID, role string, permissions []Permission) *AuthContext {
	return &AuthContext{
		UserID:      userID,
		UserType:    UserTypeStaff,
		Role:        role,
		Permissions: permissions,
	}
}

func NewCustomerContext(customerID string) *AuthContext {
	return &AuthContext{
		UserID:   customerID,
		UserType: UserTypeCustomer,
	}
}

func (a *AuthContext) IsStaff() bool {
	return a != nil && a.UserType == UserTypeStaff
}

func (a *AuthContext) IsCustomer() bool {
	return a != nil && a.UserType == UserTypeCustomer
}

func (a *AuthContext) IsSuperadmin() bool {
	return a.IsStaff() && HasPermission(a.Permissions, PermissionSuperadmin)
}
