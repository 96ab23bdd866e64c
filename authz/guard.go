package authz

import (
	"atelier-backend/domain"
)

// Guard enforces a Policy for one entity type. E is the entity, F its query
// filter. Usecases call the guard before touching their repository, in a
// fixed order: permission first, then load, then per-row ownership, then the
// write.
type Guard[E any, F any] struct {
	policy Policy

	// ownerID extracts the owning customer ID from an entity. An empty
	// result means the row is unowned and only staff can act on it.
	ownerID func(*E) string

	// scope injects the caller's ownership predicate into a list filter.
	// Only invoked for customer contexts.
	scope func(actx *domain.AuthContext, filter *F) *F
}

func NewGuard[E any, F any](
	policy Policy,
	ownerID func(*E) string,
	scope func(actx *domain.AuthContext, filter *F) *F,
) *Guard[E, F] {
	return &Guard[E, F]{
		policy:  policy,
		ownerID: ownerID,
		scope:   scope,
	}
}

func (g *Guard[E, F]) Resource() domain.Resource {
	return g.policy.Resource
}

// RequirePermission rejects the call unless the caller may attempt the
// action on this resource. Staff are checked against the permission catalog,
// customers against the policy allowlist. A nil context always fails, the
// upstream authenticator should have rejected the request already.
func (g *Guard[E, F]) RequirePermission(actx *domain.AuthContext, action domain.Action) error {
	if actx == nil {
		return domain.ErrUnauthorized.WithReason("missing authorization context")
	}

	if actx.IsCustomer() {
		if d := g.policy.CustomerCan(action); !d.Allowed {
			return domain.ErrPermissionDenied.
				WithReason(d.Reason).
				WithDetail("resource", string(g.policy.Resource)).
				WithDetail("action", string(action))
		}
		return nil
	}

	satisfying := g.policy.SatisfyingPermissions(action)
	if !domain.HasAnyPermissions(actx.Permissions, satisfying) {
		return domain.ErrPermissionDenied.
			WithReasonf("requires one of %v", domain.PermissionStrings(satisfying)).
			WithDetail("resource", string(g.policy.Resource)).
			WithDetail("action", string(action)).
			WithDetail("satisfied_by", domain.PermissionStrings(satisfying))
	}
	return nil
}

// RequireStaff rejects customer contexts outright, for operations that have
// no customer-facing form regardless of ownership.
func (g *Guard[E, F]) RequireStaff(actx *domain.AuthContext, action domain.Action) error {
	if actx == nil {
		return domain.ErrUnauthorized.WithReason("missing authorization context")
	}
	if !actx.IsStaff() {
		return domain.ErrPermissionDenied.
			WithReason("this operation is restricted to staff").
			WithDetail("resource", string(g.policy.Resource)).
			WithDetail("action", string(action))
	}
	return g.RequirePermission(actx, action)
}

// CheckAccess verifies the loaded row belongs to the caller. Staff pass
// unconditionally. Runs after the entity load and before any result is
// returned or any mutation applied.
func (g *Guard[E, F]) CheckAccess(actx *domain.AuthContext, entity *E) error {
	if actx == nil {
		return domain.ErrUnauthorized.WithReason("missing authorization context")
	}
	if actx.IsStaff() {
		return nil
	}

	owner := ""
	if g.ownerID != nil && entity != nil {
		owner = g.ownerID(entity)
	}
	if owner == "" || owner != actx.UserID {
		return domain.ErrOwnershipViolation.
			WithDetail("resource", string(g.policy.Resource))
	}
	return nil
}

// ScopeFilter narrows a list filter to the caller's own rows. Staff filters
// pass through untouched.
func (g *Guard[E, F]) ScopeFilter(actx *domain.AuthContext, filter *F) *F {
	if actx == nil || actx.IsStaff() || g.scope == nil {
		return filter
	}
	return g.scope(actx, filter)
}
