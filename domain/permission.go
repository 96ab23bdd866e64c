package domain

import (
	"strings"

	"github.com/samber/lo"
)

// Resource is a protected area of the system a permission applies to.
type Resource string

const (
	ResourceUsers     Resource = "users"
	ResourceCustomers Resource = "customers"
	ResourceProducts  Resource = "products"
	ResourceOrders    Resource = "orders"
	ResourceInquiries Resource = "inquiries"
	ResourceMedia     Resource = "media"
)

// Action is an operation that can be granted on a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionManage Action = "manage"
)

// Permission is a grantable capability in the canonical "resource:action"
// form, or one of the two universal sentinels. Values are constructed through
// NewPermission/ParsePermission so an invalid string fails at the boundary
// where it is first read instead of silently never matching.
type Permission string

const (
	// PermissionWildcard satisfies any required permission.
	PermissionWildcard Permission = "*"
	// PermissionSuperadmin satisfies any required permission, like the
	// wildcard, but also marks the caller as the system owner.
	PermissionSuperadmin Permission = "superadmin"
)

func allResources() []Resource {
	return []Resource{
		ResourceUsers,
		ResourceCustomers,
		ResourceProducts,
		ResourceOrders,
		ResourceInquiries,
		ResourceMedia,
	}
}

func allActions() []Action {
	return []Action{
		ActionCreate,
		ActionRead,
		ActionUpdate,
		ActionDelete,
		ActionManage,
	}
}

func (r Resource) IsValid() bool {
	switch r {
	case ResourceUsers, ResourceCustomers, ResourceProducts,
		ResourceOrders, ResourceInquiries, ResourceMedia:
		return true
	default:
		return false
	}
}

func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage:
		return true
	default:
		return false
	}
}

func (p Permission) String() string {
	return string(p)
}

func (p Permission) IsUniversal() bool {
	return p == PermissionWildcard || p == PermissionSuperadmin
}

// NewPermission builds the canonical "resource:action" permission.
func NewPermission(resource Resource, action Action) Permission {
	return Permission(string(resource) + ":" + string(action))
}

// ParsePermission validates a raw string against the catalog. Sentinels pass
// through; anything else must be a known resource:action pair.
func ParsePermission(raw string) (Permission, error) {
	p := Permission(raw)
	if p.IsUniversal() {
		return p, nil
	}

	resource, action, ok := strings.Cut(raw, ":")
	if !ok || !Resource(resource).IsValid() || !Action(action).IsValid() {
		return "", ErrBusinessRuleViolation.
			WithError("unknown permission").
			WithReasonf("%q is not a valid permission", raw)
	}
	return p, nil
}

// ParsePermissions validates a whole list; one invalid entry rejects the lot.
func ParsePermissions(raws []string) ([]Permission, error) {
	perms := make([]Permission, 0, len(raws))
	for _, raw := range raws {
		p, err := ParsePermission(raw)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, nil
}

// AllPermissions enumerates the full resource x action catalog, without the
// universal sentinels.
func AllPermissions() []Permission {
	perms := make([]Permission, 0, len(allResources())*len(allActions()))
	for _, r := range allResources() {
		for _, a := range allActions() {
			perms = append(perms, NewPermission(r, a))
		}
	}
	return perms
}

func containsUniversal(granted []Permission) bool {
	for _, p := range granted {
		if p.IsUniversal() {
			return true
		}
	}
	return false
}

// HasPermission reports whether the granted set satisfies required. Exact
// membership only, no prefix or substring matching; either sentinel in the
// granted set satisfies everything.
func HasPermission(granted []Permission, required Permission) bool {
	for _, p := range granted {
		if p.IsUniversal() || p == required {
			return true
		}
	}
	return false
}

func HasResourcePermission(granted []Permission, resource Resource, action Action) bool {
	return HasPermission(granted, NewPermission(resource, action))
}

// HasAllPermissions is true when every required permission is granted. The
// sentinel short-circuit is applied before iterating, so a wildcard holder
// passes even when the required list contains malformed entries. An empty
// required list is vacuously true.
func HasAllPermissions(granted []Permission, required []Permission) bool {
	if containsUniversal(granted) {
		return true
	}
	for _, r := range required {
		if !HasPermission(granted, r) {
			return false
		}
	}
	return true
}

// HasAnyPermissions is true when at least one required permission is granted,
// with the same sentinel short-circuit as HasAllPermissions.
func HasAnyPermissions(granted []Permission, required []Permission) bool {
	if containsUniversal(granted) {
		return true
	}
	for _, r := range required {
		if HasPermission(granted, r) {
			return true
		}
	}
	return false
}

// OptimizePermissions collapses a redundant set: superadmin swallows
// everything, then the wildcard, otherwise duplicates are removed while
// preserving order.
func OptimizePermissions(granted []Permission) []Permission {
	for _, p := range granted {
		if p == PermissionSuperadmin {
			return []Permission{PermissionSuperadmin}
		}
	}
	for _, p := range granted {
		if p == PermissionWildcard {
			return []Permission{PermissionWildcard}
		}
	}
	return lo.Uniq(granted)
}

// PermissionStrings renders a permission list for storage or diagnostics.
func PermissionStrings(perms []Permission) []string {
	return lo.Map(perms, func(p Permission, _ int) string { return string(p) })
}

// PermissionsFromStrings converts stored strings without validation; use
// ParsePermissions at input boundaries instead.
func PermissionsFromStrings(raws []string) []Permission {
	return lo.Map(raws, func(s string, _ int) Permission { return Permission(s) })
}
