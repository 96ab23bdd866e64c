// Package authz is the enforcement layer every entity usecase runs its
// calls through. It separates "may this action be attempted at all" from
// "does this specific row belong to the caller", and injects ownership
// filters into list queries so customers structurally cannot enumerate
// records that are not theirs.
package authz

import (
	"atelier-backend/domain"
)

// Decision is the outcome of a customer action check. Reason is surfaced in
// the denial error when set.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Policy declares how one resource is authorized. Staff go through the
// permission catalog, customers through a per-action allowlist.
type Policy struct {
	Resource domain.Resource

	// CustomerActions is the allowlist of actions a customer context may
	// attempt on this resource. Ownership is checked separately per row.
	// A nil map denies customers every action.
	CustomerActions map[domain.Action]Decision
}

// CustomerCan evaluates the customer allowlist for an action.
func (p Policy) CustomerCan(action domain.Action) Decision {
	if p.CustomerActions == nil {
		return Deny("this area is restricted to staff")
	}
	d, ok := p.CustomerActions[action]
	if !ok {
		return Deny("customers cannot " + string(action) + " " + string(p.Resource))
	}
	return d
}

// SatisfyingPermissions lists the catalog permissions that let staff perform
// the action on this resource. Manage grants every action on its resource,
// the universal sentinels are implied and not listed.
func (p Policy) SatisfyingPermissions(action domain.Action) []domain.Permission {
	perms := []domain.Permission{domain.NewPermission(p.Resource, action)}
	if action != domain.ActionManage {
		perms = append(perms, domain.NewPermission(p.Resource, domain.ActionManage))
	}
	return perms
}
