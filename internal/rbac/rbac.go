// Package rbac holds the static role-based access policy and the
// authorization gate that enforces it. The permission matrix is a plain
// two-level map loaded once and immutable for the process lifetime; there
// are no wildcards and no inheritance between roles. Both the edge
// interceptor and per-route handlers call into this package so the two
// enforcement layers cannot drift.
package rbac

import (
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kalviumcommunity/rentels-api/internal/httpx"
)

// Role is the closed set of application roles. Anything else normalizes to
// "no role" and fails every permission check.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOwner    Role = "OWNER"
	RoleCustomer Role = "CUSTOMER"
)

type Resource string

const (
	ResourceUsers Resource = "users"
	ResourceAdmin Resource = "admin"
	ResourceFiles Resource = "files"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// rolePermissions enumerates each role's full permission set independently.
// ADMIN does not inherit from OWNER; every grant is explicit.
var rolePermissions = map[Role]map[Resource][]Action{
	RoleAdmin: {
		ResourceUsers: {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
		ResourceAdmin: {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
		ResourceFiles: {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
	},
	RoleOwner: {
		ResourceUsers: {ActionCreate, ActionRead, ActionUpdate},
		ResourceAdmin: {},
		ResourceFiles: {ActionCreate, ActionRead},
	},
	RoleCustomer: {
		ResourceUsers: {ActionRead},
		ResourceAdmin: {},
		ResourceFiles: {ActionCreate, ActionRead},
	},
}

// ParseRole normalizes arbitrary role input case-insensitively to one of
// the known roles. It is the single fallible parse at the system boundary;
// everything downstream works with the typed Role.
func ParseRole(v string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(v))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleOwner:
		return RoleOwner, true
	case RoleCustomer:
		return RoleCustomer, true
	}
	return "", false
}

// Can reports whether the given role may perform action on resource.
// Unrecognized roles are always denied. Pure function, no I/O.
func Can(role string, resource Resource, action Action) bool {
	normalized, ok := ParseRole(role)
	if !ok {
		return false
	}
	for _, a := range rolePermissions[normalized][resource] {
		if a == action {
			return true
		}
	}
	return false
}

// Decide is Can plus the audit trail: every call, allow or deny, emits one
// log line recording the normalized role and the decision.
func Decide(role string, resource Resource, action Action) bool {
	allowed := Can(role, resource, action)
	label := "UNKNOWN"
	if normalized, ok := ParseRole(role); ok {
		label = string(normalized)
	}
	decision := "DENIED"
	if allowed {
		decision = "ALLOWED"
	}
	log.Printf("[RBAC] role=%s action=%s resource=%s decision=%s", label, action, resource, decision)
	return allowed
}

// RequirePermission is the authorization gate used inside handlers. On
// denial it writes the 403 envelope and returns false; the handler must
// return immediately in that case.
func RequirePermission(c echo.Context, role string, resource Resource, action Action) bool {
	if Decide(role, resource, action) {
		return true
	}
	_ = httpx.Error(c, http.StatusForbidden,
		"Access denied: insufficient permissions.", httpx.CodeForbidden)
	return false
}
