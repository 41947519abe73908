package rbac

import (
	"context"
	"strings"
)

// Checker answers whether a role is allowed a permission. Permissions are
// "resource:action" strings; a rule ending in "*" grants a whole resource,
// and the bare "*" grants everything.
type Checker struct {
	rules map[string][]string
}

// NewChecker builds a checker over the given rules. Passing nil uses the
// built-in RolePermissions policy.
func NewChecker(rules map[string][]string) *Checker {
	if rules == nil {
		rules = RolePermissions
	}
	return &Checker{rules: rules}
}

func (c *Checker) Has(role, perm string) bool {
	for _, rule := range c.rules[role] {
		if allows(rule, perm) {
			return true
		}
	}
	return false
}

// Any reports whether the role holds at least one of the permissions.
func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

func allows(rule, perm string) bool {
	if rule == "*" || rule == perm {
		return true
	}
	if pre, ok := strings.CutSuffix(rule, "*"); ok {
		return strings.HasPrefix(perm, pre)
	}
	return false
}

// The caller's role travels in the request context once auth established it.

type roleKey struct{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}
