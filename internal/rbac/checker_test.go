package rbac

import (
	"context"
	"testing"
)

func TestCheckerHas(t *testing.T) {
	c := NewChecker(map[string][]string{
		"student": {"test:view", "session:view-own"},
		"staff":   {"test:*", "review:view"},
		"admin":   {"*"},
	})

	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", "test:view", true},
		{"student", "test:view-answers", false},
		{"staff", "test:view-answers", true}, // prefix rule
		{"staff", "session:view-all", false},
		{"admin", "anything:at-all", true},
		{"", "test:view", false},
		{"ghost", "test:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerAny(t *testing.T) {
	c := NewChecker(nil) // built-in policy
	if !c.Any("student", "session:view-own", "session:view-all") {
		t.Error("student should hold view-own")
	}
	if c.Any("student", "test:create", "test:edit") {
		t.Error("student should not hold any authoring permission")
	}
}

func TestRoleContextRoundTrip(t *testing.T) {
	ctx := WithRole(context.Background(), "staff")
	if got := RoleFromContext(ctx); got != "staff" {
		t.Errorf("RoleFromContext = %q", got)
	}
	if got := RoleFromContext(context.Background()); got != "" {
		t.Errorf("empty context should yield no role, got %q", got)
	}
}
