package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"test:view",
		"session:create",
		"session:save",
		"session:submit",
		"session:view-own",
	},
	"staff": {
		"test:create",
		"test:edit",
		"test:view",
		"test:view-answers",
		"test:list",
		"asset:upload",
		"session:view-all",
		"review:view",
	},
	"admin": {
		"*", // everything
	},
}
