package auth

const (
	RoleEmployee = "EMPLOYEE"
	RoleHR       = "HR"
	RoleAdmin    = "ADMIN"
)

const (
	PermCompensationRead     = "compensation.read"
	PermCompensationReadSelf = "compensation.read.self"
	PermCompensationWrite    = "compensation.write"
	PermCompensationPreview  = "compensation.preview"
)

var DefaultPermissions = []string{
	PermCompensationRead,
	PermCompensationReadSelf,
	PermCompensationWrite,
	PermCompensationPreview,
}

var Roles = []string{RoleEmployee, RoleHR, RoleAdmin}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermCompensationReadSelf,
	},
	RoleHR: {
		PermCompensationRead,
		PermCompensationReadSelf,
		PermCompensationWrite,
		PermCompensationPreview,
	},
	RoleAdmin: {
		PermCompensationRead,
		PermCompensationReadSelf,
		PermCompensationWrite,
		PermCompensationPreview,
	},
}

// UserContext is the authenticated principal attached to a request.
type UserContext struct {
	UserID   string
	TenantID string
	RoleName string
}

func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
