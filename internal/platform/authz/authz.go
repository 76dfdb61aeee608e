package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

type Mode string

const (
	ModeEnforce  Mode = "enforce"
	ModeShadow   Mode = "shadow"
	ModeDisabled Mode = "disabled"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return ModeEnforce, nil
	case ModeEnforce, ModeShadow, ModeDisabled:
		return m, nil
	default:
		return "", errors.New("authz: invalid mode (expected enforce|shadow|disabled)")
	}
}

// Authorizer answers role permission checks from an in-memory casbin policy.
// In shadow mode denials are logged and allowed; disabled allows everything.
type Authorizer struct {
	enforcer *casbin.Enforcer
	mode     Mode
	logger   *slog.Logger
}

// New builds an Authorizer whose policy grants each role the permissions
// listed for it.
func New(rolePermissions map[string][]string, mode Mode, logger *slog.Logger) (*Authorizer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: load model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: create enforcer: %w", err)
	}
	for role, perms := range rolePermissions {
		for _, perm := range perms {
			obj, act := splitPermission(perm)
			if _, err := enforcer.AddPolicy(subject(role), obj, act); err != nil {
				return nil, fmt.Errorf("authz: add policy %s %s: %w", role, perm, err)
			}
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Authorizer{enforcer: enforcer, mode: mode, logger: logger}, nil
}

func (a *Authorizer) Mode() Mode {
	return a.mode
}

func (a *Authorizer) HasPermission(ctx context.Context, role, permission string) (bool, error) {
	if a.mode == ModeDisabled {
		return true, nil
	}
	obj, act := splitPermission(permission)
	ok, err := a.enforcer.Enforce(subject(role), obj, act)
	if err != nil {
		return false, err
	}
	switch a.mode {
	case ModeEnforce:
		return ok, nil
	case ModeShadow:
		if !ok {
			a.logger.WarnContext(ctx, "authz shadow deny", "role", role, "permission", permission)
		}
		return true, nil
	default:
		return false, errors.New("authz: unknown mode")
	}
}

func subject(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = "anonymous"
	}
	return "role:" + role
}

// splitPermission maps "compensation.read.self" to ("compensation", "read.self").
func splitPermission(permission string) (string, string) {
	obj, act, found := strings.Cut(permission, ".")
	if !found {
		return permission, "*"
	}
	return obj, act
}
