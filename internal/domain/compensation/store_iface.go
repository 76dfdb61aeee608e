package compensation

import (
	"context"

	"hrdesk/internal/domain/audit"
)

type StoreAPI interface {
	GetTemplate(ctx context.Context, tenantID, employeeID string) (Template, error)
	// LockTemplate reads the current template and holds the employee's write
	// lock until the surrounding transaction ends, whether or not a row
	// exists yet. found is false when none exists.
	LockTemplate(ctx context.Context, tenantID, employeeID string) (tpl Template, found bool, err error)
	// ReplaceTemplate writes every field of t in one statement, creating the
	// row when absent, and returns the stored row. inserted is true when this
	// statement created it.
	ReplaceTemplate(ctx context.Context, tenantID string, t Template) (stored Template, inserted bool, err error)
	CountTemplates(ctx context.Context, tenantID string) (int, error)
	ListTemplates(ctx context.Context, tenantID string, limit, offset int) ([]ListedTemplate, error)
}

type ListedTemplate struct {
	Template Template
	Employee Employee
}

// Directory is the employee directory as seen from compensation.
type Directory interface {
	LookupEmployee(ctx context.Context, tenantID, employeeID string) (Employee, error)
}

type Authorizer interface {
	HasPermission(ctx context.Context, role, permission string) (bool, error)
}

type Transactor interface {
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type AuditLog interface {
	Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
	List(ctx context.Context, tenantID string, filter audit.Filter, includeDetails bool, limit, offset int) ([]audit.Event, error)
	Count(ctx context.Context, tenantID string, filter audit.Filter) (int, error)
}

type Counter interface {
	Count(event string)
}
