package core

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"hrdesk/internal/domain/compensation"
	"hrdesk/internal/platform/db"
)

// Store reads employee directory records.
type Store struct {
	DB db.Queryer
}

func NewStore(q db.Queryer) *Store {
	return &Store{DB: q}
}

// LookupEmployee resolves an employee within the tenant. Identifiers that
// are not UUIDs cannot exist and are reported as not found.
func (s *Store) LookupEmployee(ctx context.Context, tenantID, employeeID string) (compensation.Employee, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return compensation.Employee{}, compensation.ErrEmployeeNotFound
	}

	var emp compensation.Employee
	err := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    SELECT id::text, COALESCE(user_id::text, ''), first_name, last_name, email
    FROM employees
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID).Scan(&emp.ID, &emp.UserID, &emp.FirstName, &emp.LastName, &emp.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return compensation.Employee{}, compensation.ErrEmployeeNotFound
	}
	if err != nil {
		return compensation.Employee{}, err
	}
	return emp, nil
}
