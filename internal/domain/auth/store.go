package auth

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const UserStatusActive = "active"

// Queryer is the part of a pgx pool the user store needs.
type Queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Store struct {
	DB Queryer
}

func NewStore(q Queryer) *Store {
	return &Store{DB: q}
}

type AuthUser struct {
	ID       string
	TenantID string
	RoleName string
	Password string
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, tenant_id::text, role, password_hash
    FROM users
    WHERE lower(email) = lower($1) AND status = $2
  `, email, UserStatusActive).Scan(&out.ID, &out.TenantID, &out.RoleName, &out.Password)
	return out, err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}
