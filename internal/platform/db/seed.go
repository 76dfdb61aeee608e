package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/platform/config"
)

// Seed makes sure the configured tenant and its admin user exist. It is
// safe to run on every start.
func Seed(ctx context.Context, q Queryer, cfg config.Config) error {
	tenantID, err := ensureTenant(ctx, q, cfg.SeedTenantName)
	if err != nil {
		return err
	}
	return ensureAdminUser(ctx, q, tenantID, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureTenant(ctx context.Context, q Queryer, name string) (string, error) {
	var id string
	err := q.QueryRow(ctx, "SELECT id::text FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	err = q.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ($1) RETURNING id::text", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureAdminUser(ctx context.Context, q Queryer, tenantID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := q.QueryRow(ctx, "SELECT id::text FROM users WHERE tenant_id = $1 AND lower(email) = lower($2)", tenantID, email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, "INSERT INTO users (tenant_id, email, password_hash, role) VALUES ($1, $2, $3, $4)",
		tenantID, email, hash, auth.RoleAdmin)
	return err
}
