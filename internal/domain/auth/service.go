package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type UserStore interface {
	FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error)
	UpdateLastLogin(ctx context.Context, userID string) error
}

type Service struct {
	Store    UserStore
	Secret   string
	TokenTTL time.Duration
}

func NewService(store UserStore, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TokenTTL: ttl}
}

// Login verifies the credentials and issues a bearer token for the user.
func (s *Service) Login(ctx context.Context, email, password string) (string, AuthUser, error) {
	user, err := s.Store.FindActiveUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, pgx.ErrNoRows) {
		return "", AuthUser{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", AuthUser{}, err
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return "", AuthUser{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.Secret, Claims{UserID: user.ID, TenantID: user.TenantID, RoleName: user.RoleName}, s.TokenTTL)
	if err != nil {
		return "", AuthUser{}, err
	}
	if err := s.Store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.WarnContext(ctx, "update last login failed", "userId", user.ID, "err", err)
	}
	return token, user, nil
}
