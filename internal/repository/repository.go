package repository

import (
	"context"
	"time"

	"github.com/oficina/auth-service/internal/domain"
)

// UserRepository persists users. Uniqueness of username, email and cpf is
// enforced by the store itself; a violation surfaces as a DuplicateError.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// SessionTokenRepository persists issued session tokens keyed by digest.
type SessionTokenRepository interface {
	CreateSessionToken(ctx context.Context, token *domain.SessionToken) error
	GetSessionToken(ctx context.Context, digest string) (*domain.SessionToken, error)
	RevokeSessionToken(ctx context.Context, digest string, at time.Time) error
	DeleteExpiredSessionTokens(ctx context.Context, expiredBefore time.Time) (int64, error)
}
