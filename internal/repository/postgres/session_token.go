package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oficina/auth-service/internal/domain"
	"github.com/oficina/auth-service/internal/repository"
)

const sessionTokenSelect = `SELECT digest, user_id, issued_at, expires_at, revoked_at
	FROM session_tokens WHERE digest = $1`

// CreateSessionToken persists a newly issued token record.
func (r *Repository) CreateSessionToken(ctx context.Context, token *domain.SessionToken) error {
	if token == nil || strings.TrimSpace(token.Digest) == "" {
		return repository.ErrInvalidArgument
	}
	const query = `INSERT INTO session_tokens (digest, user_id, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query,
		token.Digest,
		token.UserID,
		token.IssuedAt.UTC(),
		token.ExpiresAt.UTC(),
	)
	return err
}

// GetSessionToken fetches a token record by digest.
func (r *Repository) GetSessionToken(ctx context.Context, digest string) (*domain.SessionToken, error) {
	row := r.pool.QueryRow(ctx, sessionTokenSelect, strings.TrimSpace(digest))
	return scanSessionToken(row)
}

// RevokeSessionToken stamps the token as revoked. Revoking a token that is
// unknown or already revoked affects zero rows and is not an error, so the
// operation stays idempotent.
func (r *Repository) RevokeSessionToken(ctx context.Context, digest string, at time.Time) error {
	const query = `UPDATE session_tokens
		SET revoked_at = $2
		WHERE digest = $1 AND revoked_at IS NULL`
	_, err := r.pool.Exec(ctx, query, strings.TrimSpace(digest), at.UTC())
	return err
}

// DeleteExpiredSessionTokens removes token rows whose expiry passed before
// the cutoff and returns how many were deleted.
func (r *Repository) DeleteExpiredSessionTokens(ctx context.Context, expiredBefore time.Time) (int64, error) {
	const query = `DELETE FROM session_tokens WHERE expires_at < $1`
	tag, err := r.pool.Exec(ctx, query, expiredBefore.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanSessionToken(row pgx.Row) (*domain.SessionToken, error) {
	var (
		token     domain.SessionToken
		revokedAt sql.NullTime
	)
	if err := row.Scan(
		&token.Digest,
		&token.UserID,
		&token.IssuedAt,
		&token.ExpiresAt,
		&revokedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if revokedAt.Valid {
		value := revokedAt.Time.UTC()
		token.RevokedAt = &value
	}
	return &token, nil
}
