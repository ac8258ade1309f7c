package token

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oficina/auth-service/internal/domain"
	"github.com/oficina/auth-service/internal/repository"
)

// ErrInvalidToken covers unknown, expired and revoked tokens alike. Callers
// must not distinguish the three cases towards clients.
var ErrInvalidToken = errors.New("token: invalid")

const defaultTTL = 24 * time.Hour

// Issuer mints and validates opaque session tokens. The raw token is random
// and carries no claims; validity is decided purely by store lookup, which is
// what makes revocation immediate.
type Issuer struct {
	tokens repository.SessionTokenRepository
	logger *slog.Logger
	ttl    time.Duration
}

// NewIssuer constructs an Issuer. A non-positive ttl falls back to 24h.
func NewIssuer(tokens repository.SessionTokenRepository, logger *slog.Logger, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Issuer{tokens: tokens, logger: logger, ttl: ttl}
}

// Issue creates a token for the user and persists its digest. The returned
// string is the only copy of the raw token.
func (i *Issuer) Issue(ctx context.Context, userID string) (string, *domain.SessionToken, error) {
	raw, err := randomToken()
	if err != nil {
		return "", nil, err
	}
	now := time.Now().UTC()
	record := &domain.SessionToken{
		Digest:    Digest(raw),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.ttl),
	}
	if err := i.tokens.CreateSessionToken(ctx, record); err != nil {
		return "", nil, fmt.Errorf("persist session token: %w", err)
	}
	return raw, record, nil
}

// Validate resolves a raw token to its owning user id. Unknown, expired and
// revoked tokens all return ErrInvalidToken.
func (i *Issuer) Validate(ctx context.Context, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidToken
	}
	record, err := i.tokens.GetSessionToken(ctx, Digest(trimmed))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if !record.Active(time.Now()) {
		return "", ErrInvalidToken
	}
	return record.UserID, nil
}

// Revoke invalidates a token. Revoking an unknown or already revoked token is
// indistinguishable from success, so token existence never leaks.
func (i *Issuer) Revoke(ctx context.Context, raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return i.tokens.RevokeSessionToken(ctx, Digest(trimmed), time.Now().UTC())
}

// Run periodically purges expired token rows until the context is cancelled.
func (i *Issuer) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			i.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (i *Issuer) sweep(ctx context.Context) {
	deleted, err := i.tokens.DeleteExpiredSessionTokens(ctx, time.Now().UTC())
	if err != nil {
		if i.logger != nil {
			i.logger.Error("token sweep failed", "error", err)
		}
		return
	}
	if deleted > 0 && i.logger != nil {
		i.logger.Info("expired tokens purged", "count", deleted)
	}
}

// Digest returns the hex SHA-256 of a raw token, the only form that touches
// storage.
func Digest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
