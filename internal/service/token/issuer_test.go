package token

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/oficina/auth-service/internal/domain"
	"github.com/oficina/auth-service/internal/repository"
)

type tokenRepoMock struct {
	createFunc        func(ctx context.Context, token *domain.SessionToken) error
	getFunc           func(ctx context.Context, digest string) (*domain.SessionToken, error)
	revokeFunc        func(ctx context.Context, digest string, at time.Time) error
	deleteExpiredFunc func(ctx context.Context, before time.Time) (int64, error)
}

func (m *tokenRepoMock) CreateSessionToken(ctx context.Context, token *domain.SessionToken) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, token)
	}
	return nil
}

func (m *tokenRepoMock) GetSessionToken(ctx context.Context, digest string) (*domain.SessionToken, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, digest)
	}
	return nil, repository.ErrNotFound
}

func (m *tokenRepoMock) RevokeSessionToken(ctx context.Context, digest string, at time.Time) error {
	if m.revokeFunc != nil {
		return m.revokeFunc(ctx, digest, at)
	}
	return nil
}

func (m *tokenRepoMock) DeleteExpiredSessionTokens(ctx context.Context, before time.Time) (int64, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx, before)
	}
	return 0, nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryTokenRepo backs issue-then-validate tests with a real map.
type memoryTokenRepo struct {
	records map[string]*domain.SessionToken
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{records: make(map[string]*domain.SessionToken)}
}

func (m *memoryTokenRepo) CreateSessionToken(_ context.Context, token *domain.SessionToken) error {
	copied := *token
	m.records[token.Digest] = &copied
	return nil
}

func (m *memoryTokenRepo) GetSessionToken(_ context.Context, digest string) (*domain.SessionToken, error) {
	record, ok := m.records[digest]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *memoryTokenRepo) RevokeSessionToken(_ context.Context, digest string, at time.Time) error {
	if record, ok := m.records[digest]; ok && record.RevokedAt == nil {
		stamped := at
		record.RevokedAt = &stamped
	}
	return nil
}

func (m *memoryTokenRepo) DeleteExpiredSessionTokens(_ context.Context, before time.Time) (int64, error) {
	var deleted int64
	for digest, record := range m.records {
		if record.ExpiresAt.Before(before) {
			delete(m.records, digest)
			deleted++
		}
	}
	return deleted, nil
}

func TestIssueThenValidateReturnsOwner(t *testing.T) {
	repo := newMemoryTokenRepo()
	issuer := NewIssuer(repo, newLogger(), time.Hour)

	raw, record, err := issuer.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if raw == "" {
		t.Fatalf("expected raw token")
	}
	if record.Digest != Digest(raw) {
		t.Fatalf("record digest does not match raw token")
	}
	if record.UserID != "user-1" {
		t.Fatalf("unexpected owner: %s", record.UserID)
	}

	userID, err := issuer.Validate(context.Background(), raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("unexpected user id: %s", userID)
	}
}

func TestIssueGeneratesDistinctTokens(t *testing.T) {
	repo := newMemoryTokenRepo()
	issuer := NewIssuer(repo, newLogger(), time.Hour)

	first, _, err := issuer.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, _, err := issuer.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct tokens per issuance")
	}
	if _, err := issuer.Validate(context.Background(), first); err != nil {
		t.Fatalf("expected first token valid alongside second: %v", err)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	issuer := NewIssuer(&tokenRepoMock{}, newLogger(), time.Hour)
	if _, err := issuer.Validate(context.Background(), "no-such-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := issuer.Validate(context.Background(), "   "); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for blank token, got %v", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	repo := &tokenRepoMock{
		getFunc: func(_ context.Context, digest string) (*domain.SessionToken, error) {
			return &domain.SessionToken{
				Digest:    digest,
				UserID:    "user-1",
				IssuedAt:  time.Now().Add(-2 * time.Hour),
				ExpiresAt: time.Now().Add(-time.Hour),
			}, nil
		},
	}
	issuer := NewIssuer(repo, newLogger(), time.Hour)
	if _, err := issuer.Validate(context.Background(), "expired"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateRevokedToken(t *testing.T) {
	repo := newMemoryTokenRepo()
	issuer := NewIssuer(repo, newLogger(), time.Hour)

	raw, _, err := issuer.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := issuer.Revoke(context.Background(), raw); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := issuer.Validate(context.Background(), raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after revocation, got %v", err)
	}
}

func TestRevokeUnknownTokenIsIdempotent(t *testing.T) {
	repo := newMemoryTokenRepo()
	issuer := NewIssuer(repo, newLogger(), time.Hour)

	if err := issuer.Revoke(context.Background(), "never-issued"); err != nil {
		t.Fatalf("expected unknown revoke to succeed, got %v", err)
	}

	raw, _, err := issuer.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := issuer.Revoke(context.Background(), raw); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := issuer.Revoke(context.Background(), raw); err != nil {
		t.Fatalf("expected second revoke to succeed, got %v", err)
	}
}

func TestSweepPurgesExpiredRows(t *testing.T) {
	repo := newMemoryTokenRepo()
	issuer := NewIssuer(repo, newLogger(), time.Hour)

	expired := &domain.SessionToken{
		Digest:    Digest("old"),
		UserID:    "user-1",
		IssuedAt:  time.Now().Add(-48 * time.Hour),
		ExpiresAt: time.Now().Add(-24 * time.Hour),
	}
	if err := repo.CreateSessionToken(context.Background(), expired); err != nil {
		t.Fatalf("seed: %v", err)
	}
	raw, _, err := issuer.Issue(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	issuer.sweep(context.Background())

	if _, err := repo.GetSessionToken(context.Background(), expired.Digest); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected expired row gone, got %v", err)
	}
	if _, err := issuer.Validate(context.Background(), raw); err != nil {
		t.Fatalf("expected live token to survive sweep: %v", err)
	}
}
