package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/oficina/auth-service/internal/domain"
	"github.com/oficina/auth-service/internal/repository"
	"github.com/oficina/auth-service/pkg/crypto"
)

// ErrInvalidCredentials is the single failure returned for every login or
// token problem. Unknown email, wrong password and dead tokens are not
// distinguishable, which blocks user enumeration.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// TokenIssuer mints, validates and revokes opaque session tokens.
type TokenIssuer interface {
	Issue(ctx context.Context, userID string) (string, *domain.SessionToken, error)
	Validate(ctx context.Context, raw string) (string, error)
	Revoke(ctx context.Context, raw string) error
}

// Service handles registration and session workflows.
type Service struct {
	users       repository.UserRepository
	tokens      TokenIssuer
	hasher      *crypto.PasswordHasher
	logger      *slog.Logger
	decoyDigest string
}

// New constructs a Service. The decoy digest keeps login latency flat when
// the email is unknown.
func New(users repository.UserRepository, tokens TokenIssuer, hasher *crypto.PasswordHasher, logger *slog.Logger) Service {
	decoy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		decoy = ""
	}
	return Service{users: users, tokens: tokens, hasher: hasher, logger: logger, decoyDigest: decoy}
}

// Session pairs a raw token with its issuance record.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Register validates input, hashes the password and persists the user.
// Duplicate username, email or cpf surfaces as repository.DuplicateError.
func (s Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	normalized, err := input.validate()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(normalized.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     normalized.Username,
		Email:        normalized.Email,
		CPF:          normalized.CPF,
		Phone:        normalized.Phone,
		ProfileType:  normalized.ProfileType,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID, "profile_type", user.ProfileType)
	return user, nil
}

// Login authenticates by email and password and issues a session token.
// Both failure modes collapse into ErrInvalidCredentials.
func (s Service) Login(ctx context.Context, email, password string) (*domain.User, Session, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn the same hashing cost as a real verification.
			s.hasher.Verify(password, s.decoyDigest)
			return nil, Session{}, ErrInvalidCredentials
		}
		return nil, Session{}, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, Session{}, ErrInvalidCredentials
	}
	raw, record, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, Session{}, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, Session{Token: raw, ExpiresAt: record.ExpiresAt}, nil
}

// Logout revokes the token. The operation always succeeds towards the
// caller; storage failures are logged and swallowed so token existence
// cannot be probed through the logout endpoint.
func (s Service) Logout(ctx context.Context, raw string) {
	if err := s.tokens.Revoke(ctx, raw); err != nil {
		s.logger.Warn("token revocation failed", "error", err)
		return
	}
	s.logger.Info("session revoked")
}

// CurrentUser resolves the token to its owning user.
func (s Service) CurrentUser(ctx context.Context, raw string) (*domain.User, error) {
	userID, err := s.tokens.Validate(ctx, raw)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}
