package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/oficina/auth-service/internal/domain"
	"github.com/oficina/auth-service/internal/repository"
	"github.com/oficina/auth-service/pkg/crypto"
)

type userRepoMock struct {
	createFunc     func(ctx context.Context, user *domain.User) error
	getByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	getByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
}

func (m userRepoMock) CreateUser(ctx context.Context, user *domain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m userRepoMock) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, repository.ErrNotFound
}

func (m userRepoMock) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

type issuerMock struct {
	issueFunc    func(ctx context.Context, userID string) (string, *domain.SessionToken, error)
	validateFunc func(ctx context.Context, raw string) (string, error)
	revokeFunc   func(ctx context.Context, raw string) error
}

func (m issuerMock) Issue(ctx context.Context, userID string) (string, *domain.SessionToken, error) {
	if m.issueFunc != nil {
		return m.issueFunc(ctx, userID)
	}
	return "issued-token", &domain.SessionToken{UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (m issuerMock) Validate(ctx context.Context, raw string) (string, error) {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, raw)
	}
	return "", errors.New("token: invalid")
}

func (m issuerMock) Revoke(ctx context.Context, raw string) error {
	if m.revokeFunc != nil {
		return m.revokeFunc(ctx, raw)
	}
	return nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHasher() *crypto.PasswordHasher {
	return crypto.NewPasswordHasher(crypto.Params{MemoryKB: 1024, Iterations: 1, Parallelism: 1})
}

func validInput() RegisterInput {
	return RegisterInput{
		Username:    "ana",
		Email:       "ana@x.com",
		CPF:         "52998224725",
		Phone:       "11999990000",
		ProfileType: domain.ProfileStudent,
		Password:    "secret1",
	}
}

func TestRegisterCreatesUserWithHash(t *testing.T) {
	hasher := newHasher()
	var created *domain.User
	users := userRepoMock{
		createFunc: func(_ context.Context, user *domain.User) error {
			created = user
			return nil
		},
	}
	svc := New(users, issuerMock{}, hasher, newLogger())

	user, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created == nil {
		t.Fatalf("expected user persisted")
	}
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}
	if user.PasswordHash == "secret1" || user.PasswordHash == "" {
		t.Fatalf("expected derived password hash, got %q", user.PasswordHash)
	}
	if !hasher.Verify("secret1", user.PasswordHash) {
		t.Fatalf("expected stored hash to verify original password")
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	svc := New(userRepoMock{
		createFunc: func(context.Context, *domain.User) error {
			t.Fatalf("store must not be reached for invalid input")
			return nil
		},
	}, issuerMock{}, newHasher(), newLogger())

	input := validInput()
	input.Email = "not-an-email"
	input.Password = "short"
	_, err := svc.Register(context.Background(), input)

	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if _, ok := fields["email"]; !ok {
		t.Fatalf("expected email error, got %v", fields)
	}
	if _, ok := fields["password"]; !ok {
		t.Fatalf("expected password error, got %v", fields)
	}
}

func TestRegisterSurfacesDuplicateIdentity(t *testing.T) {
	users := userRepoMock{
		createFunc: func(context.Context, *domain.User) error {
			return &repository.DuplicateError{Field: "email"}
		},
	}
	svc := New(users, issuerMock{}, newHasher(), newLogger())

	_, err := svc.Register(context.Background(), validInput())
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	var dup *repository.DuplicateError
	if !errors.As(err, &dup) || dup.Field != "email" {
		t.Fatalf("expected duplicate field email, got %v", err)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	hasher := newHasher()
	hash, err := hasher.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := userRepoMock{
		getByEmailFunc: func(_ context.Context, email string) (*domain.User, error) {
			if email != "ana@x.com" {
				t.Fatalf("unexpected email lookup: %s", email)
			}
			return &domain.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
		},
	}
	expiry := time.Now().Add(24 * time.Hour)
	issuer := issuerMock{
		issueFunc: func(_ context.Context, userID string) (string, *domain.SessionToken, error) {
			if userID != "user-1" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			return "raw-token", &domain.SessionToken{UserID: userID, ExpiresAt: expiry}, nil
		},
	}
	svc := New(users, issuer, hasher, newLogger())

	user, session, err := svc.Login(context.Background(), " Ana@X.com ", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if session.Token != "raw-token" || !session.ExpiresAt.Equal(expiry) {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	hasher := newHasher()
	hash, err := hasher.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := userRepoMock{
		getByEmailFunc: func(_ context.Context, email string) (*domain.User, error) {
			if email == "ana@x.com" {
				return &domain.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
			}
			return nil, repository.ErrNotFound
		},
	}
	svc := New(users, issuerMock{}, hasher, newLogger())

	_, _, unknownErr := svc.Login(context.Background(), "ghost@x.com", "secret1")
	_, _, wrongErr := svc.Login(context.Background(), "ana@x.com", "wrong")
	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("expected identical error text, got %q vs %q", unknownErr, wrongErr)
	}
}

func TestLogoutSwallowsRevocationFailure(t *testing.T) {
	issuer := issuerMock{
		revokeFunc: func(context.Context, string) error {
			return errors.New("store down")
		},
	}
	svc := New(userRepoMock{}, issuer, newHasher(), newLogger())
	// Must not panic or surface the failure.
	svc.Logout(context.Background(), "any-token")
}

func TestCurrentUserResolvesToken(t *testing.T) {
	users := userRepoMock{
		getByIDFunc: func(_ context.Context, id string) (*domain.User, error) {
			if id != "user-1" {
				t.Fatalf("unexpected id lookup: %s", id)
			}
			return &domain.User{ID: id, Username: "ana"}, nil
		},
	}
	issuer := issuerMock{
		validateFunc: func(_ context.Context, raw string) (string, error) {
			if raw != "raw-token" {
				t.Fatalf("unexpected token: %s", raw)
			}
			return "user-1", nil
		},
	}
	svc := New(users, issuer, newHasher(), newLogger())

	user, err := svc.CurrentUser(context.Background(), "raw-token")
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if user.Username != "ana" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestCurrentUserInvalidToken(t *testing.T) {
	svc := New(userRepoMock{}, issuerMock{}, newHasher(), newLogger())
	if _, err := svc.CurrentUser(context.Background(), "dead-token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
