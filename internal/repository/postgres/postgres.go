package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oficina/auth-service/internal/domain"
	"github.com/oficina/auth-service/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.UserRepository         = (*Repository)(nil)
	_ repository.SessionTokenRepository = (*Repository)(nil)
)

const userColumns = `id, username, email, cpf, phone, profile_type, password_hash, created_at`

// CreateUser inserts a user. A unique violation on username, email or cpf is
// reported as a DuplicateError naming the offending field.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	if user == nil {
		return repository.ErrInvalidArgument
	}
	const query = `INSERT INTO users (id, username, email, cpf, phone, profile_type, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.CPF,
		user.Phone,
		user.ProfileType,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return &repository.DuplicateError{Field: duplicateField(pgErr.ConstraintName)}
		}
		return err
	}
	return nil
}

// GetUserByEmail fetches a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	row := r.pool.QueryRow(ctx, query, strings.TrimSpace(email))
	return scanUser(row)
}

// GetUserByID retrieves a user by identifier.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, strings.TrimSpace(id))
	return scanUser(row)
}

// Ping verifies database connectivity for health checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.CPF,
		&u.Phone,
		&u.ProfileType,
		&u.PasswordHash,
		&u.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// duplicateField maps a unique constraint name to the identity field it
// guards. Constraint names follow the users_<column>_key convention.
func duplicateField(constraint string) string {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(constraint, "users_"), "_key")
	switch trimmed {
	case "username", "email", "cpf":
		return trimmed
	}
	return "identity"
}
