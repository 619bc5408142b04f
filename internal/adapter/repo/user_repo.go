package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pawws/internal/domain"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

// Create inserts a new user. A duplicate email maps to ErrEmailTaken.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) error {
	row := r.pool.QueryRow(ctx, `
INSERT INTO users (email, password_hash, role)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at;
`, user.Email, user.PasswordHash, user.Role)
	if err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByEmail looks up a user for login.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, role, created_at, updated_at
FROM users
WHERE email = $1;
`, email)
	return scanUser(row)
}

// GetByID returns a user by primary key.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, email, password_hash, role, created_at, updated_at
FROM users
WHERE id = $1;
`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
