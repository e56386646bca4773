package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmanzanog/bond-tracker/internal/domain"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := r.db.rebind(`INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`)

	email := sql.NullString{String: u.Email, Valid: u.Email != ""}
	if _, err := r.db.ExecContext(ctx, query, u.ID, u.Username, email, u.PasswordHash, u.CreatedAt); err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := r.db.rebind(`SELECT id, username, email, password_hash, created_at
		FROM users WHERE username = $1`)

	var u domain.User
	var email sql.NullString
	err := r.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	u.Email = email.String
	return &u, nil
}
