package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/loginpanel/internal/domain/model"
	"github.com/ericfisherdev/loginpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the CredentialStore port interface.
// Username uniqueness is enforced by the users table.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo backed by the given DB.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Verify reports whether a row matches both username and password exactly.
func (r *UserRepo) Verify(ctx context.Context, username, password string) (bool, error) {
	const query = `SELECT 1 FROM users WHERE username = ? AND password = ? LIMIT 1`

	var one int
	err := r.db.Reader.QueryRowContext(ctx, query, username, password).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verify user %q: %w", username, err)
	}
	return true, nil
}

// Register inserts a new user. Returns ErrInvalidInput for an empty field and
// ErrDuplicateUsername when the username is taken.
func (r *UserRepo) Register(ctx context.Context, cred model.Credential) error {
	if err := cred.Validate(); err != nil {
		return fmt.Errorf("register user %q: %w", cred.Username, driven.ErrInvalidInput)
	}

	const query = `INSERT INTO users (username, password) VALUES (?, ?)`
	_, err := r.db.Writer.ExecContext(ctx, query, cred.Username, cred.Password)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("register user %q: %w", cred.Username, driven.ErrDuplicateUsername)
		}
		return fmt.Errorf("register user %q: %w", cred.Username, err)
	}
	return nil
}

// Count returns the number of registered users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM users`

	var n int
	if err := r.db.Reader.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
