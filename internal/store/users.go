package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mhodnik/toolbin/internal/model"
)

const userColumns = `id, email, password_hash, active, created_at`

// CreateUser creates a new active user account. A duplicate email surfaces
// as an Exists error.
func CreateUser(ctx context.Context, db *sql.DB, email, passwordHash string) (*model.User, error) {
	id := uuid.New()
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)`,
		id, email, passwordHash,
	)
	if isUniqueViolation(err) {
		return nil, Exists("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id uuid.UUID) (*model.User, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

// GetUserByEmail returns a user by email.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("user", uuid.Nil)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return user, nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id uuid.UUID, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// SetUserActive flips a user's active flag. Inactive users cannot
// authenticate; their tools stay in place.
func SetUserActive(ctx context.Context, db *sql.DB, id uuid.UUID, active bool) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET active = ? WHERE id = ?`,
		active, id,
	)
	if err != nil {
		return fmt.Errorf("setting user active flag: %w", err)
	}
	return nil
}

func scanUser(s rowScanner) (*model.User, error) {
	user := &model.User{}
	err := s.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Active, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}
