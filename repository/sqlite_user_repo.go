package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"prcontacts-backend/models"
	"prcontacts-backend/utils/logger"
)

const userColumns = `id, email, name, password_hash, roles, created_at, updated_at`

// SQLiteUserRepository stores API users in SQLite
type SQLiteUserRepository struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func (r *SQLiteUserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, user.Email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("user with email %s already exists: %w", user.Email, models.ErrConflict)
	}

	prepareUser(user, r.now())
	roles, err := json.Marshal(user.Roles)
	if err != nil {
		return nil, fmt.Errorf("failed to encode roles: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.PasswordHash, string(roles),
		toUnixNano(user.CreatedAt), toUnixNano(user.UpdatedAt))
	if err != nil {
		r.logger.Errorf("Failed to create user: %v", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Infof("User created successfully: %s", user.ID)
	return user, nil
}

func (r *SQLiteUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFoundError("User", id)
	}
	return user, err
}

func (r *SQLiteUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFoundError("User", email)
	}
	return user, err
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u         models.User
		roles     string
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &roles, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(roles), &u.Roles); err != nil {
		return nil, fmt.Errorf("failed to decode roles of %s: %w", u.ID, err)
	}
	u.CreatedAt = fromUnixNano(createdAt)
	u.UpdatedAt = fromUnixNano(updatedAt)
	return &u, nil
}
