package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/sitestock/internal/apperr"
	"github.com/erazemk/sitestock/internal/model"
)

const userColumns = `id, username, name, password_hash, role, created_at`

// CreateUser creates a new user. The username is normalized first; a
// taken username fails with DuplicateUser.
func CreateUser(ctx context.Context, db *sqlx.DB, username, name, passwordHash, role string) (*model.User, error) {
	username = model.NormalizeUsername(username)
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, name, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		username, name, passwordHash, role, time.Now().UTC(),
	)
	if isUniqueViolation(err) {
		return nil, apperr.New(apperr.DuplicateUser, "username %q is already taken", username)
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db sqlx.QueryerContext, id int64) (*model.User, error) {
	var u model.User
	err := sqlx.GetContext(ctx, db, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

// GetUserByUsername returns a user by username, or nil if absent.
func GetUserByUsername(ctx context.Context, db sqlx.QueryerContext, username string) (*model.User, error) {
	var u model.User
	err := sqlx.GetContext(ctx, db, &u,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, model.NormalizeUsername(username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return &u, nil
}

// ListUsers returns users ordered by name. An empty role lists everyone.
func ListUsers(ctx context.Context, db sqlx.QueryerContext, role string) ([]model.User, error) {
	users := []model.User{}
	var err error
	if role != "" {
		err = sqlx.SelectContext(ctx, db, &users,
			`SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY name, username`, role)
	} else {
		err = sqlx.SelectContext(ctx, db, &users,
			`SELECT `+userColumns+` FROM users ORDER BY name, username`)
	}
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// CountUsers counts users with role, or all users when role is empty.
func CountUsers(ctx context.Context, db sqlx.QueryerContext, role string) (int, error) {
	var n int
	var err error
	if role != "" {
		err = sqlx.GetContext(ctx, db, &n, `SELECT COUNT(*) FROM users WHERE role = ?`, role)
	} else {
		err = sqlx.GetContext(ctx, db, &n, `SELECT COUNT(*) FROM users`)
	}
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db sqlx.ExecerContext, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var e *sqlite.Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		(e.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(e.Error(), "UNIQUE"))
}
