// ABOUTME: User profile persistence.
// ABOUTME: Upserts overwrite both display fields, last write wins.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/trainload/internal/models"
)

// ErrUserNotFound is returned by GetUser for an unknown id.
var ErrUserNotFound = errors.New("user not found")

// UpsertUser creates the user or replaces its names.
func (d *DB) UpsertUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		return fmt.Errorf("upsert user: empty user id")
	}
	_, err := d.db.ExecContext(ctx, d.rebind(`
		INSERT INTO users (user_id, full_name, display_name)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = excluded.full_name,
			display_name = excluded.display_name
	`), u.ID, argString(u.FullName), argString(u.DisplayName))
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by id.
func (d *DB) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var (
		u                     models.User
		fullName, displayName sql.NullString
	)
	err := d.db.QueryRowContext(ctx, d.rebind(`
		SELECT user_id, full_name, display_name FROM users WHERE user_id = ?
	`), userID).Scan(&u.ID, &fullName, &displayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.FullName = ptrString(fullName)
	u.DisplayName = ptrString(displayName)
	return &u, nil
}

func (d *DB) listUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT user_id, full_name, display_name FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		var (
			u                     models.User
			fullName, displayName sql.NullString
		)
		if err := rows.Scan(&u.ID, &fullName, &displayName); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.FullName = ptrString(fullName)
		u.DisplayName = ptrString(displayName)
		out = append(out, &u)
	}
	return out, rows.Err()
}
