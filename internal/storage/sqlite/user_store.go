package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goodtune/devtime/internal/storage"
)

type userStore struct {
	db *sql.DB
}

func (s *userStore) Get(ctx context.Context, id string) (*storage.User, error) {
	var user storage.User
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, timezone, created_at FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.Timezone, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading user: %w", err)
	}

	if user.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing user created_at: %w", err)
	}
	return &user, nil
}

// Upsert keeps the original created_at of an existing user.
func (s *userStore) Upsert(ctx context.Context, user storage.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, timezone, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET timezone = excluded.timezone`,
		user.ID, user.Timezone, user.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

func (s *userStore) List(ctx context.Context) ([]storage.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, timezone, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []storage.User
	for rows.Next() {
		var user storage.User
		var createdAt string
		if err := rows.Scan(&user.ID, &user.Timezone, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		if user.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing user created_at: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
