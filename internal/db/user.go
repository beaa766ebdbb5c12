package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"postboard/internal/metrics"
	"postboard/internal/models"
)

// CreateUser stores a user with an already hashed password.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	defer metrics.ObserveQuery("create_user")()

	joined := s.now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password, date_joined) VALUES (?, ?, ?)`,
		username, passwordHash, joined)
	if isUniqueViolation(err) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &models.User{ID: id, Username: username, DateJoined: joined}, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `SELECT id, username, date_joined FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.DateJoined)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

// Credentials returns the user and stored password hash for username.
func (s *Store) Credentials(ctx context.Context, username string) (*models.User, string, error) {
	var (
		u    models.User
		hash string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, date_joined, password FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.DateJoined, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrUserNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("get credentials: %w", err)
	}
	return &u, hash, nil
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&n); err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return n > 0, nil
}

// DeleteUser removes the user. Their posts, likes and SQL sessions cascade.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	defer metrics.ObserveQuery("delete_user")()

	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return expectRow(res, ErrUserNotFound)
}
