package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUser registers a user and gives them a zeroed statistics row.
func (s *Store) CreateUser(ctx context.Context, name, email, username, password string) (User, error) {
	name, email, username = strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(username)
	if name == "" || email == "" || username == "" || password == "" {
		return User{}, errors.New("store: name, email, username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("store: hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	var taken int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`, username, email).Scan(&taken)
	if err != nil {
		return User{}, fmt.Errorf("store: check user: %w", err)
	}
	if taken > 0 {
		return User{}, ErrUserExists
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (name, email, username, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		name, email, username, string(hash), now.UnixNano())
	if err != nil {
		return User{}, fmt.Errorf("store: insert user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO user_stats (username) VALUES (?)`, username); err != nil {
		return User{}, fmt.Errorf("store: insert stats: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return User{}, fmt.Errorf("store: commit: %w", err)
	}

	id, _ := res.LastInsertId()
	return User{ID: id, Name: name, Email: email, Username: username, CreatedAt: now}, nil
}

// Authenticate checks a username/password pair.
func (s *Store) Authenticate(ctx context.Context, username, password string) (User, error) {
	var (
		u       User
		hash    string
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, username, password_hash, created_at FROM users WHERE username = ?`,
		strings.TrimSpace(username)).Scan(&u.ID, &u.Name, &u.Email, &u.Username, &hash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("store: load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	u.CreatedAt = time.Unix(0, created).UTC()
	return u, nil
}
