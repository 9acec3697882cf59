package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound           = errors.New("store: record not found")
	ErrForbidden          = errors.New("store: record belongs to another user")
	ErrUserExists         = errors.New("store: username or email already registered")
	ErrInvalidCredentials = errors.New("store: invalid username or password")
)

// Store persists users, their statistics and the debate archive in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes the SQLite database at path, creating the schema if needed.
// ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// one connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	pragmas := `
	PRAGMA foreign_keys = ON;
	PRAGMA busy_timeout = 5000;
	`

	usersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`

	statsTable := `
	CREATE TABLE IF NOT EXISTS user_stats (
		username TEXT PRIMARY KEY REFERENCES users(username) ON DELETE CASCADE,
		debates_won INTEGER NOT NULL DEFAULT 0,
		debates_lost INTEGER NOT NULL DEFAULT 0,
		debates_drawn INTEGER NOT NULL DEFAULT 0,
		avg_logicalConsistency REAL NOT NULL DEFAULT 0,
		avg_evidenceAndExamples REAL NOT NULL DEFAULT 0,
		avg_clarityAndConcision REAL NOT NULL DEFAULT 0,
		avg_rebuttalEffectiveness REAL NOT NULL DEFAULT 0,
		avg_overallPersuasiveness REAL NOT NULL DEFAULT 0
	);
	`

	historyTable := `
	CREATE TABLE IF NOT EXISTS debate_history (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		debate_mode TEXT NOT NULL,
		debate_topic TEXT NOT NULL,
		debate_state TEXT NOT NULL,
		chat_history TEXT NOT NULL,
		final_results TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_user ON debate_history(username, created_at);
	`

	for _, stmt := range []string{pragmas, usersTable, statsTable, historyTable} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: create schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	return s.db.Close()
}
