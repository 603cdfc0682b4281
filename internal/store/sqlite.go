package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS session_values (
		user_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, key)
	);
	CREATE INDEX IF NOT EXISTS idx_session_values_key ON session_values(key);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get retrieves a named value for a user.
func (s *SQLiteStore) Get(ctx context.Context, userID, key string) (string, bool, error) {
	query := `SELECT value FROM session_values WHERE user_id = ? AND key = ?`

	var value string
	err := s.db.QueryRowContext(ctx, query, userID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("scan session value: %w", err)
	}
	return value, true, nil
}

// Set creates or replaces a named value for a user.
func (s *SQLiteStore) Set(ctx context.Context, userID, key, value string) error {
	query := `
	INSERT INTO session_values (user_id, key, value, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id, key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query, userID, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("set session value %q: %w", key, err)
	}
	return nil
}

// Delete removes a named value for a user.
func (s *SQLiteStore) Delete(ctx context.Context, userID, key string) error {
	query := `DELETE FROM session_values WHERE user_id = ? AND key = ?`

	if _, err := s.db.ExecContext(ctx, query, userID, key); err != nil {
		return fmt.Errorf("delete session value %q: %w", key, err)
	}
	return nil
}

// ValuesByKey returns the stored value under key for every user that has one.
func (s *SQLiteStore) ValuesByKey(ctx context.Context, key string) (map[string]string, error) {
	query := `SELECT user_id, value FROM session_values WHERE key = ?`

	rows, err := s.db.QueryContext(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("query session values by key: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var userID, value string
		if err := rows.Scan(&userID, &value); err != nil {
			return nil, fmt.Errorf("scan session value row: %w", err)
		}
		values[userID] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session value rows: %w", err)
	}
	return values, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
