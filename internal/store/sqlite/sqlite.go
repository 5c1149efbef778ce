package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nuxflare/durable-websockets/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS display_names (
	room       TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (room, user_id)
);
`

// SQLiteStore implements store.NameStore on a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
// Use ":memory:" for an ephemeral store in tests.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetName retrieves a user's display name within a room.
func (s *SQLiteStore) GetName(ctx context.Context, room, userID string) (string, error) {
	query := `
		SELECT name
		FROM display_names
		WHERE room = ? AND user_id = ?
	`
	var name string
	err := s.db.QueryRowContext(ctx, query, room, userID).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrNotFound
		}
		return "", fmt.Errorf("query display name: %w", err)
	}

	return name, nil
}

// PutName creates or overwrites a user's display name within a room.
func (s *SQLiteStore) PutName(ctx context.Context, room, userID, name string) error {
	query := `
		INSERT INTO display_names (room, user_id, name)
		VALUES (?, ?, ?)
		ON CONFLICT (room, user_id)
		DO UPDATE SET name = excluded.name, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, room, userID, name); err != nil {
		return fmt.Errorf("upsert display name: %w", err)
	}

	return nil
}

// DeleteName removes a user's display name within a room.
func (s *SQLiteStore) DeleteName(ctx context.Context, room, userID string) error {
	query := `
		DELETE FROM display_names
		WHERE room = ? AND user_id = ?
	`
	if _, err := s.db.ExecContext(ctx, query, room, userID); err != nil {
		return fmt.Errorf("delete display name: %w", err)
	}

	return nil
}
