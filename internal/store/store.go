// Package store persists console conversation history to SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/VoxDesk/voxdesk/pkg/types"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists sessions to a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store at the given path
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps concurrent reads cheap while the poller is writing
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS conversations (
			key TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL DEFAULT '',
			messages TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save persists a session transcript to the database (upsert)
func (s *SQLiteStore) Save(key, conversationID string, messages []types.Message) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO conversations (key, conversation_id, messages, updated_at)
		VALUES (?, ?, ?, ?)
	`, key, conversationID, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load reads a session transcript from the database
func (s *SQLiteStore) Load(key string) (string, []types.Message, error) {
	var conversationID, data string
	err := s.db.QueryRow(`
		SELECT conversation_id, messages FROM conversations WHERE key = ?
	`, key).Scan(&conversationID, &data)
	if err == sql.ErrNoRows {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load session: %w", err)
	}

	var messages []types.Message
	if err := json.Unmarshal([]byte(data), &messages); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	return conversationID, messages, nil
}

// Delete removes a session from the database
func (s *SQLiteStore) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM conversations WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListKeys returns all session keys in the database
func (s *SQLiteStore) ListKeys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM conversations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
