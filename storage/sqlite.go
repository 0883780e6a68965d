package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"

	"promptedit/config"
)

const (
	keyConversations = "conversations"
	keyActive        = "active_conversation"
)

// SQLiteStore persists the state in a single-file sqlite database as two
// key/value rows: the conversation collection as a JSON array and the active
// conversation id as plain text. One transaction per save keeps the two rows
// consistent.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database in dataDir
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := config.EnsureDir(dataDir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "conversations.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Load reads the persisted state. Returns nil when the conversations row has
// never been written.
func (s *SQLiteStore) Load() (*State, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, keyConversations).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read conversations: %w", err)
	}

	var conversations []Conversation
	if err := json.Unmarshal([]byte(raw), &conversations); err != nil {
		return nil, fmt.Errorf("failed to parse stored conversations: %w", err)
	}

	state := &State{Conversations: conversations}

	var active string
	err = s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, keyActive).Scan(&active)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to read active conversation: %w", err)
	}
	state.ActiveID = active

	return state, nil
}

// Save writes the whole state in one transaction
func (s *SQLiteStore) Save(state *State) error {
	data, err := json.Marshal(state.Conversations)
	if err != nil {
		return fmt.Errorf("failed to encode conversations: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`

	if _, err := tx.Exec(upsert, keyConversations, string(data)); err != nil {
		return fmt.Errorf("failed to write conversations: %w", err)
	}

	if state.ActiveID == "" {
		if _, err := tx.Exec(`DELETE FROM kv WHERE key = ?`, keyActive); err != nil {
			return fmt.Errorf("failed to clear active conversation: %w", err)
		}
	} else {
		if _, err := tx.Exec(upsert, keyActive, state.ActiveID); err != nil {
			return fmt.Errorf("failed to write active conversation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}

	return nil
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
