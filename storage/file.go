package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"promptedit/config"
)

const (
	conversationsFile = "conversations.json"
	activeFile        = "active_conversation.id"
)

// FileStore persists the whole state as one pretty-printed JSON file in the
// data directory, with the active conversation id in a sidecar file next to
// it. Human-inspectable and trivially diffable.
type FileStore struct {
	dataDir string
}

// NewFileStore creates a file-backed persistence port rooted at dataDir
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := config.EnsureDir(dataDir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dataDir: dataDir}, nil
}

func (f *FileStore) conversationsPath() string {
	return filepath.Join(f.dataDir, conversationsFile)
}

func (f *FileStore) activePath() string {
	return filepath.Join(f.dataDir, activeFile)
}

// Load reads the persisted state. Returns nil when no state has been saved
// yet so the store can seed its first conversation.
func (f *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(f.conversationsPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read conversations file: %w", err)
	}

	var conversations []Conversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		return nil, fmt.Errorf("failed to parse conversations file: %w", err)
	}

	state := &State{Conversations: conversations}

	// A missing or unreadable sidecar is not fatal; the store repoints the
	// active id to the first conversation.
	if raw, err := os.ReadFile(f.activePath()); err == nil {
		state.ActiveID = strings.TrimSpace(string(raw))
	}

	return state, nil
}

// Save writes the whole state back to disk
func (f *FileStore) Save(state *State) error {
	data, err := json.MarshalIndent(state.Conversations, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode conversations: %w", err)
	}

	if err := os.WriteFile(f.conversationsPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write conversations file: %w", err)
	}

	if state.ActiveID == "" {
		if err := os.Remove(f.activePath()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove active conversation file: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(f.activePath(), []byte(state.ActiveID), 0600); err != nil {
		return fmt.Errorf("failed to write active conversation file: %w", err)
	}

	return nil
}
