package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"promptedit/model"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	t.Run("LoadBeforeFirstSaveIsNil", func(t *testing.T) {
		state, err := fs.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if state != nil {
			t.Errorf("Load() = %+v, want nil on fresh directory", state)
		}
	})

	content := "hello"
	saved := &State{
		Conversations: []Conversation{{
			ID:        "c1",
			Name:      "round trip",
			UpdatedAt: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
			Tools:     "[]",
			Messages: model.Transcript{
				{Token: "never-stored", Role: model.RoleUser, Content: &content},
			},
		}},
		ActiveID: "c1",
	}

	t.Run("SaveThenLoad", func(t *testing.T) {
		if err := fs.Save(saved); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		state, err := fs.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(state.Conversations) != 1 {
			t.Fatalf("loaded %d conversations, want 1", len(state.Conversations))
		}
		got := state.Conversations[0]
		if got.ID != "c1" || got.Name != "round trip" {
			t.Errorf("loaded conversation = %+v", got)
		}
		if got.Messages[0].ContentText() != "hello" {
			t.Errorf("content = %q, want hello", got.Messages[0].ContentText())
		}
		if state.ActiveID != "c1" {
			t.Errorf("ActiveID = %q, want c1", state.ActiveID)
		}
	})

	t.Run("TokensNeverPersisted", func(t *testing.T) {
		state, err := fs.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if state.Conversations[0].Messages[0].Token != "" {
			t.Error("identity token survived the file round trip")
		}
	})

	t.Run("FilesAreUserOnly", func(t *testing.T) {
		info, err := os.Stat(filepath.Join(dir, conversationsFile))
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("conversations file mode = %o, want 0600", perm)
		}
	})

	t.Run("EmptyActiveRemovesSidecar", func(t *testing.T) {
		saved.ActiveID = ""
		if err := fs.Save(saved); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, activeFile)); !os.IsNotExist(err) {
			t.Error("active sidecar still exists after saving empty active id")
		}

		state, err := fs.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if state.ActiveID != "" {
			t.Errorf("ActiveID = %q, want empty", state.ActiveID)
		}
	})
}
