package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUserConfig(t *testing.T) {
	t.Run("CreatesDefaultOnFirstLoad", func(t *testing.T) {
		dir := t.TempDir()

		cfg, err := LoadUserConfig(dir)
		if err != nil {
			t.Fatalf("LoadUserConfig() error = %v", err)
		}
		if cfg.StorageBackend != BackendSQLite {
			t.Errorf("default backend = %q, want %q", cfg.StorageBackend, BackendSQLite)
		}
		if cfg.Editor.AutosaveDelayMs != 400 {
			t.Errorf("default autosave delay = %d, want 400", cfg.Editor.AutosaveDelayMs)
		}

		info, err := os.Stat(filepath.Join(dir, "config.toml"))
		if err != nil {
			t.Fatalf("config file not created: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("config file mode = %o, want 0600", perm)
		}
	})

	t.Run("ParsesCustomValues", func(t *testing.T) {
		dir := t.TempDir()
		content := `storage_backend = "file"

[editor]
autosave_delay_ms = 900
export_directory = "~/transcripts"
`
		if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		cfg, err := LoadUserConfig(dir)
		if err != nil {
			t.Fatalf("LoadUserConfig() error = %v", err)
		}
		if cfg.StorageBackend != BackendFile {
			t.Errorf("backend = %q, want %q", cfg.StorageBackend, BackendFile)
		}
		if cfg.Editor.AutosaveDelayMs != 900 {
			t.Errorf("autosave delay = %d, want 900", cfg.Editor.AutosaveDelayMs)
		}
		if cfg.Editor.ExportDirectory != "~/transcripts" {
			t.Errorf("export directory = %q", cfg.Editor.ExportDirectory)
		}
	})

	t.Run("MalformedFileErrors", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("storage_backend = ["), 0600); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		if _, err := LoadUserConfig(dir); err == nil {
			t.Fatal("LoadUserConfig() succeeded on malformed toml")
		}
	})
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/worker")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"TildeExpands", "~/data", "/home/worker/data"},
		{"AbsoluteUntouched", "/var/lib/promptedit", "/var/lib/promptedit"},
		{"EmptyStaysEmpty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
