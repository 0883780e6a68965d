package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Backend names accepted in config and PROMPTEDIT_BACKEND
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type EditorConfig struct {
	AutosaveDelayMs int    `toml:"autosave_delay_ms"`
	ExportDirectory string `toml:"export_directory,omitempty"`
}

type UserConfig struct {
	StorageBackend string       `toml:"storage_backend"`
	Editor         EditorConfig `toml:"editor"`
}

type Config struct {
	DataDirectory   string
	StorageBackend  string
	AutosaveDelayMs int
	ExportDirectory string
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// ExportDir returns the directory exported transcripts are written to
func (c *Config) ExportDir() string {
	if c.ExportDirectory != "" {
		return ExpandPath(c.ExportDirectory)
	}
	return GetDefaultExportDir()
}

func (c *Config) applyEnvOverrides() {
	if dataDir := os.Getenv("PROMPTEDIT_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if backend := os.Getenv("PROMPTEDIT_BACKEND"); backend != "" {
		c.StorageBackend = backend
	}
}

func CheckDebug() bool {
	debug := os.Getenv("PROMPTEDIT_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// Create debug log with secure permissions (0600 - may contain transcript text)
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (PROMPTEDIT_DEBUG=%s) ===", os.Getenv("PROMPTEDIT_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory:   "~/.local/share/promptedit",
		StorageBackend:  BackendSQLite,
		AutosaveDelayMs: 400,
	}

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	cfg.DataDirectory = systemCfg.DataDirectory

	cfg.applyEnvOverrides()

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	if userCfg.StorageBackend != "" {
		cfg.StorageBackend = userCfg.StorageBackend
	}
	if userCfg.Editor.AutosaveDelayMs > 0 {
		cfg.AutosaveDelayMs = userCfg.Editor.AutosaveDelayMs
	}
	cfg.ExportDirectory = userCfg.Editor.ExportDirectory

	// Env wins over the user config file as well
	cfg.applyEnvOverrides()

	if cfg.StorageBackend != BackendSQLite && cfg.StorageBackend != BackendFile {
		return nil, fmt.Errorf("unknown storage backend %q (expected %q or %q)",
			cfg.StorageBackend, BackendSQLite, BackendFile)
	}

	// Ensure data directory has correct permissions (fix if needed)
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	return cfg, nil
}
