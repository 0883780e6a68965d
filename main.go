package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"promptedit/config"
	"promptedit/storage"
	"promptedit/ui"
)

const Version = "v0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	dataDir := cfg.DataDir()

	// Initialize debug logging after config is loaded
	config.InitDebugLog(dataDir)

	if err := config.EnsureDataDirPermissions(dataDir); err != nil {
		fmt.Printf("Failed to prepare data directory: %v\n", err)
		os.Exit(1)
	}

	var port storage.Port
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		sqliteStore, err := storage.NewSQLiteStore(dataDir)
		if err != nil {
			fmt.Printf("Failed to initialize sqlite storage: %v\n", err)
			os.Exit(1)
		}
		defer sqliteStore.Close()
		port = sqliteStore
	default:
		fileStore, err := storage.NewFileStore(dataDir)
		if err != nil {
			fmt.Printf("Failed to initialize file storage: %v\n", err)
			os.Exit(1)
		}
		port = fileStore
	}

	store, err := storage.Open(port)
	if err != nil {
		fmt.Printf("Failed to open conversation store: %v\n", err)
		os.Exit(1)
	}

	appModel := ui.NewAppModel(cfg, store, Version)

	// Whatever happens to the program loop, pending edits must reach disk
	defer appModel.FlushSave()

	p := tea.NewProgram(
		ui.NewAppView(appModel),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running promptedit: %v\n", err)
		os.Exit(1)
	}
}
