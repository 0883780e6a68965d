package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/promptedit",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		StorageBackend: BackendSQLite,
		Editor: EditorConfig{
			AutosaveDelayMs: 400,
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# promptedit system configuration
# Points at the data directory holding conversations and the user config.

data_directory = "~/.local/share/promptedit"
`
}

func GenerateUserConfigTemplate() string {
	return `# promptedit user configuration

# Persistence backend for the conversation store: "sqlite" or "file"
storage_backend = "sqlite"

[editor]
# Quiet period before edits are committed to the store, in milliseconds
autosave_delay_ms = 400

# Where exported transcripts are written (defaults to ~/Downloads)
# export_directory = "~/Documents/transcripts"
`
}
