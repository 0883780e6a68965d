package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"promptedit/codec"
	"promptedit/config"
	"promptedit/model"
	"promptedit/storage"
)

// importTranscriptCmd reads and parses a transcript file. On parse failure
// the editing buffers are left untouched; the error surfaces in a modal.
func importTranscriptCmd(path string) tea.Cmd {
	return func() tea.Msg {
		expandedPath := config.ExpandPath(path)

		data, err := os.ReadFile(expandedPath)
		if err != nil {
			return transcriptImportedMsg{Path: path, Err: fmt.Errorf("failed to read file: %w", err)}
		}

		messages, tools, err := codec.Import(data)
		if err != nil {
			return transcriptImportedMsg{Path: path, Err: err}
		}

		return transcriptImportedMsg{
			Messages:  messages,
			ToolsText: codec.FormatTools(tools),
			Path:      path,
		}
	}
}

// exportTranscriptCmd writes the wire-format JSON for a transcript to path
func exportTranscriptCmd(messages model.Transcript, toolsText, path string) tea.Cmd {
	return func() tea.Msg {
		data := codec.ExportJSON(messages, toolsText)

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return transcriptExportedMsg{Path: path, Err: err}
		}

		if err := os.WriteFile(path, data, 0600); err != nil {
			return transcriptExportedMsg{Path: path, Err: err}
		}

		return transcriptExportedMsg{Path: path}
	}
}

// copyExportJSONCmd puts the full wire-format JSON on the system clipboard
func copyExportJSONCmd(messages model.Transcript, toolsText string) tea.Cmd {
	return func() tea.Msg {
		data := codec.ExportJSON(messages, toolsText)
		if err := clipboard.WriteAll(string(data)); err != nil {
			return clipboardCopiedMsg{What: "transcript", Err: fmt.Errorf("failed to copy to clipboard: %w", err)}
		}
		return clipboardCopiedMsg{What: "transcript"}
	}
}

// copyContentCmd copies a message's content text to the system clipboard
func copyContentCmd(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return clipboardCopiedMsg{What: "content", Err: fmt.Errorf("failed to copy to clipboard: %w", err)}
		}
		return clipboardCopiedMsg{What: "content"}
	}
}

// defaultExportPath builds the export file path for a conversation:
// <export dir>/<sanitized name>-<timestamp>.json
func defaultExportPath(cfg *config.Config, name string) string {
	timestamp := time.Now().Format("2006-01-02-150405")
	filename := fmt.Sprintf("%s-%s.json", storage.SanitizeFilename(name), timestamp)
	return filepath.Join(cfg.ExportDir(), filename)
}
