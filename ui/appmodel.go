package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"promptedit/config"
	"promptedit/model"
	"promptedit/storage"
)

// AppModel holds the core application data and business logic state, apart
// from the view. It lives in the ui package because storage persists
// model.Transcript directly, so the model package stays a leaf.
type AppModel struct {
	// Core dependencies
	Config   *config.Config
	Store    *storage.Store
	Debounce *storage.Debouncer

	// Editing buffers for the active conversation. Edits land here first
	// and reach the store through the debounced commit path.
	ConversationID string
	Name           string
	ToolsText      string
	Transcript     model.Transcript

	// Runtime state
	Dirty    bool
	Quitting bool

	// Application metadata
	Version string
}

// NewAppModel creates a new AppModel and loads the active conversation into
// the editing buffers
func NewAppModel(cfg *config.Config, store *storage.Store, version string) *AppModel {
	return newAppModel(cfg, store, storage.WallClock(), version)
}

func newAppModel(cfg *config.Config, store *storage.Store, sched storage.Scheduler, version string) *AppModel {
	m := &AppModel{
		Config:   cfg,
		Store:    store,
		Debounce: storage.NewDebouncer(sched, time.Duration(cfg.AutosaveDelayMs)*time.Millisecond),
		Version:  version,
	}

	if active, ok := store.Active(); ok {
		m.loadBuffers(active)
	}

	return m
}

func (m *AppModel) loadBuffers(conv storage.Conversation) {
	m.ConversationID = conv.ID
	m.Name = conv.Name
	m.ToolsText = conv.Tools
	m.Transcript = conv.Messages.Clone()
	m.Dirty = false
}

// LoadConversation flushes any pending commit for the outgoing conversation
// and fills the editing buffers from the one matching id. Returns false when
// no conversation matches.
func (m *AppModel) LoadConversation(id string) bool {
	m.Debounce.Flush()

	conv, ok := m.Store.Get(id)
	if !ok {
		return false
	}

	if err := m.Store.SetActive(id); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[Model] Failed to persist active conversation: %v", err)
	}

	m.loadBuffers(conv)
	return true
}

// ClearBuffers empties the editing buffers after the last conversation is
// deleted
func (m *AppModel) ClearBuffers() {
	m.ConversationID = ""
	m.Name = ""
	m.ToolsText = ""
	m.Transcript = nil
	m.Dirty = false
}

// ScheduleSave marks the buffers dirty and arms a debounced commit. The
// commit captures a snapshot of the buffers, so edits made while the timer
// runs belong to the next commit. A commit whose conversation has been
// deleted by the time it fires is dropped, never upserted back.
func (m *AppModel) ScheduleSave() {
	if m.ConversationID == "" {
		return
	}

	m.Dirty = true

	id := m.ConversationID
	name := m.Name
	toolsText := m.ToolsText
	messages := m.Transcript.Clone()
	store := m.Store

	m.Debounce.Schedule(func() {
		if _, ok := store.Get(id); !ok {
			return
		}
		if err := store.Persist(id, name, toolsText, messages); err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Model] Debounced save failed: %v", err)
			}
		}
	})
}

// FlushSave commits any pending debounced save immediately. Called on
// conversation switches and on shutdown.
func (m *AppModel) FlushSave() {
	m.Debounce.Flush()
	m.Dirty = false
}

// SaveNow skips the debounce and commits the buffers straight to the store
func (m *AppModel) SaveNow() error {
	if m.ConversationID == "" {
		return nil
	}

	// The pending commit would overwrite this one with an older snapshot
	m.Debounce.Stop()

	err := m.Store.Persist(m.ConversationID, m.Name, m.ToolsText, m.Transcript.Clone())
	if err == nil {
		m.Dirty = false
	}
	return err
}

// SaveNowCmd commits the editing buffers immediately, skipping the debounce
func (m *AppModel) SaveNowCmd() tea.Cmd {
	return func() tea.Msg {
		return conversationSavedMsg{Err: m.SaveNow()}
	}
}
