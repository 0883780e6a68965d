package ui

import (
	"encoding/json"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	appmodel "promptedit/model"
)

func (a AppView) openContentEditor() (tea.Model, tea.Cmd) {
	msg := a.selectedMessage()
	if msg == nil {
		return a, nil
	}

	a.contentInput.SetValue(msg.ContentText())
	a.contentInput.Focus()
	a.editingIdx = a.selectedIdx
	a.mode = modeEditContent
	return a, textarea.Blink
}

// openCallEditor opens the per-role call editor: tool messages edit their
// tool_call_id, assistant messages edit the tool_calls array as JSON.
func (a AppView) openCallEditor() (tea.Model, tea.Cmd) {
	msg := a.selectedMessage()
	if msg == nil {
		return a, nil
	}

	switch msg.Role {
	case appmodel.RoleTool:
		a.toolCallIDInput.SetValue(msg.ToolCallID)
		a.toolCallIDInput.CursorEnd()
		a.toolCallIDInput.Focus()
		a.suggestionsAll = a.appModel.Transcript.ToolCallIDs()
		a.suggestions = a.suggestionsAll
		a.suggestionIdx = -1
		a.editingIdx = a.selectedIdx
		a.mode = modeEditToolCallID
		return a, textinput.Blink

	case appmodel.RoleAssistant:
		a.toolCallsInput.SetValue(formatToolCallsJSON(msg.ToolCalls))
		a.toolCallsInput.Focus()
		a.toolCallsInvalid = false
		a.toolCallsDiscardArmed = false
		a.editingIdx = a.selectedIdx
		a.mode = modeEditToolCalls
		return a, textarea.Blink
	}

	return a, nil
}

func (a AppView) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.mode {
	case modeEditContent:
		return a.handleContentKeys(msg)
	case modeEditToolCallID:
		return a.handleToolCallIDKeys(msg)
	case modeEditToolCalls:
		return a.handleToolCallsKeys(msg)
	case modeEditTools:
		return a.handleToolsKeys(msg)
	case modeRename:
		return a.handleRenameKeys(msg)
	}
	return a, nil
}

func (a AppView) handleContentKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if edited := a.editedMessage(); edited != nil {
			updated := edited.Clone()
			updated.SetContent(a.contentInput.Value())
			a.appModel.Transcript = a.appModel.Transcript.Update(a.editingIdx, updated)
			a.appModel.ScheduleSave()
		}
		a.contentInput.Blur()
		a.mode = modeList
		return a, nil

	case "ctrl+c":
		a.appModel.FlushSave()
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.contentInput, cmd = a.contentInput.Update(msg)
	return a, cmd
}

func (a AppView) handleToolCallIDKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if edited := a.editedMessage(); edited != nil {
			updated := edited.Clone()
			updated.ToolCallID = strings.TrimSpace(a.toolCallIDInput.Value())
			a.appModel.Transcript = a.appModel.Transcript.Update(a.editingIdx, updated)
			a.appModel.ScheduleSave()
		}
		a.toolCallIDInput.Blur()
		a.mode = modeList
		return a, nil

	case "esc":
		a.toolCallIDInput.Blur()
		a.mode = modeList
		return a, nil

	case "tab":
		// Cycle through the ids emitted by assistant messages. Advisory
		// only: any id, known or not, is accepted.
		if len(a.suggestions) > 0 {
			a.suggestionIdx = (a.suggestionIdx + 1) % len(a.suggestions)
			a.toolCallIDInput.SetValue(a.suggestions[a.suggestionIdx])
			a.toolCallIDInput.CursorEnd()
		}
		return a, nil

	case "ctrl+c":
		a.appModel.FlushSave()
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.toolCallIDInput, cmd = a.toolCallIDInput.Update(msg)
	a.refilterSuggestions()
	return a, cmd
}

// refilterSuggestions fuzzy-matches the known call ids against the typed
// text. An empty field or zero matches falls back to the full list.
func (a *AppView) refilterSuggestions() {
	value := strings.TrimSpace(a.toolCallIDInput.Value())
	if value == "" {
		a.suggestions = a.suggestionsAll
		a.suggestionIdx = -1
		return
	}

	matches := fuzzy.Find(value, a.suggestionsAll)
	if len(matches) == 0 {
		a.suggestions = a.suggestionsAll
		a.suggestionIdx = -1
		return
	}

	filtered := make([]string, len(matches))
	for i, match := range matches {
		filtered[i] = a.suggestionsAll[match.Index]
	}
	a.suggestions = filtered
	a.suggestionIdx = -1
}

func (a AppView) handleToolCallsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		calls, err := parseToolCallsJSON(a.toolCallsInput.Value())
		if err != nil {
			if a.toolCallsDiscardArmed {
				// Second Esc on invalid JSON discards the edit
				a.toolCallsInput.Blur()
				a.toolCallsInvalid = false
				a.toolCallsDiscardArmed = false
				a.mode = modeList
				return a, nil
			}
			a.toolCallsInvalid = true
			a.toolCallsDiscardArmed = true
			return a, nil
		}

		if edited := a.editedMessage(); edited != nil {
			updated := edited.Clone()
			updated.ToolCalls = calls
			a.appModel.Transcript = a.appModel.Transcript.Update(a.editingIdx, updated)
			a.appModel.ScheduleSave()
		}
		a.toolCallsInput.Blur()
		a.toolCallsInvalid = false
		a.toolCallsDiscardArmed = false
		a.mode = modeList
		return a, nil

	case "ctrl+c":
		a.appModel.FlushSave()
		return a, tea.Quit
	}

	a.toolCallsDiscardArmed = false

	var cmd tea.Cmd
	a.toolCallsInput, cmd = a.toolCallsInput.Update(msg)

	_, err := parseToolCallsJSON(a.toolCallsInput.Value())
	a.toolCallsInvalid = err != nil

	return a, cmd
}

func (a AppView) handleToolsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// The schema text is stored as typed; validity only matters at
		// export, where malformed text degrades to an empty tool list.
		a.appModel.ToolsText = a.toolsInput.Value()
		a.appModel.ScheduleSave()
		a.toolsInput.Blur()
		a.mode = modeList
		return a, nil

	case "ctrl+c":
		a.appModel.FlushSave()
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.toolsInput, cmd = a.toolsInput.Update(msg)

	trimmed := strings.TrimSpace(a.toolsInput.Value())
	a.toolsInvalid = trimmed != "" && !json.Valid([]byte(trimmed))

	return a, cmd
}

func (a AppView) handleRenameKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(a.renameInput.Value())
		if name != "" {
			a.appModel.Name = name
			a.appModel.ScheduleSave()
		}
		a.renameInput.Blur()
		a.mode = modeList
		return a, nil

	case "esc":
		a.renameInput.Blur()
		a.mode = modeList
		return a, nil

	case "alt+u":
		a.renameInput.SetValue("")
		return a, nil

	case "ctrl+c":
		a.appModel.FlushSave()
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.renameInput, cmd = a.renameInput.Update(msg)
	return a, cmd
}

func (a *AppView) editedMessage() *appmodel.Message {
	if a.editingIdx < 0 || a.editingIdx >= len(a.appModel.Transcript) {
		return nil
	}
	return &a.appModel.Transcript[a.editingIdx]
}

// formatToolCallsJSON pretty-prints the tool_calls array for the editing buffer
func formatToolCallsJSON(calls []appmodel.ToolCall) string {
	if len(calls) == 0 {
		return "[]"
	}
	data, err := json.MarshalIndent(calls, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

// parseToolCallsJSON parses the editing buffer back into tool calls. String
// arguments stay strings; decoded values are re-encoded at export time.
func parseToolCallsJSON(text string) ([]appmodel.ToolCall, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []appmodel.ToolCall{}, nil
	}

	var calls []appmodel.ToolCall
	if err := json.Unmarshal([]byte(trimmed), &calls); err != nil {
		return nil, err
	}
	if calls == nil {
		calls = []appmodel.ToolCall{}
	}
	return calls, nil
}
