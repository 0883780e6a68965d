package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	appmodel "promptedit/model"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true

		inputWidth := a.width - 4
		if inputWidth < 20 {
			inputWidth = 20
		}
		a.contentInput.SetWidth(inputWidth)
		a.toolCallsInput.SetWidth(inputWidth)
		a.toolsInput.SetWidth(inputWidth)
		return a, nil

	case transcriptImportedMsg:
		return a.handleTranscriptImported(msg)

	case transcriptExportedMsg:
		if msg.Err != nil {
			a.acknowledge("⚠ Export Failed", msg.Err.Error(), ModalTypeError)
			return a, nil
		}
		a.acknowledge("✓ Export Successful", fmt.Sprintf("Exported to:\n%s", msg.Path), ModalTypeInfo)
		return a, nil

	case clipboardCopiedMsg:
		if msg.Err != nil {
			a.statusText = "Clipboard copy failed"
			return a, nil
		}
		if msg.What == "transcript" {
			a.statusText = "Copied transcript JSON"
		} else {
			a.statusText = "Copied content"
		}
		return a, nil

	case conversationSavedMsg:
		if msg.Err != nil {
			a.acknowledge("⚠ Save Failed", msg.Err.Error(), ModalTypeError)
			return a, nil
		}
		a.statusText = "Saved"
		return a, nil

	case tea.KeyMsg:
		// Modal layers take the keyboard before the editor does
		if a.showAcknowledge {
			switch msg.String() {
			case "enter", "esc":
				a.showAcknowledge = false
			}
			return a, nil
		}

		if a.showHelp {
			switch msg.String() {
			case "esc", "?", "enter", "q":
				a.showHelp = false
			}
			return a, nil
		}

		if a.showManager {
			return a.handleManagerKeys(msg)
		}

		if a.mode != modeList {
			return a.handleEditorKeys(msg)
		}

		return a.handleListKeys(msg)
	}

	// Non-key messages still reach the file picker (directory reads)
	if a.showManager && a.importPicker.Active {
		var cmd tea.Cmd
		a.importPicker.Picker, cmd = a.importPicker.Picker.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a AppView) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A pending insert waits for a role key
	if a.pendingInsert != "" {
		return a.handlePendingInsert(msg)
	}

	// Status line content is transient; any key clears it
	a.statusText = ""

	switch msg.String() {
	case "ctrl+c", "q":
		a.appModel.FlushSave()
		a.appModel.Quitting = true
		return a, tea.Quit

	case "?":
		a.showHelp = true
		return a, nil

	case "j", "down":
		if a.selectedIdx < len(a.appModel.Transcript)-1 {
			a.selectedIdx++
		}
		return a, nil

	case "k", "up":
		if a.selectedIdx > 0 {
			a.selectedIdx--
		}
		return a, nil

	case "g", "home":
		a.selectedIdx = 0
		return a, nil

	case "G", "end":
		if len(a.appModel.Transcript) > 0 {
			a.selectedIdx = len(a.appModel.Transcript) - 1
		}
		return a, nil

	case "s", "u", "a", "t":
		return a.appendMessage(roleForKey(msg.String()))

	case "i":
		if a.appModel.ConversationID != "" {
			a.pendingInsert = "before"
		}
		return a, nil

	case "o":
		if a.appModel.ConversationID != "" {
			a.pendingInsert = "after"
		}
		return a, nil

	case "J":
		if a.selectedIdx < len(a.appModel.Transcript)-1 {
			a.appModel.Transcript = a.appModel.Transcript.MoveBy(a.selectedIdx, 1)
			a.selectedIdx++
			a.appModel.ScheduleSave()
		}
		return a, nil

	case "K":
		if a.selectedIdx > 0 {
			a.appModel.Transcript = a.appModel.Transcript.MoveBy(a.selectedIdx, -1)
			a.selectedIdx--
			a.appModel.ScheduleSave()
		}
		return a, nil

	case "d":
		if len(a.appModel.Transcript) > 0 {
			a.appModel.Transcript = a.appModel.Transcript.Remove(a.selectedIdx)
			a.clampSelection()
			a.appModel.ScheduleSave()
		}
		return a, nil

	case "r":
		return a.cycleRole()

	case "enter", "e":
		return a.openContentEditor()

	case "c":
		return a.openCallEditor()

	case "C":
		// Assistant messages may carry tool calls with no content at all;
		// the content key disappears from the export entirely.
		if msg := a.selectedMessage(); msg != nil && msg.Role == appmodel.RoleAssistant {
			updated := msg.Clone()
			updated.ClearContent()
			a.appModel.Transcript = a.appModel.Transcript.Update(a.selectedIdx, updated)
			a.appModel.ScheduleSave()
			a.statusText = "Content cleared"
		}
		return a, nil

	case "y":
		if msg := a.selectedMessage(); msg != nil {
			return a, copyContentCmd(msg.ContentText())
		}
		return a, nil

	case "Y":
		if a.appModel.ConversationID != "" {
			return a, copyExportJSONCmd(a.appModel.Transcript, a.appModel.ToolsText)
		}
		return a, nil

	case "T":
		if a.appModel.ConversationID != "" {
			a.toolsInput.SetValue(a.appModel.ToolsText)
			a.toolsInput.Focus()
			a.toolsInvalid = false
			a.mode = modeEditTools
		}
		return a, nil

	case "n":
		if a.appModel.ConversationID != "" {
			a.renameInput.SetValue(a.appModel.Name)
			a.renameInput.CursorEnd()
			a.renameInput.Focus()
			a.mode = modeRename
		}
		return a, nil

	case "w":
		if a.appModel.ConversationID != "" {
			return a, a.appModel.SaveNowCmd()
		}
		return a, nil

	case "m":
		a.openManager()
		return a, nil

	case "x":
		if a.appModel.ConversationID != "" {
			path := defaultExportPath(a.appModel.Config, a.appModel.Name)
			return a, exportTranscriptCmd(a.appModel.Transcript, a.appModel.ToolsText, path)
		}
		return a, nil
	}

	return a, nil
}

func (a AppView) handlePendingInsert(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	position := a.pendingInsert
	a.pendingInsert = ""

	role := roleForKey(msg.String())
	if role == "" {
		return a, nil
	}

	index := a.selectedIdx
	if position == "after" {
		index = a.selectedIdx + 1
	}
	if len(a.appModel.Transcript) == 0 {
		index = 0
	}

	transcript, _ := a.appModel.Transcript.InsertAt(index, role)
	a.appModel.Transcript = transcript
	a.selectedIdx = index
	a.appModel.ScheduleSave()
	return a, nil
}

func (a AppView) appendMessage(role appmodel.Role) (tea.Model, tea.Cmd) {
	if role == "" || a.appModel.ConversationID == "" {
		return a, nil
	}

	transcript, _ := a.appModel.Transcript.Append(role)
	a.appModel.Transcript = transcript
	a.selectedIdx = len(transcript) - 1
	a.appModel.ScheduleSave()
	return a, nil
}

func (a AppView) cycleRole() (tea.Model, tea.Cmd) {
	msg := a.selectedMessage()
	if msg == nil {
		return a, nil
	}

	next := appmodel.Roles[0]
	for i, role := range appmodel.Roles {
		if role == msg.Role {
			next = appmodel.Roles[(i+1)%len(appmodel.Roles)]
			break
		}
	}

	updated := msg.Clone()
	updated.Role = next
	a.appModel.Transcript = a.appModel.Transcript.Update(a.selectedIdx, updated)
	a.appModel.ScheduleSave()
	return a, nil
}

func (a AppView) handleTranscriptImported(msg transcriptImportedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.acknowledge("⚠ Import Failed", msg.Err.Error(), ModalTypeError)
		return a, nil
	}

	// Parse success: the imported transcript and tool schema replace the
	// active conversation's buffers wholesale.
	a.appModel.Transcript = msg.Messages
	a.appModel.ToolsText = msg.ToolsText
	a.selectedIdx = 0
	a.appModel.ScheduleSave()

	a.closeAllModals()
	a.acknowledge("✓ Import Successful", fmt.Sprintf("Imported %d messages from:\n%s", len(msg.Messages), msg.Path), ModalTypeInfo)
	return a, nil
}

func (a *AppView) selectedMessage() *appmodel.Message {
	if a.selectedIdx < 0 || a.selectedIdx >= len(a.appModel.Transcript) {
		return nil
	}
	return &a.appModel.Transcript[a.selectedIdx]
}

func roleForKey(key string) appmodel.Role {
	switch key {
	case "s":
		return appmodel.RoleSystem
	case "u":
		return appmodel.RoleUser
	case "a":
		return appmodel.RoleAssistant
	case "t":
		return appmodel.RoleTool
	}
	return ""
}
