package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"promptedit/storage"
)

func (a *AppView) openManager() {
	// A commit may still be pending for the active conversation; committing
	// it now keeps the manager's view of the store current and stops the
	// timer from later overwriting anything done through the manager.
	a.appModel.FlushSave()

	a.conversationList = a.appModel.Store.Conversations()
	a.filteredList = nil
	a.filterMode = false
	a.selectedConvIdx = 0
	for i, c := range a.conversationList {
		if c.ID == a.appModel.ConversationID {
			a.selectedConvIdx = i
			break
		}
	}
	a.showManager = true
}

func (a *AppView) refreshConversations() {
	a.conversationList = a.appModel.Store.Conversations()
	if a.selectedConvIdx >= len(a.conversationList) && len(a.conversationList) > 0 {
		a.selectedConvIdx = len(a.conversationList) - 1
	}
	if a.selectedConvIdx < 0 {
		a.selectedConvIdx = 0
	}
}

func (a AppView) handleManagerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.importPicker.Active {
		return a.handleImportPickerKeys(msg)
	}

	if a.confirmDelete != nil {
		return a.handleDeleteConfirmKeys(msg)
	}

	if a.managerRenameMode {
		return a.handleManagerRenameKeys(msg)
	}

	if a.filterMode {
		return a.handleManagerFilterKeys(msg)
	}

	switch msg.String() {
	case "esc", "m":
		a.showManager = false
		return a, nil

	case "ctrl+c":
		a.appModel.FlushSave()
		return a, tea.Quit

	case "/":
		a.filterMode = true
		a.filterInput.Focus()
		a.filterInput.SetValue("")
		a.filteredList = a.conversationList
		return a, textinput.Blink

	case "j", "down":
		list := a.getConversationList()
		if a.selectedConvIdx < len(list)-1 {
			a.selectedConvIdx++
		}
		return a, nil

	case "k", "up":
		if a.selectedConvIdx > 0 {
			a.selectedConvIdx--
		}
		return a, nil

	case "enter":
		if conv := a.managerSelection(); conv != nil {
			a.loadConversation(conv.ID)
		}
		return a, nil

	case "n":
		conv, err := a.appModel.Store.Create()
		if err != nil {
			a.acknowledge("⚠ Create Failed", err.Error(), ModalTypeError)
			return a, nil
		}
		a.loadConversation(conv.ID)
		return a, nil

	case "c":
		if conv := a.managerSelection(); conv != nil {
			copied, err := a.appModel.Store.Duplicate(conv.ID)
			if err != nil {
				a.acknowledge("⚠ Duplicate Failed", err.Error(), ModalTypeError)
				return a, nil
			}
			if copied != nil {
				a.loadConversation(copied.ID)
			}
		}
		return a, nil

	case "r":
		if conv := a.managerSelection(); conv != nil {
			a.managerRenameMode = true
			a.managerRenameInput.SetValue(conv.Name)
			a.managerRenameInput.CursorEnd()
			a.managerRenameInput.Focus()
		}
		return a, nil

	case "d":
		if conv := a.managerSelection(); conv != nil {
			confirm := conv.Clone()
			a.confirmDelete = &confirm
		}
		return a, nil

	case "x":
		if conv := a.managerSelection(); conv != nil {
			path := defaultExportPath(a.appModel.Config, conv.Name)
			return a, exportTranscriptCmd(conv.Messages, conv.Tools, path)
		}
		return a, nil

	case "i":
		a.importPicker.Activate()
		return a, a.importPicker.Picker.Init()
	}

	return a, nil
}

func (a AppView) handleImportPickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		a.importPicker.Reset()
		return a, nil
	}

	var cmd tea.Cmd
	a.importPicker.Picker, cmd = a.importPicker.Picker.Update(msg)

	if didSelect, path := a.importPicker.Picker.DidSelectFile(msg); didSelect {
		a.importPicker.Reset()
		return a, importTranscriptCmd(path)
	}

	return a, cmd
}

func (a AppView) handleDeleteConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		deleted := a.confirmDelete
		a.confirmDelete = nil

		wasActive := deleted.ID == a.appModel.ConversationID

		// Deleting the active conversation throws its pending edits away;
		// the debounced commit must not resurrect it, so it is cancelled
		// before the delete.
		if wasActive {
			a.appModel.Debounce.Stop()
		}

		if err := a.appModel.Store.Delete(deleted.ID); err != nil {
			a.acknowledge("⚠ Delete Failed", err.Error(), ModalTypeError)
			return a, nil
		}

		a.refreshConversations()

		if wasActive {
			if active, ok := a.appModel.Store.Active(); ok {
				a.appModel.LoadConversation(active.ID)
			} else {
				a.appModel.ClearBuffers()
			}
			a.selectedIdx = 0
		}
		return a, nil

	case "n", "esc":
		a.confirmDelete = nil
		return a, nil
	}
	return a, nil
}

func (a AppView) handleManagerRenameKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.managerRenameMode = false
		a.managerRenameInput.Blur()

		conv := a.managerSelection()
		name := strings.TrimSpace(a.managerRenameInput.Value())
		if conv == nil || name == "" {
			return a, nil
		}

		if err := a.appModel.Store.Persist(conv.ID, name, conv.Tools, conv.Messages); err != nil {
			a.acknowledge("⚠ Rename Failed", err.Error(), ModalTypeError)
			return a, nil
		}
		if conv.ID == a.appModel.ConversationID {
			a.appModel.Name = name
		}
		a.refreshConversations()
		return a, nil

	case "esc":
		a.managerRenameMode = false
		a.managerRenameInput.Blur()
		return a, nil

	case "alt+u":
		a.managerRenameInput.SetValue("")
		return a, nil
	}

	var cmd tea.Cmd
	a.managerRenameInput, cmd = a.managerRenameInput.Update(msg)
	return a, cmd
}

func (a AppView) handleManagerFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.filterMode = false
		a.filterInput.Blur()
		a.filteredList = nil
		return a, nil

	case "enter":
		if conv := a.managerSelection(); conv != nil {
			a.filterMode = false
			a.filterInput.Blur()
			a.loadConversation(conv.ID)
		}
		return a, nil

	case "alt+j", "alt+down", "down":
		list := a.getConversationList()
		if a.selectedConvIdx < len(list)-1 {
			a.selectedConvIdx++
		}
		return a, nil

	case "alt+k", "alt+up", "up":
		if a.selectedConvIdx > 0 {
			a.selectedConvIdx--
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.filterInput, cmd = a.filterInput.Update(msg)

	filterValue := a.filterInput.Value()
	if filterValue == "" {
		a.filteredList = a.conversationList
	} else {
		targets := make([]string, len(a.conversationList))
		for i, c := range a.conversationList {
			targets[i] = c.Name
		}

		matches := fuzzy.Find(filterValue, targets)
		a.filteredList = make([]storage.Conversation, len(matches))
		for i, match := range matches {
			a.filteredList[i] = a.conversationList[match.Index]
		}
	}

	list := a.getConversationList()
	if a.selectedConvIdx >= len(list) && len(list) > 0 {
		a.selectedConvIdx = len(list) - 1
	}

	return a, cmd
}

func (a *AppView) managerSelection() *storage.Conversation {
	list := a.getConversationList()
	if a.selectedConvIdx < 0 || a.selectedConvIdx >= len(list) {
		return nil
	}
	return &list[a.selectedConvIdx]
}

func (a *AppView) loadConversation(id string) {
	if a.appModel.LoadConversation(id) {
		a.selectedIdx = 0
		a.mode = modeList
		a.showManager = false
	}
}

func renderConversationManager(conversations, filtered []storage.Conversation, selectedIdx int, activeID string, filterMode bool, filterInput textinput.Model, renameMode bool, renameInput textinput.Model, width, height int) string {
	modalWidth := width - 10
	if modalWidth > 100 {
		modalWidth = 100
	}
	modalHeight := height - 6

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Conversations")

	displayList := conversations
	if filterMode && len(filtered) > 0 {
		displayList = filtered
	}

	var header string
	if filterMode {
		header = filterInput.View()
	} else if len(conversations) == len(displayList) {
		header = fmt.Sprintf("%d conversations", len(conversations))
	} else {
		header = fmt.Sprintf("%d of %d conversations", len(displayList), len(conversations))
	}

	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	var convLines []string
	maxLines := modalHeight - 8

	if len(displayList) == 0 {
		emptyMsg := "No conversations yet. Press n to create one."
		if filterMode {
			emptyMsg = "No matches found"
		}
		convLines = append(convLines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg))
	} else {
		startIdx := 0
		endIdx := len(displayList)
		if len(displayList) > maxLines {
			if selectedIdx < maxLines/2 {
				endIdx = maxLines
			} else if selectedIdx >= len(displayList)-maxLines/2 {
				startIdx = len(displayList) - maxLines
			} else {
				startIdx = selectedIdx - maxLines/2
				endIdx = startIdx + maxLines
			}
		}

		for i := startIdx; i < endIdx && i < len(displayList); i++ {
			conv := displayList[i]

			indicator := "  "
			if i == selectedIdx {
				indicator = "▶ "
			}

			name := conv.Name
			maxNameWidth := modalWidth - 36
			var nameDisplay string
			if renameMode && i == selectedIdx {
				nameDisplay = lipgloss.NewStyle().
					Foreground(accentColor).
					Bold(true).
					Render(renameInput.View())
			} else {
				if len(name) > maxNameWidth {
					name = name[:maxNameWidth-3] + "..."
				}
				nameDisplay = name
			}

			hasActiveMarker := conv.ID == activeID && !renameMode

			msgCount := fmt.Sprintf("%d msgs", len(conv.Messages))
			if len(conv.Messages) == 1 {
				msgCount = "1 msg"
			}
			timeAgo := formatTimeAgo(conv.UpdatedAt)
			rightSide := fmt.Sprintf("%s  %8s", msgCount, timeAgo)

			nameStyled := nameDisplay
			if i == selectedIdx {
				nameStyled = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(nameDisplay)
			} else if conv.ID == activeID {
				nameStyled = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(nameDisplay)
			}

			leftSide := indicator + nameStyled

			leftVisualWidth := len(indicator) + len(nameDisplay)
			spacing := modalWidth - 4 - leftVisualWidth - len(rightSide)
			if hasActiveMarker {
				spacing -= 9 // " (active)" = 9 visible characters
			}
			if spacing < 2 {
				spacing = 2
			}

			if hasActiveMarker {
				markerColor := accentColor
				if i == selectedIdx {
					markerColor = successColor
				}
				leftSide += " " + lipgloss.NewStyle().Foreground(markerColor).Render("(active)")
			}

			rightSideStyled := rightSide
			if i == selectedIdx {
				rightSideStyled = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(rightSide)
			} else if conv.ID == activeID {
				rightSideStyled = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(rightSide)
			}

			styledLine := fmt.Sprintf("  %s%s%s  ", leftSide, strings.Repeat(" ", spacing), rightSideStyled)
			convLines = append(convLines, lipgloss.NewStyle().Width(modalWidth).Render(styledLine))
		}
	}

	emptyLine := strings.Repeat(" ", modalWidth)
	convLines = append([]string{emptyLine}, convLines...)
	convLines = append(convLines, emptyLine)

	var footerText string
	if renameMode {
		footerText = FormatFooter("Alt+U", "Clear", "Enter", "Save", "Esc", "Cancel")
	} else if filterMode {
		footerText = FormatFooter("Type", "to filter", "Alt+J/K", "Navigate", "Enter", "Load", "Esc", "Cancel")
	} else {
		footerText = FormatFooter("/", "Filter", "j/k", "Navigate", "Enter", "Load", "n", "New", "c", "Duplicate", "r", "Rename", "i", "Import", "x", "Export", "d", "Delete", "Esc", "Close")
	}

	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footerText)

	var sections []string
	sections = append(sections, titleSection)
	sections = append(sections, headerSection)
	sections = append(sections, convLines...)
	sections = append(sections, footerSection)

	content := strings.Join(sections, "\n")

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// formatTimeAgo formats a time as a relative string (e.g., "2h ago", "3d ago")
func formatTimeAgo(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	} else if duration < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	} else if duration < 30*24*time.Hour {
		return fmt.Sprintf("%dw ago", int(duration.Hours()/24/7))
	}
	return fmt.Sprintf("%dmo ago", int(duration.Hours()/24/30))
}
