package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"promptedit/storage"
)

type AppView struct {
	// Reference to core data model
	appModel *AppModel

	// Window state
	width  int
	height int
	ready  bool

	// Input focus
	mode        editorMode
	selectedIdx int
	editingIdx  int

	// Pending insert: set to "before" or "after" while waiting for a role key
	pendingInsert string

	// Content editor
	contentInput textarea.Model

	// Assistant tool calls editor (raw JSON for the tool_calls array)
	toolCallsInput        textarea.Model
	toolCallsInvalid      bool
	toolCallsDiscardArmed bool

	// Tool message tool_call_id editor with advisory suggestions
	toolCallIDInput textinput.Model
	suggestionsAll  []string
	suggestions     []string
	suggestionIdx   int

	// Conversation tool schema editor
	toolsInput   textarea.Model
	toolsInvalid bool

	// Conversation rename (from the editor screen)
	renameInput textinput.Model

	// Conversation manager UI
	showManager        bool
	conversationList   []storage.Conversation
	selectedConvIdx    int
	filterMode         bool
	filterInput        textinput.Model
	filteredList       []storage.Conversation
	managerRenameMode  bool
	managerRenameInput textinput.Model
	confirmDelete      *storage.Conversation
	importPicker       FilePickerState

	// Acknowledge modal (export results, import errors)
	showAcknowledge  bool
	acknowledgeTitle string
	acknowledgeMsg   string
	acknowledgeType  ModalType

	// Help modal
	showHelp bool

	// Transient status line content
	statusText string
}

func NewAppView(appModel *AppModel) AppView {
	contentInput := textarea.New()
	contentInput.Placeholder = "Message content..."
	contentInput.CharLimit = 0
	contentInput.ShowLineNumbers = false
	contentInput.SetHeight(8)
	contentInput.SetWidth(80)
	contentInput.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("enter"))

	toolCallsInput := textarea.New()
	toolCallsInput.Placeholder = "[]"
	toolCallsInput.CharLimit = 0
	toolCallsInput.ShowLineNumbers = false
	toolCallsInput.SetHeight(10)
	toolCallsInput.SetWidth(80)
	toolCallsInput.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("enter"))

	toolsInput := textarea.New()
	toolsInput.Placeholder = "[]"
	toolsInput.CharLimit = 0
	toolsInput.ShowLineNumbers = false
	toolsInput.SetHeight(14)
	toolsInput.SetWidth(80)
	toolsInput.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("enter"))

	toolCallIDInput := textinput.New()
	toolCallIDInput.Prompt = "tool_call_id: "
	toolCallIDInput.CharLimit = 64

	renameInput := textinput.New()
	renameInput.Prompt = "Name: "
	renameInput.CharLimit = 100

	filterInput := textinput.New()
	filterInput.Prompt = "Filter: "
	filterInput.CharLimit = 64

	managerRenameInput := textinput.New()
	managerRenameInput.CharLimit = 100

	importPicker := NewFilePickerState(FilePickerConfig{
		Title:        "Import Transcript",
		AllowedTypes: []string{".json"},
		ShowHidden:   true,
	})

	return AppView{
		appModel:           appModel,
		mode:               modeList,
		editingIdx:         -1,
		contentInput:       contentInput,
		toolCallsInput:     toolCallsInput,
		toolsInput:         toolsInput,
		toolCallIDInput:    toolCallIDInput,
		renameInput:        renameInput,
		filterInput:        filterInput,
		managerRenameInput: managerRenameInput,
		importPicker:       importPicker,
	}
}

func (a AppView) Init() tea.Cmd {
	return textarea.Blink
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading promptedit..."
	}

	// Modal rendering order (top to bottom layers):
	// 1. Acknowledge modal (export results, import errors)
	// 2. Help
	// 3. Conversation manager (owns delete confirmation and import picker)
	// 4. Main editor screen

	if a.showAcknowledge {
		return RenderAcknowledgeModal(a.acknowledgeTitle, a.acknowledgeMsg, a.acknowledgeType, a.width, a.height)
	}

	if a.showHelp {
		return renderHelpModal(a.width, a.height)
	}

	if a.showManager {
		if a.confirmDelete != nil {
			return RenderConfirmationModal(ConfirmationState{
				Active:  true,
				Title:   "⚠ Delete Conversation",
				Message: fmt.Sprintf("Are you sure you want to delete:\n\n\"%s\"\n\nThis action cannot be undone.", a.confirmDelete.Name),
			}, a.width, a.height)
		}
		if a.importPicker.Active {
			return RenderFilePickerModal(a.importPicker, a.width, a.height)
		}
		return renderConversationManager(a.conversationList, a.filteredList, a.selectedConvIdx, a.appModel.ConversationID, a.filterMode, a.filterInput, a.managerRenameMode, a.managerRenameInput, a.width, a.height)
	}

	title := a.renderTitleBar()
	body := a.renderBody()
	statusBar := a.renderStatusBar()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		body,
		statusBar,
	)
}

func (a AppView) getConversationList() []storage.Conversation {
	if a.filterMode && len(a.filteredList) > 0 {
		return a.filteredList
	}
	return a.conversationList
}

// clampSelection keeps the message cursor inside the transcript after
// removals and moves
func (a *AppView) clampSelection() {
	if a.selectedIdx >= len(a.appModel.Transcript) {
		a.selectedIdx = len(a.appModel.Transcript) - 1
	}
	if a.selectedIdx < 0 {
		a.selectedIdx = 0
	}
}

func (a *AppView) closeAllModals() {
	a.showHelp = false
	a.showManager = false
	a.showAcknowledge = false
	a.filterMode = false
	a.managerRenameMode = false
	a.confirmDelete = nil
	a.importPicker.Reset()

	if a.filterInput.Focused() {
		a.filterInput.Blur()
	}
	if a.managerRenameInput.Focused() {
		a.managerRenameInput.Blur()
	}
}

func (a *AppView) acknowledge(title, msg string, modalType ModalType) {
	a.showAcknowledge = true
	a.acknowledgeTitle = title
	a.acknowledgeMsg = msg
	a.acknowledgeType = modalType
}
