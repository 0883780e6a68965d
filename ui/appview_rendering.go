package ui

import (
	"fmt"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/charmbracelet/lipgloss"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"

	appmodel "promptedit/model"
)

func (a AppView) renderTitleBar() string {
	appText := AssistantStyle.Render("PROMPTEDIT")
	nameText := UserStyle.Render(fmt.Sprintf(" - %s", a.conversationTitle()))

	dirtyText := ""
	if a.appModel.Dirty {
		dirtyText = SelectedStyle.Render(" ●")
	}

	countText := DimStyle.Render(fmt.Sprintf("  (%d messages)", len(a.appModel.Transcript)))

	return appText + nameText + dirtyText + countText
}

func (a AppView) conversationTitle() string {
	if a.appModel.ConversationID == "" {
		return "no conversation"
	}
	if a.appModel.Name == "" {
		return "untitled"
	}
	return a.appModel.Name
}

func (a AppView) renderBody() string {
	bottomPane := a.renderBottomPane()
	bottomHeight := lipgloss.Height(bottomPane)

	// Title (1) + spacer (1) + separator (1) + status bar (1)
	listHeight := a.height - bottomHeight - 4
	if listHeight < 3 {
		listHeight = 3
	}

	list := a.renderTranscriptList(listHeight)
	separator := DimStyle.Render(strings.Repeat("─", a.width))

	return lipgloss.JoinVertical(lipgloss.Left, list, separator, bottomPane)
}

func (a AppView) renderTranscriptList(maxLines int) string {
	transcript := a.appModel.Transcript

	if a.appModel.ConversationID == "" {
		empty := DimStyle.Italic(true).Render("No conversation. Press m to open the conversation manager.")
		return padLines([]string{empty}, maxLines)
	}

	if len(transcript) == 0 {
		empty := DimStyle.Italic(true).Render("Empty transcript. Press s/u/a/t to add a message.")
		return padLines([]string{empty}, maxLines)
	}

	startIdx := 0
	endIdx := len(transcript)
	if len(transcript) > maxLines {
		if a.selectedIdx < maxLines/2 {
			endIdx = maxLines
		} else if a.selectedIdx >= len(transcript)-maxLines/2 {
			startIdx = len(transcript) - maxLines
		} else {
			startIdx = a.selectedIdx - maxLines/2
			endIdx = startIdx + maxLines
		}
	}

	var lines []string
	for i := startIdx; i < endIdx && i < len(transcript); i++ {
		lines = append(lines, a.renderListLine(i))
	}

	return padLines(lines, maxLines)
}

func (a AppView) renderListLine(i int) string {
	msg := a.appModel.Transcript[i]

	indicator := "  "
	if i == a.selectedIdx {
		indicator = "▶ "
	}

	roleLabel := fmt.Sprintf("%-9s", string(msg.Role))
	styledRole := RoleStyle(msg.Role).Render(roleLabel)

	maxSummary := a.width - 16
	if maxSummary < 10 {
		maxSummary = 10
	}
	summary := a.messageSummary(msg, maxSummary)

	line := indicator + styledRole + " " + summary
	if i == a.selectedIdx {
		return SelectedStyle.Render(indicator+roleLabel) + " " + summary
	}
	return line
}

// messageSummary builds the one-line list representation of a message.
// Only the content text is truncated; the tool annotations are short.
func (a AppView) messageSummary(msg appmodel.Message, maxWidth int) string {
	var parts []string

	if msg.HasContent() {
		text := msg.ContentText()
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			text = text[:idx]
		}
		if text == "" {
			text = DimStyle.Render("(empty)")
		} else {
			text = runewidth.Truncate(text, maxWidth, "…")
		}
		parts = append(parts, text)
	} else {
		parts = append(parts, DimStyle.Render("(no content)"))
	}

	if msg.Role == appmodel.RoleAssistant && len(msg.ToolCalls) > 0 {
		var names []string
		for _, call := range msg.ToolCalls {
			names = append(names, call.Function.Name)
		}
		parts = append(parts, ToolStyle.Render(fmt.Sprintf("⚙ %s", strings.Join(names, ", "))))
	}

	if msg.Role == appmodel.RoleTool {
		ref := msg.ToolCallID
		if ref == "" {
			ref = "(unset)"
		}
		refText := "→ " + ref
		// Dangling references are legal intermediate states; hint, never block
		if msg.ToolCallID != "" && !a.appModel.Transcript.HasToolCallID(msg.ToolCallID) {
			refText += DimStyle.Render(" ?")
		}
		parts = append(parts, DimStyle.Render(refText))
	}

	return strings.Join(parts, "  ")
}

func (a AppView) renderBottomPane() string {
	switch a.mode {
	case modeEditContent:
		label := TitleStyle.Render("Content") + DimStyle.Render("  (Esc to save)")
		return label + "\n" + a.contentInput.View()

	case modeEditToolCalls:
		label := TitleStyle.Render("Tool calls (JSON)")
		if a.toolCallsInvalid {
			label += "  " + ErrorStyle.Render("Invalid JSON")
		}
		return label + "\n" + a.toolCallsInput.View()

	case modeEditToolCallID:
		label := TitleStyle.Render("Tool call reference") + DimStyle.Render("  (Tab to cycle known ids)")
		pane := label + "\n" + a.toolCallIDInput.View()
		if len(a.suggestions) > 0 {
			pane += "\n" + DimStyle.Render("Known ids: "+strings.Join(a.suggestions, ", "))
		}
		return pane

	case modeEditTools:
		label := TitleStyle.Render("Tool schema (JSON)")
		if a.toolsInvalid {
			label += "  " + ErrorStyle.Render("Invalid JSON")
		}
		return label + "\n" + a.toolsInput.View()

	case modeRename:
		return TitleStyle.Render("Rename conversation") + "\n" + a.renameInput.View()
	}

	return a.renderPreview()
}

// renderPreview shows the selected message's content rendered as markdown
func (a AppView) renderPreview() string {
	msg := a.selectedMessagePreview()
	if msg == nil {
		return DimStyle.Render("(nothing selected)")
	}

	maxHeight := a.height / 3
	if maxHeight < 4 {
		maxHeight = 4
	}

	if !msg.HasContent() || strings.TrimSpace(msg.ContentText()) == "" {
		return DimStyle.Render("(no content)")
	}

	width := a.width - 4
	if width < 20 {
		width = 20
	}

	// Autolink disabled so plain URLs stay plain text and the terminal
	// emulator handles link detection
	customExt := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(customExt)
	r := markdown.NewRenderer(width, 2)
	doc := p.Parse([]byte(msg.ContentText()))
	rendered := string(gomarkdown.Render(doc, r))

	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
		lines = append(lines, DimStyle.Render("  …"))
	}
	return strings.Join(lines, "\n")
}

func (a AppView) selectedMessagePreview() *appmodel.Message {
	if a.selectedIdx < 0 || a.selectedIdx >= len(a.appModel.Transcript) {
		return nil
	}
	return &a.appModel.Transcript[a.selectedIdx]
}

// padLines pads a line block to exactly height lines so the layout stays stable
func padLines(lines []string, height int) string {
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (a AppView) renderStatusBar() string {
	if a.pendingInsert != "" {
		prompt := fmt.Sprintf("Insert %s: ", a.pendingInsert)
		return StatusStyle.Render(prompt) + FormatFooter("s", "System", "u", "User", "a", "Assistant", "t", "Tool", "Esc", "Cancel")
	}

	switch a.mode {
	case modeEditContent:
		return StatusStyle.Render(FormatFooter("Esc", "Save & Close"))
	case modeEditToolCalls:
		if a.toolCallsDiscardArmed {
			return ErrorStyle.Render("Invalid JSON") + "  " + StatusStyle.Render(FormatFooter("Esc", "Discard Edit"))
		}
		return StatusStyle.Render(FormatFooter("Esc", "Save & Close"))
	case modeEditToolCallID:
		return StatusStyle.Render(FormatFooter("Tab", "Suggest", "Enter", "Save", "Esc", "Cancel"))
	case modeEditTools:
		return StatusStyle.Render(FormatFooter("Esc", "Save & Close"))
	case modeRename:
		return StatusStyle.Render(FormatFooter("Enter", "Save", "Alt+U", "Clear", "Esc", "Cancel"))
	}

	footer := FormatFooter("j/k", "Navigate", "s/u/a/t", "Add", "e", "Edit", "c", "Calls", "m", "Conversations", "x", "Export", "?", "Help", "q", "Quit")
	if a.statusText != "" {
		return StatusStyle.Render(a.statusText) + "  " + StatusStyle.Render(footer)
	}
	return StatusStyle.Render(footer)
}
