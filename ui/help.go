package ui

import (
	"github.com/charmbracelet/lipgloss"
)

func renderHelpModal(width, height int) string {
	green := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)

	title := green.Render("promptedit - Keyboard Shortcuts")

	blue := lipgloss.NewStyle().Foreground(accentColor)

	transcriptActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Transcript"),
		"• j/k           Navigate messages",
		"• g/G           Jump to first/last",
		"• s/u/a/t       Append system/user/assistant/tool",
		"• i / o         Insert before/after (then role key)",
		"• J/K           Move message down/up",
		"• r             Cycle message role",
		"• d             Delete message",
		"• e / Enter     Edit content",
		"• C             Clear content (assistant)",
		"• c             Edit tool calls / tool_call_id",
	)

	conversationActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Conversation"),
		"• m             Conversation manager",
		"• n             Rename conversation",
		"• T             Edit tool schema",
		"• x             Export to JSON file",
		"• y             Copy message content",
		"• Y             Copy transcript JSON",
		"• w             Save now",
	)

	managerActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Manager"),
		"• Enter         Load conversation",
		"• n / c         New / Duplicate",
		"• r / d         Rename / Delete",
		"• i / x         Import / Export",
		"• /             Fuzzy filter",
	)

	tips := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Tips"),
		"• Edits save automatically after a short pause",
		"• Esc closes editors and saves",
		"• tool_call_id suggestions are advisory only",
	)

	column1 := lipgloss.JoinVertical(
		lipgloss.Left,
		transcriptActions,
		"",
		tips,
	)

	column2 := lipgloss.JoinVertical(
		lipgloss.Left,
		conversationActions,
		"",
		managerActions,
	)

	columnStyle := lipgloss.NewStyle().Width(46).PaddingLeft(4)

	twoColumns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(column1),
		"    ",
		columnStyle.Render(column2),
	)

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Render("      Press ? or Esc to close this help")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		twoColumns,
		"",
		footer,
	)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2).
		Width(104)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox.Render(content),
	)
}
