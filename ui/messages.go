package ui

import (
	"promptedit/model"
)

type conversationSavedMsg struct {
	Err error
}

type transcriptImportedMsg struct {
	Messages  model.Transcript
	ToolsText string
	Path      string
	Err       error
}

type transcriptExportedMsg struct {
	Path string
	Err  error
}

type clipboardCopiedMsg struct {
	What string // "content" or "transcript"
	Err  error
}

// editorMode selects which input surface owns the keyboard
type editorMode int

const (
	modeList editorMode = iota
	modeEditContent
	modeEditToolCallID
	modeEditToolCalls
	modeEditTools
	modeRename
)
