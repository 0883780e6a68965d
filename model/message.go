package model

import "github.com/google/uuid"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Roles lists the allowed roles in the order they cycle in the editor
var Roles = []Role{RoleSystem, RoleUser, RoleAssistant, RoleTool}

// ToolCallFunction holds the function name and arguments of a tool call.
// Arguments may temporarily hold a decoded JSON value while a transcript is
// being edited, but it is serialized as a JSON-encoded string on every wire.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments any    `json:"arguments"`
}

// ToolCall represents a function invocation requested by an assistant message
type ToolCall struct {
	ID       string           `json:"id,omitempty"`
	Type     string           `json:"type,omitempty"`
	Function ToolCallFunction `json:"function"`
}

// Message is one turn in a conversation transcript.
//
// Token identifies the message across edits and reorders. It exists purely so
// the editor can correlate list entries with messages; it is never serialized,
// neither into the store nor into exported files.
type Message struct {
	Token      string     `json:"-"`
	Role       Role       `json:"role"`
	Content    *string    `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// NewToken returns a fresh identity token
func NewToken() string {
	return uuid.New().String()
}

// NewCallID returns a fresh tool call id in the OpenAI "call_..." shape
func NewCallID() string {
	return "call_" + uuid.New().String()[:8]
}

// HasContent reports whether the content field is defined (possibly empty)
func (m Message) HasContent() bool {
	return m.Content != nil
}

// ContentText returns the content text, or "" when the field is absent
func (m Message) ContentText() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

// SetContent defines the content field
func (m *Message) SetContent(text string) {
	m.Content = &text
}

// ClearContent removes the content field entirely (assistant messages that
// carry only tool calls export without a content key)
func (m *Message) ClearContent() {
	m.Content = nil
}

// Clone returns a deep copy of the message, keeping the identity token
func (m Message) Clone() Message {
	out := m
	if m.Content != nil {
		text := *m.Content
		out.Content = &text
	}
	if m.ToolCalls != nil {
		out.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(out.ToolCalls, m.ToolCalls)
	}
	return out
}
