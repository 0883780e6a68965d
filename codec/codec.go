// Package codec translates between the in-memory editing representation and
// the OpenAI-compatible wire JSON used for file export and import. The wire
// shapes produced by Export are the documented external contract: identity
// tokens never appear in them, and tool call arguments are always a
// JSON-encoded string.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"promptedit/model"
)

// Message is the external wire shape of one transcript message. Only the
// fields relevant to the message's role are populated.
type Message struct {
	Role       string     `json:"role"`
	Content    *string    `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID *string    `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is the external wire shape of one tool call
type ToolCall struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

// Function carries the tool call's name and JSON-string-encoded arguments
type Function struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Document is the exported file shape: messages plus the conversation's
// tool schema as a raw JSON value.
type Document struct {
	Messages []Message       `json:"messages"`
	Tools    json.RawMessage `json:"tools"`
}

// Export converts a transcript and the raw tool schema text into the wire
// document. It never fails: malformed tool schema text degrades to an empty
// tool list, and any in-memory arguments value is forced into a JSON string.
func Export(messages model.Transcript, toolsText string) Document {
	doc := Document{
		Messages: make([]Message, 0, len(messages)),
		Tools:    parseTools(toolsText),
	}

	for _, msg := range messages {
		out := Message{Role: string(msg.Role)}

		if msg.Content != nil {
			text := *msg.Content
			out.Content = &text
		}

		switch msg.Role {
		case model.RoleAssistant:
			// An empty tool_calls slice serializes as no key at all, not as
			// []; chat-completions endpoints reject an empty array here.
			if msg.ToolCalls != nil {
				out.ToolCalls = make([]ToolCall, 0, len(msg.ToolCalls))
				for _, call := range msg.ToolCalls {
					out.ToolCalls = append(out.ToolCalls, exportToolCall(call))
				}
			}
		case model.RoleTool:
			// tool messages always carry tool_call_id, even when unset
			id := msg.ToolCallID
			out.ToolCallID = &id
			out.Name = msg.Name
		}

		doc.Messages = append(doc.Messages, out)
	}

	return doc
}

// ExportJSON renders the export document pretty-printed for the file channel
func ExportJSON(messages model.Transcript, toolsText string) []byte {
	doc := Export(messages, toolsText)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		// The document is built from plain structs and validated raw JSON;
		// this cannot fail, but export must never abort regardless.
		return []byte(`{"messages":[],"tools":[]}`)
	}
	return data
}

func exportToolCall(call model.ToolCall) ToolCall {
	out := ToolCall{
		ID:   call.ID,
		Type: call.Type,
	}
	if out.ID == "" {
		out.ID = model.NewCallID()
	}
	if out.Type == "" {
		out.Type = "function"
	}

	out.Function.Name = call.Function.Name
	out.Function.Arguments = encodeArguments(call.Function.Arguments)
	return out
}

// encodeArguments forces the arguments value into JSON text. A string passes
// through verbatim; anything else is JSON-encoded.
func encodeArguments(args any) string {
	if s, ok := args.(string); ok {
		return s
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "null"
	}
	return string(data)
}

// parseTools returns the tool schema text as a raw JSON value, or an empty
// array when the text does not parse. Malformed schema text must never
// abort an export.
func parseTools(toolsText string) json.RawMessage {
	trimmed := strings.TrimSpace(toolsText)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return json.RawMessage("[]")
	}
	return json.RawMessage(trimmed)
}

// Import parses wire JSON into a transcript. It accepts either a bare array
// of messages or the legacy wrapped form {"messages": [...], "tools": [...]}.
// Parse failures are reported to the caller; the caller's state is untouched.
// Every imported message receives a fresh identity token.
func Import(raw []byte) (model.Transcript, json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, nil, fmt.Errorf("file is empty")
	}

	var wireMessages []Message
	tools := json.RawMessage("[]")

	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal([]byte(trimmed), &wireMessages); err != nil {
			return nil, nil, fmt.Errorf("invalid transcript JSON: %w", err)
		}
	case '{':
		var wrapped struct {
			Messages []Message       `json:"messages"`
			Tools    json.RawMessage `json:"tools"`
		}
		if err := json.Unmarshal([]byte(trimmed), &wrapped); err != nil {
			return nil, nil, fmt.Errorf("invalid transcript JSON: %w", err)
		}
		if wrapped.Messages == nil {
			return nil, nil, fmt.Errorf("invalid transcript JSON: no messages field")
		}
		wireMessages = wrapped.Messages
		if len(wrapped.Tools) > 0 {
			tools = wrapped.Tools
		}
	default:
		return nil, nil, fmt.Errorf("invalid transcript JSON: expected array or object")
	}

	transcript := make(model.Transcript, 0, len(wireMessages))
	for _, wire := range wireMessages {
		transcript = append(transcript, importMessage(wire))
	}

	return transcript, tools, nil
}

func importMessage(wire Message) model.Message {
	msg := model.Message{
		Token: model.NewToken(),
		Role:  model.Role(wire.Role),
		Name:  wire.Name,
	}

	if wire.Content != nil {
		msg.SetContent(*wire.Content)
	}
	if wire.ToolCallID != nil {
		msg.ToolCallID = *wire.ToolCallID
	}
	if wire.ToolCalls != nil {
		msg.ToolCalls = make([]model.ToolCall, 0, len(wire.ToolCalls))
		for _, call := range wire.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, model.ToolCall{
				ID:   call.ID,
				Type: call.Type,
				Function: model.ToolCallFunction{
					Name:      call.Function.Name,
					Arguments: call.Function.Arguments,
				},
			})
		}
	}

	return msg
}

// FormatTools pretty-prints a raw tool schema value for the editing buffer
func FormatTools(tools json.RawMessage) string {
	if len(tools) == 0 {
		return "[]"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, tools, "", "  "); err != nil {
		return string(tools)
	}
	return buf.String()
}
