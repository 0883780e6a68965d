package model

// Transcript is an ordered message sequence. Order is conversation turn
// order and is semantically meaningful.
//
// Every operation returns a new slice instead of mutating in place, so the
// editor can use structural comparison to decide what to re-render, and each
// operation stays a pure function that is trivial to test.
type Transcript []Message

// newMessage constructs an empty message of the given role. New tool messages
// default their tool_call_id to the most recently emitted tool call anywhere
// in the transcript, or "" when none exists.
func newMessage(role Role, t Transcript) Message {
	msg := Message{
		Token: NewToken(),
		Role:  role,
	}

	switch role {
	case RoleAssistant:
		msg.SetContent("")
		msg.ToolCalls = []ToolCall{}
	case RoleTool:
		msg.SetContent("")
		ids := t.ToolCallIDs()
		if len(ids) > 0 {
			msg.ToolCallID = ids[len(ids)-1]
		}
	default:
		msg.SetContent("")
	}

	return msg
}

// Append adds a new empty message of the given role at the end
func (t Transcript) Append(role Role) (Transcript, Message) {
	msg := newMessage(role, t)
	out := make(Transcript, len(t), len(t)+1)
	copy(out, t)
	return append(out, msg), msg
}

// InsertAt splices a new empty message of the given role into the sequence.
// The index is clamped to [0, len].
func (t Transcript) InsertAt(index int, role Role) (Transcript, Message) {
	if index < 0 {
		index = 0
	}
	if index > len(t) {
		index = len(t)
	}

	msg := newMessage(role, t)
	out := make(Transcript, 0, len(t)+1)
	out = append(out, t[:index]...)
	out = append(out, msg)
	out = append(out, t[index:]...)
	return out, msg
}

// Update replaces the message at index with the caller's replacement. The
// identity token of the existing message is preserved regardless of what the
// replacement carries - identity is the model's to own, not the caller's.
// Out-of-range indices are silently ignored.
func (t Transcript) Update(index int, replacement Message) Transcript {
	if index < 0 || index >= len(t) {
		return t
	}

	replacement.Token = t[index].Token
	out := make(Transcript, len(t))
	copy(out, t)
	out[index] = replacement
	return out
}

// Remove deletes the message at index. Out-of-range indices are silently
// ignored - they can only arise from internal coordinate mistakes, never
// from user-facing conditions.
func (t Transcript) Remove(index int) Transcript {
	if index < 0 || index >= len(t) {
		return t
	}

	out := make(Transcript, 0, len(t)-1)
	out = append(out, t[:index]...)
	out = append(out, t[index+1:]...)
	return out
}

// MoveBy relocates the message at index to index+delta by removal and
// reinsertion. No-op when either end of the move is out of bounds.
func (t Transcript) MoveBy(index, delta int) Transcript {
	if index < 0 || index >= len(t) {
		return t
	}
	target := index + delta
	if target < 0 || target >= len(t) {
		return t
	}

	out := make(Transcript, len(t))
	copy(out, t)
	msg := out[index]
	out = append(out[:index], out[index+1:]...)
	out = append(out[:target], append(Transcript{msg}, out[target:]...)...)
	return out
}

// ToolCallIDs returns the ids of all tool calls emitted by assistant
// messages, in transcript order, duplicates included. It drives the advisory
// tool_call_id suggestions for tool messages.
func (t Transcript) ToolCallIDs() []string {
	var ids []string
	for _, msg := range t {
		if msg.Role != RoleAssistant {
			continue
		}
		for _, call := range msg.ToolCalls {
			ids = append(ids, call.ID)
		}
	}
	return ids
}

// HasToolCallID reports whether id matches a known tool call. Used only for
// the advisory dangling-reference hint; never enforced.
func (t Transcript) HasToolCallID(id string) bool {
	for _, known := range t.ToolCallIDs() {
		if known == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the transcript, keeping identity tokens.
// Used to snapshot the editing buffers for deferred persistence.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	for i, msg := range t {
		out[i] = msg.Clone()
	}
	return out
}

// EnsureTokens assigns a fresh identity token to every message missing one.
// Stored and imported data never carries tokens, so this runs on every load.
func (t Transcript) EnsureTokens() Transcript {
	out := make(Transcript, len(t))
	for i, msg := range t {
		if msg.Token == "" {
			msg.Token = NewToken()
		}
		out[i] = msg
	}
	return out
}
