package storage

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"promptedit/model"
)

// Conversation is a named, independently persisted transcript plus its
// associated tool schema. Tools holds the raw schema text exactly as typed;
// it is only structurally validated (must parse as JSON) at export time.
type Conversation struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Tools     string           `json:"tools"`
	Messages  model.Transcript `json:"messages"`
}

// Clone returns a deep copy of the conversation
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = c.Messages.Clone()
	return out
}

// State is the unit of persistence: every conversation plus the active
// pointer. ActiveID always refers to an existing conversation, or is empty
// when the collection is empty.
type State struct {
	Conversations []Conversation `json:"conversations"`
	ActiveID      string         `json:"activeId"`
}

// Port is the persistence boundary. Load returns nil when nothing has been
// saved yet; the store then seeds an example conversation. Backends are
// substitutable with an in-memory fake in tests.
type Port interface {
	Load() (*State, error)
	Save(*State) error
}

const defaultToolSchema = `[
  {
    "type": "function",
    "function": {
      "name": "get_weather",
      "description": "Look up the current weather for a location",
      "parameters": {
        "type": "object",
        "properties": {
          "location": {
            "type": "string",
            "description": "City and country, e.g. \"Paris, France\""
          }
        },
        "required": ["location"]
      }
    }
  }
]`

// seedConversation builds the example conversation created on first run: a
// system/user/assistant/tool round trip for a weather lookup tool call.
func seedConversation(now time.Time) Conversation {
	content := func(text string) *string { return &text }

	messages := model.Transcript{
		{
			Token:   model.NewToken(),
			Role:    model.RoleSystem,
			Content: content("You are a helpful assistant with access to a weather lookup tool."),
		},
		{
			Token:   model.NewToken(),
			Role:    model.RoleUser,
			Content: content("What's the weather like in Paris right now?"),
		},
		{
			Token: model.NewToken(),
			Role:  model.RoleAssistant,
			ToolCalls: []model.ToolCall{
				{
					ID:   "call_weather01",
					Type: "function",
					Function: model.ToolCallFunction{
						Name:      "get_weather",
						Arguments: `{"location": "Paris, France"}`,
					},
				},
			},
		},
		{
			Token:      model.NewToken(),
			Role:       model.RoleTool,
			ToolCallID: "call_weather01",
			Name:       "get_weather",
			Content:    content(`{"temperature": 18, "unit": "celsius", "conditions": "partly cloudy"}`),
		},
		{
			Token:   model.NewToken(),
			Role:    model.RoleAssistant,
			Content: content("It's currently 18°C and partly cloudy in Paris."),
		},
	}

	return Conversation{
		ID:        uuid.New().String(),
		Name:      "Weather tool example",
		UpdatedAt: now,
		Tools:     defaultToolSchema,
		Messages:  messages,
	}
}

// SanitizeFilename removes or replaces characters that are invalid in
// filenames, for naming exported transcripts after their conversation
func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-",
		"\"", "-", "<", "-", ">", "-", "|", "-", " ", "-",
		"\n", "-", "\r", "-",
	)
	name = replacer.Replace(name)

	name = strings.Trim(name, "-.")

	if len(name) > 50 {
		name = name[:50]
	}

	if name == "" {
		name = "conversation"
	}

	return name
}
