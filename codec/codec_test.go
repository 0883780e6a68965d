package codec

import (
	"encoding/json"
	"strings"
	"testing"

	"promptedit/model"
)

func strPtr(s string) *string { return &s }

func TestExportWireShapes(t *testing.T) {
	transcript := model.Transcript{
		{Token: model.NewToken(), Role: model.RoleSystem, Content: strPtr("be helpful")},
		{Token: model.NewToken(), Role: model.RoleUser, Content: strPtr("weather in Paris?")},
		{Token: model.NewToken(), Role: model.RoleAssistant, ToolCalls: []model.ToolCall{
			{ID: "call_1", Type: "function", Function: model.ToolCallFunction{
				Name:      "get_weather",
				Arguments: `{"location": "Paris"}`,
			}},
		}},
		{Token: model.NewToken(), Role: model.RoleTool, ToolCallID: "call_1", Name: "get_weather", Content: strPtr(`{"temp": 18}`)},
	}

	doc := Export(transcript, "[]")

	t.Run("MessageCount", func(t *testing.T) {
		if len(doc.Messages) != 4 {
			t.Fatalf("Export() produced %d messages, want 4", len(doc.Messages))
		}
	})

	t.Run("TokensNeverSerialized", func(t *testing.T) {
		data, err := json.Marshal(doc)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		for _, msg := range transcript {
			if strings.Contains(string(data), msg.Token) {
				t.Error("identity token leaked into export JSON")
			}
		}
	})

	t.Run("AssistantWithoutContentOmitsKey", func(t *testing.T) {
		data, err := json.Marshal(doc.Messages[2])
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if strings.Contains(string(data), `"content"`) {
			t.Error("assistant message without content should omit the content key")
		}
	})

	t.Run("ToolMessageAlwaysCarriesCallID", func(t *testing.T) {
		if doc.Messages[3].ToolCallID == nil {
			t.Fatal("tool message lost its tool_call_id")
		}
		if *doc.Messages[3].ToolCallID != "call_1" {
			t.Errorf("tool_call_id = %q, want %q", *doc.Messages[3].ToolCallID, "call_1")
		}
	})

	t.Run("ToolMessageWithEmptyCallIDStillExportsKey", func(t *testing.T) {
		emptyRef := model.Transcript{
			{Token: model.NewToken(), Role: model.RoleTool, Content: strPtr("orphan")},
		}
		doc := Export(emptyRef, "[]")
		data, err := json.Marshal(doc.Messages[0])
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if !strings.Contains(string(data), `"tool_call_id":""`) {
			t.Errorf("empty tool_call_id should still serialize, got %s", data)
		}
	})

	t.Run("EmptyToolCallsOmitsKey", func(t *testing.T) {
		noCalls := model.Transcript{
			{Token: model.NewToken(), Role: model.RoleAssistant, Content: strPtr("plain reply"), ToolCalls: []model.ToolCall{}},
		}
		doc := Export(noCalls, "[]")
		data, err := json.Marshal(doc.Messages[0])
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if strings.Contains(string(data), `"tool_calls"`) {
			t.Errorf("empty tool_calls should omit the key, got %s", data)
		}
	})

	t.Run("EmptyContentStillExports", func(t *testing.T) {
		empty := model.Transcript{
			{Token: model.NewToken(), Role: model.RoleUser, Content: strPtr("")},
		}
		doc := Export(empty, "[]")
		data, err := json.Marshal(doc.Messages[0])
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if !strings.Contains(string(data), `"content":""`) {
			t.Errorf("defined empty content should export, got %s", data)
		}
	})
}

func TestExportToolCalls(t *testing.T) {
	t.Run("StringArgumentsPassThrough", func(t *testing.T) {
		call := exportToolCall(model.ToolCall{
			ID: "call_1", Type: "function",
			Function: model.ToolCallFunction{Name: "f", Arguments: `{"a": 1}`},
		})
		if call.Function.Arguments != `{"a": 1}` {
			t.Errorf("arguments = %q, want verbatim string", call.Function.Arguments)
		}
	})

	t.Run("DecodedArgumentsReEncode", func(t *testing.T) {
		call := exportToolCall(model.ToolCall{
			ID: "call_1", Type: "function",
			Function: model.ToolCallFunction{Name: "f", Arguments: map[string]any{"a": float64(1)}},
		})
		if call.Function.Arguments != `{"a":1}` {
			t.Errorf("arguments = %q, want re-encoded JSON string", call.Function.Arguments)
		}
	})

	t.Run("MissingIDAndTypeGetDefaults", func(t *testing.T) {
		call := exportToolCall(model.ToolCall{
			Function: model.ToolCallFunction{Name: "f", Arguments: "{}"},
		})
		if !strings.HasPrefix(call.ID, "call_") {
			t.Errorf("generated id = %q, want call_ prefix", call.ID)
		}
		if call.Type != "function" {
			t.Errorf("type = %q, want %q", call.Type, "function")
		}
	})
}

func TestParseTools(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ValidArray", `[{"type": "function"}]`, `[{"type": "function"}]`},
		{"Empty", "", "[]"},
		{"Whitespace", "   \n", "[]"},
		{"MalformedDegradesToEmpty", `[{"type": `, "[]"},
		{"TrailingGarbageDegrades", `[] garbage`, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(parseTools(tt.input))
			if got != tt.want {
				t.Errorf("parseTools(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestImport(t *testing.T) {
	t.Run("BareArray", func(t *testing.T) {
		raw := `[
			{"role": "user", "content": "hello"},
			{"role": "assistant", "content": "hi"}
		]`
		messages, tools, err := Import([]byte(raw))
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if len(messages) != 2 {
			t.Fatalf("Import() produced %d messages, want 2", len(messages))
		}
		if string(tools) != "[]" {
			t.Errorf("bare array import tools = %q, want []", tools)
		}
	})

	t.Run("WrappedDocument", func(t *testing.T) {
		raw := `{
			"messages": [{"role": "user", "content": "hello"}],
			"tools": [{"type": "function"}]
		}`
		messages, tools, err := Import([]byte(raw))
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if len(messages) != 1 {
			t.Fatalf("Import() produced %d messages, want 1", len(messages))
		}
		if !strings.Contains(string(tools), "function") {
			t.Errorf("wrapped import lost tools: %q", tools)
		}
	})

	t.Run("RolesAndContentPreserved", func(t *testing.T) {
		raw := `{"messages": [
			{"role": "system", "content": "S"},
			{"role": "user", "content": "U"}
		]}`
		messages, _, err := Import([]byte(raw))
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if len(messages) != 2 {
			t.Fatalf("Import() produced %d messages, want 2", len(messages))
		}

		if messages[0].Role != model.RoleSystem {
			t.Errorf("messages[0].Role = %q, want system", messages[0].Role)
		}
		if !messages[0].HasContent() || messages[0].ContentText() != "S" {
			t.Errorf("messages[0] content = %q, want S", messages[0].ContentText())
		}
		if messages[1].Role != model.RoleUser {
			t.Errorf("messages[1].Role = %q, want user", messages[1].Role)
		}
		if !messages[1].HasContent() || messages[1].ContentText() != "U" {
			t.Errorf("messages[1] content = %q, want U", messages[1].ContentText())
		}
	})

	t.Run("ImportedMessagesGetFreshTokens", func(t *testing.T) {
		raw := `[{"role": "user", "content": "a"}, {"role": "user", "content": "b"}]`
		messages, _, err := Import([]byte(raw))
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if messages[0].Token == "" || messages[1].Token == "" {
			t.Error("imported messages missing identity tokens")
		}
		if messages[0].Token == messages[1].Token {
			t.Error("imported messages share a token")
		}
	})

	t.Run("ToolCallsSurviveRoundTrip", func(t *testing.T) {
		original := model.Transcript{
			{Token: model.NewToken(), Role: model.RoleAssistant, ToolCalls: []model.ToolCall{
				{ID: "call_9", Type: "function", Function: model.ToolCallFunction{
					Name:      "search",
					Arguments: `{"q": "go"}`,
				}},
			}},
			{Token: model.NewToken(), Role: model.RoleTool, ToolCallID: "call_9", Content: strPtr("found")},
		}

		data := ExportJSON(original, `[{"type": "function"}]`)
		messages, tools, err := Import(data)
		if err != nil {
			t.Fatalf("round trip Import() error = %v", err)
		}

		if len(messages) != 2 {
			t.Fatalf("round trip produced %d messages, want 2", len(messages))
		}
		calls := messages[0].ToolCalls
		if len(calls) != 1 || calls[0].ID != "call_9" {
			t.Fatalf("tool calls lost in round trip: %+v", calls)
		}
		if args, ok := calls[0].Function.Arguments.(string); !ok || args != `{"q": "go"}` {
			t.Errorf("arguments = %v, want the original JSON string", calls[0].Function.Arguments)
		}
		if messages[1].ToolCallID != "call_9" {
			t.Errorf("tool_call_id = %q, want call_9", messages[1].ToolCallID)
		}
		if !strings.Contains(string(tools), "function") {
			t.Errorf("tools lost in round trip: %q", tools)
		}
	})

	t.Run("ErrorCases", func(t *testing.T) {
		tests := []struct {
			name  string
			input string
		}{
			{"Empty", ""},
			{"NotJSON", "hello"},
			{"BrokenArray", `[{"role": `},
			{"ObjectWithoutMessages", `{"tools": []}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, _, err := Import([]byte(tt.input))
				if err == nil {
					t.Errorf("Import(%q) succeeded, want error", tt.input)
				}
			})
		}
	})
}

func TestExportJSONIsValid(t *testing.T) {
	transcript := model.Transcript{
		{Token: model.NewToken(), Role: model.RoleUser, Content: strPtr("hello")},
	}

	data := ExportJSON(transcript, "not valid json at all")
	if !json.Valid(data) {
		t.Fatalf("ExportJSON() produced invalid JSON: %s", data)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if string(doc.Tools) != "[]" {
		t.Errorf("malformed tools text exported as %q, want []", doc.Tools)
	}
}

func TestFormatTools(t *testing.T) {
	t.Run("PrettyPrints", func(t *testing.T) {
		got := FormatTools(json.RawMessage(`[{"a":1}]`))
		if !strings.Contains(got, "\n") {
			t.Errorf("FormatTools() = %q, want indented output", got)
		}
	})

	t.Run("EmptyBecomesArray", func(t *testing.T) {
		if got := FormatTools(nil); got != "[]" {
			t.Errorf("FormatTools(nil) = %q, want []", got)
		}
	})

	t.Run("InvalidPassesThrough", func(t *testing.T) {
		if got := FormatTools(json.RawMessage("{broken")); got != "{broken" {
			t.Errorf("FormatTools(invalid) = %q, want passthrough", got)
		}
	})
}
