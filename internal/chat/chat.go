// Package chat defines the conversation log shared by the engine,
// the model adapters, and the tool dispatcher.
package chat

// Role identifies who produced a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model-issued request to invoke a tool. RawArgs carries
// the serialized arguments exactly as the provider returned them; they
// are not parsed until dispatch.
type ToolCall struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	RawArgs string `json:"raw_args"`
}

// Turn is a single entry in the conversation log. Which fields are set
// depends on Role: user turns carry Text; assistant turns carry Text
// and/or ToolCalls; tool turns carry ToolCallID and Text.
type Turn struct {
	Role       Role       `json:"role"`
	Text       string     `json:"text,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// UserTurn builds a user-role turn.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

// AssistantTurn builds an assistant-role turn. Text may be empty when
// the model only requested tool calls.
func AssistantTurn(text string, calls ...ToolCall) Turn {
	return Turn{Role: RoleAssistant, Text: text, ToolCalls: calls}
}

// ToolResultTurn builds a tool-role turn correlated to a tool call by id.
func ToolResultTurn(callID, text string) Turn {
	return Turn{Role: RoleTool, ToolCallID: callID, Text: text}
}

// HasToolCalls reports whether the turn requests any tool invocations.
func (t Turn) HasToolCalls() bool {
	return len(t.ToolCalls) > 0
}
