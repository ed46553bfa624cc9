package port

import "context"

// Role values for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage is one message in a chat-completion exchange.
type ChatMessage struct {
	Role    string
	Content string

	// ToolCalls is set on assistant messages that request tool execution.
	ToolCalls []ToolCall

	// ToolCallID and Name are set on tool-role messages carrying a result
	// back to the model.
	ToolCallID string
	Name       string
}

// ToolCall is a model request to run a named tool with a string argument.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolSpec describes a callable tool to the model. Every tool takes a
// single string argument named "query".
type ToolSpec struct {
	Name        string
	Description string
}

// ChatModel is a chat-completion service with tool-calling support.
// The returned message either carries final text or one or more tool calls.
type ChatModel interface {
	Complete(ctx context.Context, messages []ChatMessage, tools []ToolSpec) (ChatMessage, error)

	// ModelName returns the name of the model.
	ModelName() string
}
