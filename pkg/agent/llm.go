package agent

import "context"

// Conversation roles on the LLM wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ConversationMessage is one turn of the conversation sent to the model.
type ConversationMessage struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall // for assistant messages
	ToolCallID string     // for tool result messages
	ToolName   string     // for tool result messages
}

// ToolCall is a model's request to invoke a tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON
}

// GenerateInput is one model call.
type GenerateInput struct {
	AgentName   string
	Messages    []ConversationMessage
	Tools       []ToolDefinition // nil = no tools
	Temperature float64
}

// Usage reports token consumption for one model call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Completion is the accumulated result of one model call.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
	Usage     *Usage // nil when the provider did not report usage
}

// LLMClient generates one model turn. When onDelta is non-nil it is
// invoked with each text fragment as the provider streams it; the
// returned Completion carries the accumulated text, any tool calls,
// and token usage. An error returned by onDelta aborts the stream and
// is returned from GenerateStream.
type LLMClient interface {
	GenerateStream(ctx context.Context, input GenerateInput, onDelta func(content string) error) (*Completion, error)
}
