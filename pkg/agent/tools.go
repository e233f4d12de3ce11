package agent

import "context"

// ToolHandler executes one tool call. Arguments is the raw JSON
// produced by the model. A returned error is surfaced to the model as
// an error result so it can recover or conclude without the tool; it
// never reaches the user.
type ToolHandler func(ctx context.Context, arguments string) (string, error)

// ToolDefinition describes a tool bound to an agent.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON Schema
	Handler     ToolHandler
}
