// Package agent implements the tool-calling agent kernel and the roster
// of agents the orchestrations run.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nuclearops/lera/pkg/models"
	"github.com/nuclearops/lera/pkg/state"
	"github.com/nuclearops/lera/pkg/stream"
)

// DefaultMaxTurns bounds the tool-calling loop. The final turn always
// runs without tools so the model has to conclude.
const DefaultMaxTurns = 5

// EmitFunc receives output fragments as an agent produces them.
type EmitFunc func(stream.Message) error

// Agent is one tool-calling agent: a system instruction, a bound tool
// set, and the multi-turn loop driving them. Tool calls come back as
// structured values from the provider, never parsed from text; a
// response without tool calls is the final answer.
type Agent struct {
	DisplayName  string
	TraceName    string
	Instructions string
	Tools        []ToolDefinition
	Temperature  float64
	MaxTurns     int

	llm   LLMClient
	store *state.Store
}

// New builds an agent over the request store. Temperature stays 0 so
// runs are as repeatable as the provider allows.
func New(displayName, traceName, instructions string, llm LLMClient, store *state.Store, tools ...ToolDefinition) *Agent {
	return &Agent{
		DisplayName:  displayName,
		TraceName:    traceName,
		Instructions: instructions,
		Tools:        tools,
		MaxTurns:     DefaultMaxTurns,
		llm:          llm,
		store:        store,
	}
}

// InvokeStream runs the loop over the store's conversation history,
// forwarding text deltas to emit as the provider streams them. It
// returns the final turn's accumulated text.
func (a *Agent) InvokeStream(ctx context.Context, emit EmitFunc) (string, error) {
	return a.run(ctx, a.store.History(), emit)
}

// Invoke runs the loop over the store's conversation history without
// streaming.
func (a *Agent) Invoke(ctx context.Context) (string, error) {
	return a.run(ctx, a.store.History(), nil)
}

// InvokeOn runs the loop over an explicit history instead of the
// store's. The extraction agent uses this to see only the final
// recommendation text.
func (a *Agent) InvokeOn(ctx context.Context, history []models.ChatMessage) (string, error) {
	return a.run(ctx, history, nil)
}

func (a *Agent) run(ctx context.Context, history []models.ChatMessage, emit EmitFunc) (string, error) {
	ctx, span := otel.Tracer("lera/agent").Start(ctx, a.TraceName)
	defer span.End()

	maxTurns := a.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	messages := make([]ConversationMessage, 0, len(history)+1)
	messages = append(messages, ConversationMessage{Role: RoleSystem, Content: a.Instructions})
	for _, m := range history {
		messages = append(messages, ConversationMessage{Role: string(m.Role), Content: m.Content})
	}

	var onDelta func(string) error
	if emit != nil {
		onDelta = func(content string) error { return emit(stream.Text(content)) }
	}

	for turn := 0; turn < maxTurns; turn++ {
		tools := a.Tools
		if turn == maxTurns-1 {
			tools = nil
		}

		completion, err := a.llm.GenerateStream(ctx, GenerateInput{
			AgentName:   a.TraceName,
			Messages:    messages,
			Tools:       tools,
			Temperature: a.Temperature,
		}, onDelta)
		if err != nil {
			span.RecordError(err)
			return "", fmt.Errorf("%s: %w", a.TraceName, err)
		}
		if completion.Usage != nil {
			a.store.AddUsage(a.TraceName, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
			span.SetAttributes(
				attribute.Int("llm.prompt_tokens", completion.Usage.PromptTokens),
				attribute.Int("llm.completion_tokens", completion.Usage.CompletionTokens),
			)
		}

		if len(completion.ToolCalls) == 0 {
			return completion.Content, nil
		}

		messages = append(messages, ConversationMessage{
			Role:      RoleAssistant,
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})
		for _, call := range completion.ToolCalls {
			messages = append(messages, ConversationMessage{
				Role:       RoleTool,
				Content:    a.executeToolCall(ctx, call),
				ToolCallID: call.ID,
				ToolName:   call.Name,
			})
		}
	}
	return "", fmt.Errorf("%s: no conclusion after %d turns", a.TraceName, maxTurns)
}

func (a *Agent) executeToolCall(ctx context.Context, call ToolCall) string {
	for i := range a.Tools {
		if a.Tools[i].Name != call.Name {
			continue
		}
		result, err := a.Tools[i].Handler(ctx, call.Arguments)
		if err != nil {
			slog.Warn("Tool call failed",
				"agent", a.TraceName,
				"tool", call.Name,
				"error", err)
			return "Error: " + err.Error()
		}
		return result
	}
	slog.Warn("Model requested unknown tool", "agent", a.TraceName, "tool", call.Name)
	return fmt.Sprintf("Error: unknown tool %q", call.Name)
}
