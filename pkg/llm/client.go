// Package llm implements the agent.LLMClient over Azure OpenAI chat
// completions with native function calling.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/azure"
	"github.com/openai/openai-go/v2/option"
	"github.com/sony/gobreaker/v2"

	"github.com/nuclearops/lera/pkg/agent"
	"github.com/nuclearops/lera/pkg/config"
)

// Circuit breaker settings. The breaker protects the whole call so a
// misbehaving deployment fails fast instead of holding every request
// open for the full timeout.
const (
	breakerMaxFailures uint32 = 5
	breakerTimeout            = 30 * time.Second
	breakerInterval           = 60 * time.Second
)

// Client talks to one Azure OpenAI chat deployment. A single Client is
// shared by every agent of every request; the underlying transport
// pools connections for that.
type Client struct {
	api        openai.Client
	deployment string
	breaker    *gobreaker.CircuitBreaker[*agent.Completion]
}

// callerError marks errors raised by the delta callback or by the
// caller's context, not by the provider. They must not trip the
// breaker: a client hanging up is not a deployment failure.
type callerError struct{ err error }

func (e *callerError) Error() string { return e.err.Error() }
func (e *callerError) Unwrap() error { return e.err }

// NewClient builds the Azure OpenAI client from configuration.
func NewClient(cfg *config.LLMConfig) *Client {
	breaker := gobreaker.NewCircuitBreaker[*agent.Completion](gobreaker.Settings{
		Name:        "llm:" + cfg.Deployment,
		MaxRequests: 1,
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var ce *callerError
			return errors.As(err, &ce)
		},
	})

	return &Client{
		api: openai.NewClient(
			azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
			azure.WithAPIKey(cfg.APIKey),
			option.WithHTTPClient(newPooledHTTPClient()),
		),
		deployment: cfg.Deployment,
		breaker:    breaker,
	}
}

// GenerateStream implements agent.LLMClient. The response is streamed
// and accumulated; tool calls are taken from the accumulated message
// once the stream ends, so partially assembled calls never leak out.
func (c *Client) GenerateStream(ctx context.Context, input agent.GenerateInput, onDelta func(content string) error) (*agent.Completion, error) {
	completion, err := c.breaker.Execute(func() (*agent.Completion, error) {
		return c.generate(ctx, input, onDelta)
	})
	if err != nil {
		var ce *callerError
		if errors.As(err, &ce) {
			return nil, ce.err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("llm circuit open: %w", err)
		}
		return nil, err
	}
	return completion, nil
}

func (c *Client) generate(ctx context.Context, input agent.GenerateInput, onDelta func(content string) error) (*agent.Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.deployment),
		Messages:    toMessageParams(input.Messages),
		Temperature: openai.Float(input.Temperature),
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		},
	}
	if len(input.Tools) > 0 {
		params.Tools = toToolParams(input.Tools)
	}

	stream := c.api.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" && onDelta != nil {
			if err := onDelta(delta); err != nil {
				return nil, &callerError{err: err}
			}
		}
	}
	if err := stream.Err(); err != nil {
		if ctx.Err() != nil {
			return nil, &callerError{err: ctx.Err()}
		}
		return nil, fmt.Errorf("chat completion stream: %w", err)
	}

	completion := &agent.Completion{}
	if len(acc.Choices) > 0 {
		message := acc.Choices[0].Message
		completion.Content = message.Content
		for _, call := range message.ToolCalls {
			completion.ToolCalls = append(completion.ToolCalls, agent.ToolCall{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			})
		}
	}
	if acc.Usage.PromptTokens > 0 || acc.Usage.CompletionTokens > 0 {
		completion.Usage = &agent.Usage{
			PromptTokens:     int(acc.Usage.PromptTokens),
			CompletionTokens: int(acc.Usage.CompletionTokens),
		}
	}
	return completion, nil
}

func toMessageParams(messages []agent.ConversationMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case agent.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case agent.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content.OfString = openai.String(m.Content)
			}
			for _, call := range m.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: call.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      call.Name,
							Arguments: call.Arguments,
						},
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case agent.RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func toToolParams(tools []agent.ToolDefinition) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  openai.FunctionParameters(t.Parameters),
		}))
	}
	return out
}

// newPooledHTTPClient returns a client with pooling sized for a few
// hosts, high concurrency, and long-lived streaming responses.
func newPooledHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     20,
			IdleConnTimeout:     120 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}
