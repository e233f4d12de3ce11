// Package orchestrator coordinates the agent roster for one chat turn.
// Three orchestrations exist: a single advisor agent with every search
// tool, a sequential knowledge pipeline, and a concurrent fan-in of the
// two knowledge sources.
package orchestrator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nuclearops/lera/pkg/agent"
	"github.com/nuclearops/lera/pkg/models"
	"github.com/nuclearops/lera/pkg/search"
	"github.com/nuclearops/lera/pkg/state"
	"github.com/nuclearops/lera/pkg/stream"
)

// Orchestration type names accepted on the wire and in configuration.
const (
	TypeSingle     = "single"
	TypeSequential = "sequential"
	TypeConcurrent = "concurrent"
)

// Orchestrator runs one chat turn, pushing output fragments through
// emit. A returned error terminates the stream with an error frame.
type Orchestrator interface {
	Run(ctx context.Context, emit agent.EmitFunc) error
}

// Deps is the per-request wiring every orchestration shares.
type Deps struct {
	LLM     agent.LLMClient
	Store   *state.Store
	Signer  models.URLSigner
	Plugins *search.PluginSet
}

// New picks the orchestration for the requested type. An unknown type
// is logged and falls back to the single-agent orchestration.
func New(orchestrationType string, deps Deps) Orchestrator {
	switch orchestrationType {
	case TypeSingle:
		return NewSingle(deps)
	case TypeSequential:
		return NewSequential(deps)
	case TypeConcurrent:
		return NewConcurrent(deps)
	default:
		slog.Warn("Unknown orchestration type, falling back to single",
			"type", orchestrationType)
		return NewSingle(deps)
	}
}

// relay applies fragment metadata on the way to the client: fragments
// flagged for history either accumulate into one combined entry,
// appended when the agent finishes, or append immediately when
// combining is off. Only user-visible fragments pass through to emit.
type relay struct {
	store    *state.Store
	emit     agent.EmitFunc
	combined strings.Builder
}

func (r *relay) handle(msg stream.Message) error {
	if msg.Meta.AddToChatHistory {
		if msg.Meta.CombineBeforeAddingToHistory {
			r.combined.WriteString(msg.Content)
		} else {
			r.store.AppendMessage(models.RoleAssistant, msg.Content)
		}
	}
	if msg.Meta.YieldToUser {
		return r.emit(msg)
	}
	return nil
}

// finish appends the combined history entry. Skipped entirely when the
// turn ended waiting on the user, so an unfinished relay leaves no
// partial entry behind.
func (r *relay) finish() {
	if r.combined.Len() > 0 {
		r.store.AppendMessage(models.RoleAssistant, r.combined.String())
	}
	r.combined.Reset()
}

// emitHeader pushes a section header straight to the user. Headers
// never enter the chat history.
func emitHeader(emit agent.EmitFunc, text string) error {
	return emit(stream.Message{
		Role:    models.RoleAssistant,
		Content: text,
		Meta:    stream.Metadata{Flush: true, YieldToUser: true},
	})
}

// runIntentGate streams the intent agent and reports whether the turn
// should proceed. An intent agent failure is logged and the pipeline
// continues unclassified rather than losing the whole turn.
func runIntentGate(ctx context.Context, deps Deps, emit agent.EmitFunc) (bool, error) {
	intent := agent.NewIntentAgent(deps.LLM, deps.Store)
	if _, err := intent.InvokeStream(ctx, emit); err != nil {
		if ctx.Err() != nil {
			return false, err
		}
		slog.Warn("Intent agent failed, continuing without classification", "error", err)
	}
	return deps.Store.Intent() != models.IntentInvalid, nil
}

// runExtraction runs the extraction agent and logs failures instead of
// failing the stream: by this point the user already has the full
// response, only the structured recommendations are at stake.
func runExtraction(ctx context.Context, deps Deps) {
	extraction := agent.NewExtractionAgent(deps.LLM, deps.Store)
	if err := extraction.Extract(ctx); err != nil {
		slog.Warn("Recommendation extraction failed", "error", err)
	}
}
