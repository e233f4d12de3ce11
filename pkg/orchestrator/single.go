package orchestrator

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/nuclearops/lera/pkg/agent"
	"github.com/nuclearops/lera/pkg/models"
	"github.com/nuclearops/lera/pkg/stream"
)

// Single runs one advisor agent holding every search tool. There is no
// intent gate and no citation pass; the advisor searches, reviews, and
// recommends in a single loop.
type Single struct {
	deps Deps
}

// NewSingle builds the single-agent orchestration.
func NewSingle(deps Deps) *Single {
	return &Single{deps: deps}
}

// Run streams the advisor to the user. A failing advisor fails the
// whole turn: there is no other agent to fall back to.
func (o *Single) Run(ctx context.Context, emit agent.EmitFunc) error {
	ctx, span := otel.Tracer("lera/orchestrator").Start(ctx, "SingleAgentOrchestrator")
	defer span.End()

	advisor := agent.NewSingleNRCAgent(o.deps.LLM, o.deps.Store, o.deps.Plugins.AllTools()...)

	var message strings.Builder
	_, err := advisor.InvokeStream(ctx, func(msg stream.Message) error {
		message.WriteString(msg.Content)
		return emit(msg)
	})
	if err != nil {
		return err
	}

	if o.deps.Store.EvalMode() {
		o.deps.Store.AppendMessage(models.RoleAssistant, message.String())
		runExtraction(ctx, o.deps)
	}

	// One agent saw every document the searches returned, so every
	// registered result counts as reviewed.
	o.deps.Store.MarkAllCited()
	return nil
}
