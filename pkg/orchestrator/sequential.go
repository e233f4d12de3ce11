package orchestrator

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/nuclearops/lera/pkg/agent"
)

// Sequential runs the knowledge pipeline one agent at a time: the
// reportability manual reviewer, the NUREG reviewer, then the
// recommendation agent, each introduced with its own section header.
type Sequential struct {
	deps Deps
}

// NewSequential builds the sequential orchestration.
func NewSequential(deps Deps) *Sequential {
	return &Sequential{deps: deps}
}

// stage is one pipeline step: a display name for the header and the
// agent's streaming entry point.
type stage struct {
	display string
	run     func(context.Context, agent.EmitFunc) error
}

// Run drives the pipeline. A failing agent is logged and skipped so
// the remaining agents still get their turn; a turn that ends waiting
// on the user stops the pipeline before the next header.
func (o *Sequential) Run(ctx context.Context, emit agent.EmitFunc) error {
	ctx, span := otel.Tracer("lera/orchestrator").Start(ctx, "SequentialAgentOrchestrator")
	defer span.End()

	proceed, err := runIntentGate(ctx, o.deps, emit)
	if err != nil || !proceed {
		return err
	}

	manual := agent.NewReportabilityManualKnowledgeAgent(
		o.deps.LLM, o.deps.Store, o.deps.Signer, o.deps.Plugins.ReportabilityManualTool())
	nureg := agent.NewNuregKnowledgeAgent(
		o.deps.LLM, o.deps.Store, o.deps.Signer, o.deps.Plugins.NuregTool())
	recommendation := agent.NewRecommendationAgent(o.deps.LLM, o.deps.Store)

	stages := []stage{
		{manual.DisplayName, manual.Stream},
		{nureg.DisplayName, nureg.Stream},
		{recommendation.DisplayName, func(ctx context.Context, emit agent.EmitFunc) error {
			_, err := recommendation.InvokeStream(ctx, emit)
			return err
		}},
	}

	for _, st := range stages {
		if err := emitHeader(emit, "## Engaging "+st.display+"\n\n"); err != nil {
			return err
		}

		r := &relay{store: o.deps.Store, emit: emit}
		if err := st.run(ctx, r.handle); err != nil {
			if ctx.Err() != nil {
				return err
			}
			slog.Warn("Agent failed, skipping to next",
				"agent", st.display,
				"error", err)
			continue
		}

		if o.deps.Store.UserInputNeeded() {
			return nil
		}
		r.finish()
	}

	runExtraction(ctx, o.deps)
	return nil
}
