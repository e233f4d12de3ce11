package orchestrator

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/nuclearops/lera/pkg/agent"
	"github.com/nuclearops/lera/pkg/stream"
)

// Concurrent runs both knowledge agents at the same time and merges
// their fragments first-ready-wins, keeping per-source order. A source
// that fails is logged and dropped while the other keeps reviewing.
type Concurrent struct {
	deps Deps
}

// NewConcurrent builds the concurrent orchestration.
func NewConcurrent(deps Deps) *Concurrent {
	return &Concurrent{deps: deps}
}

// Run drives the turn: intent gate, combined header, knowledge fan-in,
// recommendation, extraction.
func (o *Concurrent) Run(ctx context.Context, emit agent.EmitFunc) error {
	ctx, span := otel.Tracer("lera/orchestrator").Start(ctx, "ConcurrentAgentOrchestrator")
	defer span.End()

	proceed, err := runIntentGate(ctx, o.deps, emit)
	if err != nil || !proceed {
		return err
	}

	manual := agent.NewReportabilityManualKnowledgeAgent(
		o.deps.LLM, o.deps.Store, o.deps.Signer, o.deps.Plugins.ReportabilityManualTool())
	nureg := agent.NewNuregKnowledgeAgent(
		o.deps.LLM, o.deps.Store, o.deps.Signer, o.deps.Plugins.NuregTool())

	header := "## Engaging " + manual.DisplayName + " " + nureg.DisplayName + "\n\n"
	if err := emitHeader(emit, header); err != nil {
		return err
	}

	r := &relay{store: o.deps.Store, emit: emit}
	if err := o.fanIn(ctx, r, manual, nureg); err != nil {
		return err
	}

	if o.deps.Store.UserInputNeeded() {
		return nil
	}
	r.finish()

	recommendation := agent.NewRecommendationAgent(o.deps.LLM, o.deps.Store)
	rr := &relay{store: o.deps.Store, emit: emit}
	if _, err := recommendation.InvokeStream(ctx, rr.handle); err != nil {
		if ctx.Err() != nil {
			return err
		}
		slog.Warn("Agent failed, skipping to extraction",
			"agent", recommendation.DisplayName,
			"error", err)
	} else {
		if o.deps.Store.UserInputNeeded() {
			return nil
		}
		rr.finish()
	}

	runExtraction(ctx, o.deps)
	return nil
}

// fanIn streams both knowledge agents into per-source channels and
// merges them. The returned error is a relay failure (the client went
// away); source failures never propagate.
func (o *Concurrent) fanIn(ctx context.Context, r *relay, manual, nureg *agent.KnowledgeAgent) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	manualCh := make(chan stream.Message, 16)
	nuregCh := make(chan stream.Message, 16)

	g := new(errgroup.Group)
	g.Go(runSource(ctx, manual, manualCh))
	g.Go(runSource(ctx, nureg, nuregCh))

	var relayErr error
	mc, nc := manualCh, nuregCh
	for mc != nil || nc != nil {
		var msg stream.Message
		var ok bool
		select {
		case msg, ok = <-mc:
			if !ok {
				mc = nil
				continue
			}
		case msg, ok = <-nc:
			if !ok {
				nc = nil
				continue
			}
		}
		if relayErr != nil {
			continue
		}
		if relayErr = r.handle(msg); relayErr != nil {
			cancel()
		}
	}
	_ = g.Wait()
	return relayErr
}

// runSource streams one knowledge agent into its channel, closing it
// when the agent finishes. A source failure is logged and swallowed so
// the merge only ever sees a closed channel.
func runSource(ctx context.Context, source *agent.KnowledgeAgent, ch chan<- stream.Message) func() error {
	return func() error {
		defer close(ch)
		err := source.Stream(ctx, func(msg stream.Message) error {
			select {
			case ch <- msg:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && ctx.Err() == nil {
			slog.Warn("Knowledge source failed",
				"agent", source.DisplayName,
				"error", err)
		}
		return nil
	}
}
