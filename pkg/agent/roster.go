package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nuclearops/lera/pkg/models"
	"github.com/nuclearops/lera/pkg/prompts"
	"github.com/nuclearops/lera/pkg/state"
	"github.com/nuclearops/lera/pkg/stream"
)

// NewIntentAgent builds the gatekeeper agent. Its only tool writes the
// classified intent into the request store; the orchestrations read it
// back to decide whether the knowledge pipeline runs at all.
func NewIntentAgent(llm LLMClient, store *state.Store) *Agent {
	return New("Intent Detection Agent", "IntentDetectionAgent", prompts.Intent,
		llm, store, setIntentTool(store))
}

// NewRecommendationAgent builds the agent producing the user-visible
// recommendation prose from the documents the knowledge agents cited.
func NewRecommendationAgent(llm LLMClient, store *state.Store) *Agent {
	return New("Recommendation Agent", "RecommendationAgent", prompts.Recommendation,
		llm, store)
}

// NewSingleNRCAgent builds the single-agent advisor with every search
// tool bound: it searches, reviews, and recommends in one loop.
func NewSingleNRCAgent(llm LLMClient, store *state.Store, tools ...ToolDefinition) *Agent {
	return New("NRC Recommendation Agent", "NRCRecommendationAgent", prompts.SingleNRC,
		llm, store, tools...)
}

func setIntentTool(store *state.Store) ToolDefinition {
	return ToolDefinition{
		Name: "set_intent",
		Description: "Logs the intent that was detected from the users message. " +
			"This is useful for tracking the user's intent during the reportability assessment. " +
			"The intent can be 'reportability' or 'invalid'.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"intent": map[string]any{
					"type":        "string",
					"enum":        []string{"reportability", "invalid"},
					"description": "The intent detected from the user's message.",
				},
			},
			"required": []string{"intent"},
		},
		Handler: func(ctx context.Context, arguments string) (string, error) {
			var args struct {
				Intent string `json:"intent"`
			}
			if err := json.Unmarshal([]byte(arguments), &args); err != nil {
				return "", fmt.Errorf("parsing set_intent arguments: %w", err)
			}
			intent, ok := models.ParseIntent(args.Intent)
			if !ok {
				return "", fmt.Errorf("unknown intent %q", args.Intent)
			}
			store.SetIntent(intent)
			return "Intent set to " + args.Intent + ".", nil
		},
	}
}

// KnowledgeAgent reviews one document source. It runs the kernel
// non-streamed, parses the returned JSON array of cited document ids,
// then emits the review and citation fragments for its source: the
// citation lines go to the user only, the dense document renderings go
// to history only so the recommendation agent sees the full content.
type KnowledgeAgent struct {
	*Agent

	kind   models.ResultKind
	signer models.URLSigner
}

// NewNuregKnowledgeAgent builds the NUREG 1022 reviewer.
func NewNuregKnowledgeAgent(llm LLMClient, store *state.Store, signer models.URLSigner, searchTool ToolDefinition) *KnowledgeAgent {
	return &KnowledgeAgent{
		Agent: New("NUREG 1022 Knowledge Agent", "NuregKnowledgeAgent",
			prompts.Nureg+" "+prompts.KnowledgeShared, llm, store, searchTool),
		kind:   models.KindNuregSection,
		signer: signer,
	}
}

// NewReportabilityManualKnowledgeAgent builds the manual reviewer.
func NewReportabilityManualKnowledgeAgent(llm LLMClient, store *state.Store, signer models.URLSigner, searchTool ToolDefinition) *KnowledgeAgent {
	return &KnowledgeAgent{
		Agent: New("Reportability Manual Knowledge Agent", "ReportabilityManualKnowledgeAgent",
			prompts.ReportabilityManual+" "+prompts.KnowledgeShared, llm, store, searchTool),
		kind:   models.KindReportabilityManual,
		signer: signer,
	}
}

// Stream runs the review and emits its fragments. A response that is
// not a JSON string array is logged and treated as citing nothing; an
// id the store does not know is logged and skipped.
func (k *KnowledgeAgent) Stream(ctx context.Context, emit EmitFunc) error {
	content, err := k.Invoke(ctx)
	if err != nil {
		return err
	}

	var cited []string
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &cited); err != nil {
		slog.Warn("Knowledge agent returned a non-array response",
			"agent", k.TraceName,
			"response", content)
	}
	for _, id := range cited {
		if !k.store.MarkCited(id) {
			slog.Warn("Knowledge agent cited an unknown document",
				"agent", k.TraceName,
				"id", id)
		}
	}

	type reviewed struct {
		result models.PluginResult
		url    string
	}
	var docs []reviewed
	for _, r := range k.store.Results() {
		if r.Kind() != k.kind {
			continue
		}
		url, err := r.Meta().ResolveURL(k.signer)
		if err != nil {
			slog.Warn("Signing document URL failed",
				"agent", k.TraceName,
				"id", r.Meta().ID,
				"error", err)
			continue
		}
		docs = append(docs, reviewed{result: r, url: url})
	}

	// The cited flag lives on metadata shared with the peer knowledge
	// agent during concurrent orchestration, so take the snapshot under
	// the store lock rather than reading the flag per document.
	citedIDs := k.store.CitedIDs()

	citationMeta := stream.Metadata{Flush: true, YieldToUser: true}
	for _, d := range docs {
		msg := stream.Message{
			Role:    models.RoleAssistant,
			Content: fmt.Sprintf("\nReviewed [%s](%s). \n", d.result.DisplayValue(), d.url),
			Meta:    citationMeta,
		}
		if err := emit(msg); err != nil {
			return err
		}
	}
	for _, d := range docs {
		if !citedIDs[d.result.Meta().ID] {
			continue
		}
		line := stream.Message{
			Role:    models.RoleAssistant,
			Content: fmt.Sprintf("\nCiting [%s](%s) . \n", d.result.DisplayValue(), d.url),
			Meta:    citationMeta,
		}
		if err := emit(line); err != nil {
			return err
		}
		body := stream.Message{
			Role:    models.RoleAssistant,
			Content: d.result.AgentString(),
			Meta:    stream.Metadata{AddToChatHistory: true},
		}
		if err := emit(body); err != nil {
			return err
		}
	}
	return nil
}

// ExtractionAgent turns the final recommendation prose into structured
// recommendations on the store. It only ever sees the last history
// entry, not the whole conversation.
type ExtractionAgent struct {
	*Agent
}

// NewExtractionAgent builds the extraction agent.
func NewExtractionAgent(llm LLMClient, store *state.Store) *ExtractionAgent {
	return &ExtractionAgent{
		Agent: New("Recommendation Extraction Agent", "RecommendationExtractionAgent",
			prompts.Extraction, llm, store),
	}
}

// Extract parses recommendations out of the last history entry and
// appends them to the store. A malformed model response is logged and
// dropped; the terminal frame then simply carries fewer
// recommendations.
func (e *ExtractionAgent) Extract(ctx context.Context) error {
	last, ok := e.store.LastMessage()
	if !ok || last.Content == "" {
		return nil
	}

	content, err := e.InvokeOn(ctx, []models.ChatMessage{
		{Role: models.RoleUser, Content: last.Content},
	})
	if err != nil {
		return err
	}

	var recs []models.Recommendation
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &recs); err != nil {
		slog.Warn("Extraction agent returned malformed recommendations",
			"agent", e.TraceName,
			"error", err)
		return nil
	}
	e.store.AppendRecommendations(recs)
	return nil
}

// stripCodeFence unwraps a response the model wrapped in a markdown
// code fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
