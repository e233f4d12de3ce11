package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nuclearops/lera/pkg/agent"
	"github.com/nuclearops/lera/pkg/config"
	"github.com/nuclearops/lera/pkg/models"
	"github.com/nuclearops/lera/pkg/state"
)

// Search tool names as the model sees them.
const (
	ToolNureg               = "search_nureg"
	ToolReportabilityManual = "search_reportability_manual"
	ToolTSNaive             = "search_ts_naive"
	ToolUFSARNaive          = "search_ufsar_naive"
)

const nuregDescription = `Search for relevant information from NUREG 1022 Section 3.2. This section provides detailed guidance on the
types of events that must be reported to the NRC. Each subsection corresponds to a specific regulatory
requirement and includes explanations, examples, and clarifications to help licensees determine whether
an event is reportable.

Parameters:
    search_query (str): The search query string. Always use the parameter name 'search_query'.
Returns:
    str: A string representation of the relevant subsection(s) of NUREG 1022. Each subsection will include the:
        Document Id: The unique identifier for the document.
        Section Name: The section title within NUREG 1022 this entry is.
        CFR 50.72: List of 10 CFR 50.72 subsections referenced.
        CFR 50.73: List of 10 CFR 50.73 subsections referenced.
        Description: Textual description of the section.
        Discussion: Detailed discussion or analysis.
        Examples: List of example objects, each with a title and description.`

const manualDescription = `Search for relevant information from Constellation's Reportability Manual. This manual provides
comprehensive guidance on the reportability of events to different Regulatory agencies, including the NRC.
Each section corresponds to a specific regulatory requirement and includes explanations,
examples, and clarifications to help licensees determine whether an event is reportable.

Parameters:
    search_query (str): The search query string. Always use the parameter name 'search_query'.
Returns:
    str: A string representation of the relevant subsection(s) of Reportability Manual.
    Each section will include the:
        Document Id: The unique identifier for the document.
        Section Name: The title of the section within the reportability
            manual this entry is.
        References: List of regulatory subsections referenced.
        Reference Content: actual content from references.
        Discussion: Detailed discussion or analysis.
        Required Notifications: List of required notifications, each
            notification identifies the time limit and a
            description of the notification requirement.
        Required Reports: List of required reports, each report
            identifies the time limit and a description of the
            report requirement.`

const naiveDescription = `Search for relevant information in a naive way, which is everything ingested as it is. This index covers
all the manuals or documents related to constellation or nuclear, that we want to focus on and ingest.

Parameters:
    search_query (str): The search query string. Always use the parameter name 'search_query'.
Returns:
    str: A string representation of the content of the chunk.`

var searchParameters = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"search_query": map[string]any{
			"type":        "string",
			"description": "The search query string. Always use the parameter name 'search_query'.",
		},
	},
	"required": []string{"search_query"},
}

// PluginSet binds the search tools to one request store. Hits register
// in the store as they arrive; a tool only ever returns documents the
// store has not seen, so agents never review the same document twice.
type PluginSet struct {
	client   *Client
	registry *config.SearchIndexRegistry
	store    *state.Store
}

// NewPluginSet builds the tool set for one request.
func NewPluginSet(client *Client, registry *config.SearchIndexRegistry, store *state.Store) *PluginSet {
	return &PluginSet{client: client, registry: registry, store: store}
}

// NuregTool searches the NUREG 1022 Section 3.2 index.
func (p *PluginSet) NuregTool() agent.ToolDefinition {
	return p.tool(ToolNureg, nuregDescription, config.IndexNureg, decodeInto[models.NuregSection])
}

// ReportabilityManualTool searches the reportability manual index.
func (p *PluginSet) ReportabilityManualTool() agent.ToolDefinition {
	return p.tool(ToolReportabilityManual, manualDescription, config.IndexReportabilityManual, decodeInto[models.ReportabilityManual])
}

// TSNaiveTool searches the technical specifications naive index.
func (p *PluginSet) TSNaiveTool() agent.ToolDefinition {
	return p.tool(ToolTSNaive, naiveDescription, config.IndexTSNaive, decodeInto[models.NaiveChunk])
}

// UFSARNaiveTool searches the UFSAR naive index.
func (p *PluginSet) UFSARNaiveTool() agent.ToolDefinition {
	return p.tool(ToolUFSARNaive, naiveDescription, config.IndexUFSARNaive, decodeInto[models.NaiveChunk])
}

// AllTools returns every search tool, for the single-agent advisor.
func (p *PluginSet) AllTools() []agent.ToolDefinition {
	return []agent.ToolDefinition{
		p.NuregTool(),
		p.ReportabilityManualTool(),
		p.TSNaiveTool(),
		p.UFSARNaiveTool(),
	}
}

func (p *PluginSet) tool(name, description, logicalIndex string, decode func(json.RawMessage) (models.PluginResult, error)) agent.ToolDefinition {
	return agent.ToolDefinition{
		Name:        name,
		Description: description,
		Parameters:  searchParameters,
		Handler: func(ctx context.Context, arguments string) (string, error) {
			var args struct {
				SearchQuery string `json:"search_query"`
			}
			if err := json.Unmarshal([]byte(arguments), &args); err != nil {
				return "", fmt.Errorf("parsing %s arguments: %w", name, err)
			}
			if strings.TrimSpace(args.SearchQuery) == "" {
				return "", errors.New("parameter 'search_query' is required")
			}

			cfg, err := p.registry.Get(logicalIndex)
			if err != nil {
				return "", errors.New("undefined search configuration")
			}

			hits, err := p.client.Query(ctx, cfg, args.SearchQuery)
			if err != nil {
				return "", err
			}

			results := make([]models.PluginResult, 0, len(hits))
			for _, hit := range hits {
				result, err := decode(hit.Document)
				if err != nil {
					slog.Warn("Skipping undecodable search hit",
						"index", logicalIndex,
						"error", err)
					continue
				}
				results = append(results, result)
			}

			added := p.store.RegisterResults(results, args.SearchQuery)
			parts := make([]string, 0, len(added))
			for _, r := range added {
				parts = append(parts, r.AgentString())
			}
			return strings.Join(parts, "\n\n"), nil
		},
	}
}

// decodeInto decodes a raw hit into a concrete result variant.
func decodeInto[T any, PT interface {
	*T
	models.PluginResult
}](raw json.RawMessage) (models.PluginResult, error) {
	doc := PT(new(T))
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
