package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuclearops/lera/pkg/config"
	"github.com/nuclearops/lera/pkg/models"
	"github.com/nuclearops/lera/pkg/state"
)

func newPluginSet(t *testing.T, response string) (*PluginSet, *state.Store, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(&config.SearchConfig{Endpoint: srv.URL, APIKey: "k"})
	registry := config.NewSearchIndexRegistry(map[string]*config.SearchIndexConfig{
		config.IndexNureg: {
			IndexName:  "nureg-prod",
			SearchType: models.SearchFullText,
		},
	})
	store := state.New(&models.ChatRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "event details"}},
	}, false)
	return NewPluginSet(client, registry, store), store, srv
}

func TestSearchToolRequiresQuery(t *testing.T) {
	p, _, _ := newPluginSet(t, `{"value":[]}`)
	tool := p.NuregTool()

	_, err := tool.Handler(context.Background(), `{"search_query":"  "}`)
	require.Error(t, err)
	assert.Equal(t, "parameter 'search_query' is required", err.Error())

	_, err = tool.Handler(context.Background(), `{}`)
	require.Error(t, err)
	assert.Equal(t, "parameter 'search_query' is required", err.Error())
}

func TestSearchToolUnknownIndex(t *testing.T) {
	p, _, _ := newPluginSet(t, `{"value":[]}`)
	// The registry above only holds the nureg index.
	tool := p.ReportabilityManualTool()

	_, err := tool.Handler(context.Background(), `{"search_query":"spill"}`)
	require.Error(t, err)
	assert.Equal(t, "undefined search configuration", err.Error())
}

func TestSearchToolRegistersAndRendersHits(t *testing.T) {
	p, store, _ := newPluginSet(t, `{"value":[
		{"@search.score":2.0,"id":"doc-1","section":"3.2.1","description":"d1","discussion":"x"},
		{"@search.score":1.5,"id":"doc-2","section":"3.2.4","description":"d2","discussion":"y"}
	]}`)
	tool := p.NuregTool()

	out, err := tool.Handler(context.Background(), `{"search_query":"diesel generator"}`)
	require.NoError(t, err)

	assert.Contains(t, out, "Document Id: doc-1")
	assert.Contains(t, out, "Document Id: doc-2")
	assert.Contains(t, out, "\n\n", "entries join with a blank line")

	results := store.Results()
	require.Len(t, results, 2)
	assert.Equal(t, models.KindNuregSection, results[0].Kind())
	assert.Equal(t, "diesel generator", results[0].Meta().SearchQuery)
}

func TestSearchToolDeduplicatesAcrossCalls(t *testing.T) {
	p, store, _ := newPluginSet(t, `{"value":[
		{"@search.score":2.0,"id":"doc-1","section":"3.2.1"}
	]}`)
	tool := p.NuregTool()

	first, err := tool.Handler(context.Background(), `{"search_query":"first"}`)
	require.NoError(t, err)
	assert.Contains(t, first, "doc-1")

	// The same document comes back on the second query, but the agent
	// already has it.
	second, err := tool.Handler(context.Background(), `{"search_query":"second"}`)
	require.NoError(t, err)
	assert.Empty(t, second)

	assert.Len(t, store.Results(), 1)
}

func TestSearchToolBadArguments(t *testing.T) {
	p, _, _ := newPluginSet(t, `{"value":[]}`)
	tool := p.NuregTool()

	_, err := tool.Handler(context.Background(), `not json`)
	require.Error(t, err)
}

func TestAllToolsNames(t *testing.T) {
	p, _, _ := newPluginSet(t, `{"value":[]}`)
	tools := p.AllTools()
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{
		ToolNureg,
		ToolReportabilityManual,
		ToolTSNaive,
		ToolUFSARNaive,
	}, names)
}
