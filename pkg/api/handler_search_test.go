package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuclearops/lera/pkg/config"
	"github.com/nuclearops/lera/pkg/models"
	"github.com/nuclearops/lera/pkg/search"
)

func newSearchTestHandler(t *testing.T) http.Handler {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":[
			{"@search.score":2.0,"id":"doc-1","section":"3.2.1"}
		]}`))
	}))
	t.Cleanup(backend.Close)

	cfg := &config.Config{
		Server: &config.ServerConfig{Addr: ":0"},
		Stream: &config.StreamConfig{BufferSize: 5, DefaultOrchestration: "single"},
		IndexRegistry: config.NewSearchIndexRegistry(map[string]*config.SearchIndexConfig{
			config.IndexNureg: {IndexName: "nureg-prod", SearchType: models.SearchFullText},
		}),
	}
	searchClient := search.NewClient(&config.SearchConfig{Endpoint: backend.URL, APIKey: "k"})
	return NewServer(cfg, newScriptLLM(advisorOnly), searchClient, staticSigner{}).Handler()
}

func postSearch(handler http.Handler, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestSearchQueryUnknownIndex(t *testing.T) {
	handler := newSearchTestHandler(t)
	w := postSearch(handler, "/search/query/no_such_index", `{"search_query":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchQueryMissingQuery(t *testing.T) {
	handler := newSearchTestHandler(t)
	w := postSearch(handler, "/search/query/nureg", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "parameter 'search_query' is required")
}

func TestSearchQueryReturnsHits(t *testing.T) {
	handler := newSearchTestHandler(t)
	w := postSearch(handler, "/search/query/nureg", `{"search_query":"diesel"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Index   string       `json:"index"`
		Count   int          `json:"count"`
		Results []search.Hit `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "nureg", body.Index)
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Results, 1)
	assert.Equal(t, 2.0, body.Results[0].Score)
}

func TestHealth(t *testing.T) {
	handler := newSearchTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status  string   `json:"status"`
		Service string   `json:"service"`
		Indexes []string `json:"indexes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "lera", body.Service)
	assert.Equal(t, []string{"nureg"}, body.Indexes)
}
