package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuclearops/lera/pkg/config"
	"github.com/nuclearops/lera/pkg/models"
)

type capturedRequest struct {
	path   string
	apiKey string
	body   map[string]any
}

func newSearchServer(t *testing.T, response string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path + "?" + r.URL.RawQuery
		captured.apiKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
}

func TestQueryFullText(t *testing.T) {
	var captured capturedRequest
	srv := newSearchServer(t, `{"value":[
		{"@search.score":2.5,"id":"doc-1","section":"3.2.1"},
		{"@search.score":0.4,"id":"doc-2","section":"3.2.9"}
	]}`, &captured)
	defer srv.Close()

	client := NewClient(&config.SearchConfig{Endpoint: srv.URL, APIKey: "secret"})
	cfg := &config.SearchIndexConfig{
		IndexName:    "nureg-prod",
		SearchType:   models.SearchFullText,
		Top:          5,
		SearchFields: []string{"description", "discussion"},
		SelectFields: []string{"id", "section"},
		Threshold:    1.0,
	}

	hits, err := client.Query(context.Background(), cfg, "diesel generator")
	require.NoError(t, err)

	assert.Equal(t, "/indexes('nureg-prod')/docs/search?api-version=2024-07-01", captured.path)
	assert.Equal(t, "secret", captured.apiKey)
	assert.Equal(t, "diesel generator", captured.body["search"])
	assert.Equal(t, "description,discussion", captured.body["searchFields"])
	assert.Equal(t, "id,section", captured.body["select"])
	assert.Equal(t, float64(5), captured.body["top"])
	assert.NotContains(t, captured.body, "vectorQueries")

	// doc-2 scored below the threshold.
	require.Len(t, hits, 1)
	assert.Equal(t, 2.5, hits[0].Score)
	assert.Contains(t, string(hits[0].Document), `"doc-1"`)
}

func TestQueryVector(t *testing.T) {
	var captured capturedRequest
	srv := newSearchServer(t, `{"value":[]}`, &captured)
	defer srv.Close()

	client := NewClient(&config.SearchConfig{Endpoint: srv.URL, APIKey: "secret"})
	cfg := &config.SearchIndexConfig{
		IndexName:         "manual-prod",
		SearchType:        models.SearchVector,
		KNearestNeighbors: 7,
		VectorFields:      "embedding",
	}

	hits, err := client.Query(context.Background(), cfg, "containment isolation")
	require.NoError(t, err)
	assert.Empty(t, hits)

	assert.NotContains(t, captured.body, "search")
	queries, ok := captured.body["vectorQueries"].([]any)
	require.True(t, ok)
	require.Len(t, queries, 1)
	vq := queries[0].(map[string]any)
	assert.Equal(t, "text", vq["kind"])
	assert.Equal(t, "containment isolation", vq["text"])
	assert.Equal(t, "embedding", vq["fields"])
	assert.Equal(t, float64(7), vq["k"])
	assert.Equal(t, true, vq["exhaustive"])
}

func TestQueryHybrid(t *testing.T) {
	var captured capturedRequest
	srv := newSearchServer(t, `{"value":[]}`, &captured)
	defer srv.Close()

	client := NewClient(&config.SearchConfig{Endpoint: srv.URL, APIKey: "secret"})
	cfg := &config.SearchIndexConfig{
		IndexName:         "nureg-prod",
		SearchType:        models.SearchHybrid,
		KNearestNeighbors: 3,
		SearchFields:      []string{"description"},
		VectorFields:      "embedding",
	}

	_, err := client.Query(context.Background(), cfg, "reactor trip")
	require.NoError(t, err)

	assert.Equal(t, "reactor trip", captured.body["search"])
	assert.Equal(t, "description", captured.body["searchFields"])
	require.Contains(t, captured.body, "vectorQueries")
}

func TestQueryInvalidSearchType(t *testing.T) {
	client := NewClient(&config.SearchConfig{Endpoint: "http://unused", APIKey: "k"})
	_, err := client.Query(context.Background(), &config.SearchIndexConfig{
		IndexName:  "x",
		SearchType: models.SearchType("Fuzzy"),
	}, "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid search type")
}

func TestQueryServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"index not found"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(&config.SearchConfig{Endpoint: srv.URL, APIKey: "k"})
	_, err := client.Query(context.Background(), &config.SearchIndexConfig{
		IndexName:  "missing",
		SearchType: models.SearchFullText,
	}, "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestQuerySkipsUnreadableHits(t *testing.T) {
	var captured capturedRequest
	srv := newSearchServer(t, `{"value":[
		"not an object",
		{"@search.score":3.0,"id":"doc-1"}
	]}`, &captured)
	defer srv.Close()

	client := NewClient(&config.SearchConfig{Endpoint: srv.URL, APIKey: "k"})
	hits, err := client.Query(context.Background(), &config.SearchIndexConfig{
		IndexName:  "nureg-prod",
		SearchType: models.SearchFullText,
	}, "q")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 3.0, hits[0].Score)
}
