// Package search queries Azure AI Search indexes and exposes them to
// agents as function-calling tools.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/nuclearops/lera/pkg/config"
	"github.com/nuclearops/lera/pkg/models"
)

const apiVersion = "2024-07-01"

// Circuit breaker settings for the search service.
const (
	breakerMaxFailures uint32 = 5
	breakerTimeout            = 30 * time.Second
	breakerInterval           = 60 * time.Second
)

// Hit is one index document that passed the relevance threshold.
type Hit struct {
	Score    float64         `json:"score"`
	Document json.RawMessage `json:"document"`
}

// Client executes queries against the Azure AI Search REST API. One
// Client is shared across requests; the transport pools connections to
// the single search service host.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[[]Hit]
}

// NewClient builds a search client from service settings.
func NewClient(cfg *config.SearchConfig) *Client {
	breaker := gobreaker.NewCircuitBreaker[[]Hit](gobreaker.Settings{
		Name:        "search",
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
	})

	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     120 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
		breaker: breaker,
	}
}

// searchRequest is the REST query body. Field lists are comma joined,
// matching the REST API's string form.
type searchRequest struct {
	Search        string        `json:"search,omitempty"`
	SearchFields  string        `json:"searchFields,omitempty"`
	Select        string        `json:"select,omitempty"`
	Top           int           `json:"top,omitempty"`
	VectorQueries []vectorQuery `json:"vectorQueries,omitempty"`
}

// vectorQuery asks the service to vectorize the query text itself, so
// no embedding round trip happens on this side.
type vectorQuery struct {
	Kind       string `json:"kind"`
	Text       string `json:"text"`
	Fields     string `json:"fields"`
	K          int    `json:"k"`
	Exhaustive bool   `json:"exhaustive"`
}

type searchResponse struct {
	Value []json.RawMessage `json:"value"`
}

// Query runs one search per the index configuration and returns the
// hits scoring at or above the configured threshold.
func (c *Client) Query(ctx context.Context, cfg *config.SearchIndexConfig, query string) ([]Hit, error) {
	return c.breaker.Execute(func() ([]Hit, error) {
		return c.query(ctx, cfg, query)
	})
}

func (c *Client) query(ctx context.Context, cfg *config.SearchIndexConfig, query string) ([]Hit, error) {
	body, err := buildRequest(cfg, query)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/indexes('%s')/docs/search?api-version=%s", c.endpoint, cfg.IndexName, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying index %q: %w", cfg.IndexName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("index %q returned status %d: %s", cfg.IndexName, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding search response from %q: %w", cfg.IndexName, err)
	}

	var hits []Hit
	for _, raw := range decoded.Value {
		var scored struct {
			Score float64 `json:"@search.score"`
		}
		if err := json.Unmarshal(raw, &scored); err != nil {
			slog.Warn("Skipping unreadable search hit", "index", cfg.IndexName, "error", err)
			continue
		}
		if scored.Score < cfg.Threshold {
			continue
		}
		hits = append(hits, Hit{Score: scored.Score, Document: raw})
	}
	slog.Debug("Search executed",
		"index", cfg.IndexName,
		"query", query,
		"returned", len(decoded.Value),
		"kept", len(hits))
	return hits, nil
}

func buildRequest(cfg *config.SearchIndexConfig, query string) (*searchRequest, error) {
	req := &searchRequest{
		Select: strings.Join(cfg.SelectFields, ","),
		Top:    cfg.Top,
	}
	switch cfg.SearchType {
	case models.SearchFullText:
		req.Search = query
		req.SearchFields = strings.Join(cfg.SearchFields, ",")
	case models.SearchVector, models.SearchHybrid:
		if cfg.SearchType == models.SearchHybrid {
			req.Search = query
			req.SearchFields = strings.Join(cfg.SearchFields, ",")
		}
		req.VectorQueries = []vectorQuery{{
			Kind:       "text",
			Text:       query,
			Fields:     cfg.VectorFields,
			K:          cfg.KNearestNeighbors,
			Exhaustive: true,
		}}
	default:
		return nil, errors.New("invalid search type")
	}
	return req, nil
}
