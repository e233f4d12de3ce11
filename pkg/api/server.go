// Package api serves the HTTP surface: the streaming chat endpoint,
// health, and the search debug route.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nuclearops/lera/pkg/agent"
	"github.com/nuclearops/lera/pkg/config"
	"github.com/nuclearops/lera/pkg/models"
	"github.com/nuclearops/lera/pkg/search"
)

// Server holds the shared wiring handlers run against. Everything here
// is request-independent; per-request state lives in pkg/state.
type Server struct {
	cfg    *config.Config
	llm    agent.LLMClient
	search *search.Client
	signer models.URLSigner
}

// NewServer creates the API server.
func NewServer(cfg *config.Config, llm agent.LLMClient, searchClient *search.Client, signer models.URLSigner) *Server {
	return &Server{
		cfg:    cfg,
		llm:    llm,
		search: searchClient,
		signer: signer,
	}
}

// Handler builds the router with all routes and middleware attached.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/health", s.handleHealth)
	router.POST("/chat/stream", s.handleChatStream)
	router.POST("/search/query/:index", s.handleSearchQuery)

	return router
}
