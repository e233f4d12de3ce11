package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// handleSearchQuery serves POST /search/query/:index, a debug route
// for exercising one logical index directly without running agents.
func (s *Server) handleSearchQuery(c *gin.Context) {
	logical := c.Param("index")
	indexCfg, err := s.cfg.IndexRegistry.Get(logical)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var body struct {
		SearchQuery string `json:"search_query"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(body.SearchQuery) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parameter 'search_query' is required"})
		return
	}

	hits, err := s.search.Query(c.Request.Context(), indexCfg, body.SearchQuery)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"index":   logical,
		"count":   len(hits),
		"results": hits,
	})
}
