package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nuclearops/lera/pkg/version"
)

// handleHealth serves GET /health.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": version.AppName,
		"version": version.Full(),
		"indexes": s.cfg.IndexRegistry.Names(),
	})
}
