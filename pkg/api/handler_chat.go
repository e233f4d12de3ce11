package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nuclearops/lera/pkg/models"
	"github.com/nuclearops/lera/pkg/orchestrator"
	"github.com/nuclearops/lera/pkg/search"
	"github.com/nuclearops/lera/pkg/state"
	"github.com/nuclearops/lera/pkg/stream"
)

// handleChatStream serves POST /chat/stream. Validation failures are
// answered before any agent runs, as a single error frame with the
// matching status. Once streaming starts the status is already 200 and
// failures surface as the terminal error frame instead.
func (s *Server) handleChatStream(c *gin.Context) {
	if !strings.HasPrefix(c.GetHeader("Content-Type"), "application/json") {
		writeErrorFrame(c, http.StatusBadRequest, models.ErrorCodeInvalidRequest,
			"Unsupported Media Type: Only 'application/json' is supported.")
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		writeErrorFrame(c, http.StatusBadRequest, models.ErrorCodeInvalidRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeErrorFrame(c, http.StatusBadRequest, models.ErrorCodeInvalidRequest, err.Error())
		return
	}

	orchestrationType := c.Query("orchestrationType")
	if orchestrationType == "" {
		orchestrationType = s.cfg.Stream.DefaultOrchestration
	}
	evalMode := strings.EqualFold(c.Query("evaluation"), "true")

	store := state.New(&req, evalMode)
	plugins := search.NewPluginSet(s.search, s.cfg.IndexRegistry, store)
	orch := orchestrator.New(orchestrationType, orchestrator.Deps{
		LLM:     s.llm,
		Store:   store,
		Signer:  s.signer,
		Plugins: plugins,
	})

	slog.Info("Streaming chat request",
		"orchestration", orchestrationType,
		"eval", evalMode,
		"messages", len(req.Messages))

	// The framer can return before the producer drains, on a frame write
	// error for instance. Cancelling on the way out unblocks a producer
	// waiting on the full fragment channel.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	fragments := make(chan stream.Message, 64)
	result := make(chan error, 1)
	go func() {
		defer close(fragments)
		result <- orch.Run(ctx, func(msg stream.Message) error {
			select {
			case fragments <- msg:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Status(http.StatusOK)

	framer := stream.NewFramer(s.cfg.Stream.BufferSize, store, s.signer)
	if err := framer.Stream(ctx, c.Writer, fragments, result); err != nil {
		slog.Error("Chat stream terminated with error", "error", err)
	}
}

// writeErrorFrame answers a request with one error frame before any
// streaming has happened.
func writeErrorFrame(c *gin.Context, status int, code, message string) {
	c.Header("Content-Type", "text/event-stream")
	c.Status(status)
	data, err := json.Marshal(models.ChatErrorResponse{
		Error: models.ChatError{Code: code, Message: message},
	})
	if err != nil {
		return
	}
	if _, err := c.Writer.Write(append(data, '\r', '\n')); err != nil {
		slog.Warn("Writing error frame failed", "error", err)
		return
	}
	c.Writer.Flush()
}
