// Package stream turns agent output fragments into the line-delimited
// frame protocol served to chat clients.
package stream

import "github.com/nuclearops/lera/pkg/models"

// Metadata controls how a single fragment is routed. Flush and the
// buffer size drive frame boundaries here; the history fields are
// honored by the orchestrators before fragments ever reach the framer.
type Metadata struct {
	Flush                        bool
	YieldToUser                  bool
	AddToChatHistory             bool
	CombineBeforeAddingToHistory bool
}

// DefaultMetadata returns the routing defaults for plain agent output:
// buffered, shown to the user, recorded in history, combined into one
// history entry per agent turn.
func DefaultMetadata() Metadata {
	return Metadata{
		YieldToUser:                  true,
		AddToChatHistory:             true,
		CombineBeforeAddingToHistory: true,
	}
}

// Message is one output fragment flowing from an agent toward the
// client stream.
type Message struct {
	Role    models.ChatRole
	Content string
	Meta    Metadata
}

// Text builds a fragment with default routing.
func Text(content string) Message {
	return Message{Role: models.RoleAssistant, Content: content, Meta: DefaultMetadata()}
}
