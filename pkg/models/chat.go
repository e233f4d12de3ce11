// Package models contains the wire protocol and business domain types.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleSystem    ChatRole = "system"
)

// Valid reports whether the role is one of the protocol roles.
func (r ChatRole) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// ChatFile is a file attached to a chat message.
type ChatFile struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// chatFileAlias accepts the camelCase spelling older clients send.
type chatFileAlias struct {
	ContentType      string `json:"content_type"`
	ContentTypeCamel string `json:"contentType"`
	Data             []byte `json:"data"`
}

// UnmarshalJSON accepts both content_type and contentType.
func (f *ChatFile) UnmarshalJSON(data []byte) error {
	var alias chatFileAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	f.ContentType = alias.ContentType
	if f.ContentType == "" {
		f.ContentType = alias.ContentTypeCamel
	}
	f.Data = alias.Data
	return nil
}

// ChatMessage is one entry of the conversation transcript.
type ChatMessage struct {
	Role    ChatRole       `json:"role"`
	Content string         `json:"content"`
	Context map[string]any `json:"context,omitempty"`
	Files   []ChatFile     `json:"files,omitempty"`
}

// ChatRequest is the body of POST /chat/stream.
type ChatRequest struct {
	Messages     []ChatMessage `json:"messages"`
	SessionState any           `json:"session_state,omitempty"`
	Context      any           `json:"context,omitempty"`
}

// chatRequestAlias accepts the camelCase spelling older clients send.
type chatRequestAlias struct {
	Messages          []ChatMessage `json:"messages"`
	SessionState      any           `json:"session_state"`
	SessionStateCamel any           `json:"sessionState"`
	Context           any           `json:"context"`
}

// UnmarshalJSON accepts both session_state and sessionState.
func (r *ChatRequest) UnmarshalJSON(data []byte) error {
	var alias chatRequestAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	r.Messages = alias.Messages
	r.SessionState = alias.SessionState
	if r.SessionState == nil {
		r.SessionState = alias.SessionStateCamel
	}
	r.Context = alias.Context
	return nil
}

// ErrEmptyMessages is returned when a request carries no messages.
var ErrEmptyMessages = errors.New("messages must not be empty")

// Validate checks the request invariants enforced at dispatch time.
func (r *ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return ErrEmptyMessages
	}
	for i, m := range r.Messages {
		if !m.Role.Valid() {
			return fmt.Errorf("messages[%d]: unknown role %q", i, m.Role)
		}
	}
	return nil
}

// MessageDelta is the incremental message part of a stream frame.
// Null fields are emitted explicitly to match the protocol.
type MessageDelta struct {
	Role    *ChatRole      `json:"role"`
	Content *string        `json:"content"`
	Context map[string]any `json:"context"`
}

// CompletionDelta is one stream frame on the wire. The terminal frame
// carries the context payload; message frames carry content only.
type CompletionDelta struct {
	Delta        MessageDelta    `json:"delta"`
	SessionState any             `json:"session_state"`
	Context      *ContextPayload `json:"context"`
}

// ChatError is a machine-readable error carried in an error frame.
type ChatError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ChatErrorResponse is the terminal error frame.
type ChatErrorResponse struct {
	Error ChatError `json:"error"`
}

// Error codes used on the wire.
const (
	ErrorCodeInvalidRequest = "invalid_request_error"
	ErrorCodeInternal       = "internal_error"
)
