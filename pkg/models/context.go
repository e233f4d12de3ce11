package models

import "encoding/json"

// Intent classifies what the user is asking the system to do.
type Intent string

const (
	// IntentUnset means the intent agent has not run or made no call.
	IntentUnset Intent = ""
	// IntentReportability marks a legitimate reportability question.
	IntentReportability Intent = "reportability"
	// IntentInvalid marks a request outside the system's purpose.
	IntentInvalid Intent = "invalid"
)

// ParseIntent maps a tool argument to an Intent.
func ParseIntent(s string) (Intent, bool) {
	switch Intent(s) {
	case IntentReportability:
		return IntentReportability, true
	case IntentInvalid:
		return IntentInvalid, true
	}
	return IntentUnset, false
}

// Recommendation is one extracted reportability recommendation.
// ConfidenceScore is kept as raw JSON: models emit either a number
// (0-10) or a category string (High/Medium/Low) and downstream
// consumers normalize, not this service.
type Recommendation struct {
	RegulationName  string          `json:"regulation_name"`
	ConfidenceScore json.RawMessage `json:"confidence_score"`
	Reasoning       string          `json:"reasoning"`
}

// TokenUsage records prompt/completion token counts for one agent turn.
type TokenUsage struct {
	AgentName        string `json:"agent_name,omitempty"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
}

// DocumentRef is one entry of the terminal frame's documents list.
// The eval-only fields are pointers so they disappear from the wire
// when eval mode is off.
type DocumentRef struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Section string `json:"section"`

	SearchType  *string `json:"search_type,omitempty"`
	SearchQuery *string `json:"search_query,omitempty"`
	Cited       *bool   `json:"cited,omitempty"`
}

// ContextPayload is the body of the terminal context frame. Documents
// are always present; the remaining fields appear only in eval mode.
type ContextPayload struct {
	Documents []DocumentRef `json:"documents"`

	Recommendations *[]Recommendation `json:"recommendations,omitempty"`
	Intent          *Intent           `json:"intent,omitempty"`
	UserInputNeeded *bool             `json:"user_input_needed,omitempty"`
	TokenUsage      *[]TokenUsage     `json:"token_usage,omitempty"`
}
