// Package state holds the per-request conversation state shared by the
// agents and orchestrators of one streaming chat turn.
package state

import (
	"strings"
	"sync"

	"github.com/nuclearops/lera/pkg/models"
)

// Store is the mutable context of a single chat request. All agents of
// the request read and write through it, so every method locks; the
// concurrent orchestration runs knowledge agents from separate
// goroutines against the same store.
type Store struct {
	mu sync.Mutex

	sessionState any
	evalMode     bool

	messages        []models.ChatMessage
	results         []models.PluginResult
	intent          models.Intent
	userInputNeeded bool
	recommendations []models.Recommendation
	usage           []models.TokenUsage
	allChunks       strings.Builder
}

// New builds a store seeded from the request transcript. Only user and
// assistant turns are carried over; system entries in the request body
// are dropped because each agent supplies its own instructions.
func New(req *models.ChatRequest, evalMode bool) *Store {
	s := &Store{
		sessionState: req.SessionState,
		evalMode:     evalMode,
	}
	for _, m := range req.Messages {
		if m.Role == models.RoleUser || m.Role == models.RoleAssistant {
			s.messages = append(s.messages, models.ChatMessage{Role: m.Role, Content: m.Content})
		}
	}
	return s
}

// SessionState returns the opaque session token from the request.
func (s *Store) SessionState() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionState
}

// EvalMode reports whether the terminal frame should carry evaluation
// fields (intent, recommendations, token usage, per-document detail).
func (s *Store) EvalMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evalMode
}

// AppendMessage records one completed turn in the conversation history.
func (s *Store) AppendMessage(role models.ChatRole, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, models.ChatMessage{Role: role, Content: content})
}

// History returns a copy of the conversation so far.
func (s *Store) History() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// LastMessage returns the most recent history entry, if any.
func (s *Store) LastMessage() (models.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return models.ChatMessage{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// RegisterResults adds search hits to the result registry, stamping the
// query that produced them. A hit whose id is already registered is
// skipped, and only the newly registered hits are returned so agents
// never see the same document twice.
func (s *Store) RegisterResults(results []models.PluginResult, query string) []models.PluginResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	var added []models.PluginResult
	for _, r := range results {
		if s.findLocked(r.Meta().ID) != nil {
			continue
		}
		r.Meta().SearchQuery = query
		s.results = append(s.results, r)
		added = append(added, r)
	}
	return added
}

// MarkCited flags the registered result with the given id as cited.
// It reports whether the id was found. The flag is never cleared.
func (s *Store) MarkCited(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.findLocked(id); r != nil {
		r.Meta().Cited = true
		return true
	}
	return false
}

// CitedIDs returns the ids of every result currently flagged as cited.
// Callers iterating results from outside the lock use this snapshot
// instead of reading the flag off shared metadata, which a concurrent
// agent may be marking at the same time.
func (s *Store) CitedIDs() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cited := make(map[string]bool)
	for _, r := range s.results {
		if r.Meta().Cited {
			cited[r.Meta().ID] = true
		}
	}
	return cited
}

// Results returns the registered hits in insertion order.
func (s *Store) Results() []models.PluginResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PluginResult, len(s.results))
	copy(out, s.results)
	return out
}

func (s *Store) findLocked(id string) models.PluginResult {
	for _, r := range s.results {
		if r.Meta().ID == id {
			return r
		}
	}
	return nil
}

// SetIntent records the classified intent of the request.
func (s *Store) SetIntent(intent models.Intent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intent = intent
}

// Intent returns the classified intent, or IntentUnset before the
// intent agent has made its call.
func (s *Store) Intent() models.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intent
}

// SetUserInputNeeded marks that the turn ended waiting on the user.
func (s *Store) SetUserInputNeeded(needed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userInputNeeded = needed
}

// UserInputNeeded reports whether the turn is waiting on the user.
func (s *Store) UserInputNeeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userInputNeeded
}

// MarkAllCited flags every registered result as cited. The single-agent
// orchestration uses this: one agent saw every collected document.
func (s *Store) MarkAllCited() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.results {
		r.Meta().Cited = true
	}
}

// SetRecommendations replaces the extracted recommendation list.
func (s *Store) SetRecommendations(recs []models.Recommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendations = recs
}

// Recommendations returns the extracted recommendations.
func (s *Store) Recommendations() []models.Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Recommendation, len(s.recommendations))
	copy(out, s.recommendations)
	return out
}

// AppendRecommendations adds extracted recommendations to the list.
func (s *Store) AppendRecommendations(recs []models.Recommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendations = append(s.recommendations, recs...)
}

// AppendChunk records streamed content in the request transcript, kept
// for debug logging at the end of the stream.
func (s *Store) AppendChunk(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allChunks.WriteString(content)
}

// AllChunks returns the concatenation of all streamed content.
func (s *Store) AllChunks() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allChunks.String()
}

// AddUsage folds one LLM call's token counts into the per-agent tally.
// Counts for the same agent accumulate into a single entry; entries
// keep the order agents first reported in.
func (s *Store) AddUsage(agentName string, promptTokens, completionTokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.usage {
		if s.usage[i].AgentName == agentName {
			s.usage[i].PromptTokens += promptTokens
			s.usage[i].CompletionTokens += completionTokens
			return
		}
	}
	s.usage = append(s.usage, models.TokenUsage{
		AgentName:        agentName,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
	})
}

// Usage returns the per-agent token tallies.
func (s *Store) Usage() []models.TokenUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.TokenUsage, len(s.usage))
	copy(out, s.usage)
	return out
}
