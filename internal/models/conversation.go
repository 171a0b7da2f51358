// internal/models/conversation.go
package models

import (
	"time"
)

// Phase represents the stage of a marketing conversation
type Phase string

const (
	PhaseCollectingContext  Phase = "collecting_context"
	PhaseGatheringInsights  Phase = "gathering_insights"
	PhaseGeneratingCampaign Phase = "generating_campaign"
	PhaseDone               Phase = "done"
)

// phaseOrder defines the forward progression of conversation phases
var phaseOrder = map[Phase]int{
	PhaseCollectingContext:  0,
	PhaseGatheringInsights:  1,
	PhaseGeneratingCampaign: 2,
	PhaseDone:               3,
}

// Valid reports whether p is a known phase
func (p Phase) Valid() bool {
	_, ok := phaseOrder[p]
	return ok
}

// CanTransition reports whether a record may move from p to next.
// Phases only move forward; the single backward edge is an explicit
// reset to the initial phase.
func (p Phase) CanTransition(next Phase) bool {
	if !p.Valid() || !next.Valid() {
		return false
	}
	if next == PhaseCollectingContext {
		return true // reset is allowed from any phase
	}
	return phaseOrder[next] >= phaseOrder[p]
}

// ChatTurn is a single exchange in the conversation history
type ChatTurn struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationRecord is the per-user conversation state.
// One record exists per user identifier; it lives in memory only and is
// discarded on reset or process restart.
type ConversationRecord struct {
	UserID  string         `json:"user_id"`
	Phase   Phase          `json:"phase"`
	Context ContextProfile `json:"context"`
	History []ChatTurn     `json:"history"`

	// EarlyExit marks that the user skipped remaining context questions
	EarlyExit bool `json:"early_exit"`

	// EnrichmentFailed is set when the last enrichment attempt was
	// unavailable; generation proceeds regardless
	EnrichmentFailed bool `json:"enrichment_failed,omitempty"`

	// Campaign holds the most recent generation result, if any
	Campaign *GeneratedCampaign `json:"campaign,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversationRecord creates a fresh record in the initial phase
func NewConversationRecord(userID string) *ConversationRecord {
	now := time.Now()
	return &ConversationRecord{
		UserID:    userID,
		Phase:     PhaseCollectingContext,
		Context:   ContextProfile{},
		History:   make([]ChatTurn, 0, 8),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendTurn records one side of an exchange
func (r *ConversationRecord) AppendTurn(role, content string) {
	r.History = append(r.History, ChatTurn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	r.UpdatedAt = time.Now()
}

// RecentHistory returns up to n of the latest turns for prompt context windows
func (r *ConversationRecord) RecentHistory(n int) []ChatTurn {
	if n <= 0 || len(r.History) <= n {
		return r.History
	}
	return r.History[len(r.History)-n:]
}

// Clone returns a deep copy safe to hand out past the lock boundary
func (r *ConversationRecord) Clone() *ConversationRecord {
	cp := *r
	cp.History = make([]ChatTurn, len(r.History))
	copy(cp.History, r.History)
	cp.Context = r.Context.Clone()
	if r.Campaign != nil {
		campaign := r.Campaign.Clone()
		cp.Campaign = &campaign
	}
	return &cp
}
