// Package audit records who changed the knowledge base and how.
package audit

import "time"

// ActorType identifies who performed an action.
type ActorType string

const (
	ActorUser   ActorType = "user"
	ActorSystem ActorType = "system"
	ActorBot    ActorType = "bot"
)

// Action describes what was done.
type Action string

const (
	ActionSolutionTaught   Action = "solution_taught"
	ActionSolutionUpdated  Action = "solution_updated"
	ActionFeedbackPositive Action = "feedback_positive"
	ActionFeedbackNegative Action = "feedback_negative"
	ActionKnowledgeReset   Action = "knowledge_reset"
	ActionCatalogImported  Action = "catalog_imported"
)

// Entry is a single audit trail record.
type Entry struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	ActorType     ActorType `json:"actor_type"`
	ActorID       string    `json:"actor_id"`
	Action        Action    `json:"action"`
	Problem       string    `json:"problem,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	SessionID     string    `json:"session_id,omitempty"`
	PreviousValue string    `json:"previous_value,omitempty"`
	NewValue      string    `json:"new_value,omitempty"`
}
