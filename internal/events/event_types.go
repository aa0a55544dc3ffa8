package events

import (
	"time"

	"github.com/spec-kit/case-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCaseCreated       EventType = "case_created"
	EventCaseAssigned      EventType = "case_assigned"
	EventCaseStatusChanged EventType = "case_status_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// ActorFrom converts the acting identity.
func ActorFrom(actor domain.Actor) Actor {
	return Actor{ID: actor.ID, Role: actor.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CaseID    string      `json:"case_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CaseCreatedPayload payload.
type CaseCreatedPayload struct {
	Title  string                `json:"title"`
	Status domain.CaseStatusName `json:"status"`
}

// CaseAssignedPayload payload.
type CaseAssignedPayload struct {
	PreviousAssigneeID *string     `json:"previous_assignee_id,omitempty"`
	AssigneeID         string      `json:"assignee_id"`
	AssigneeRole       domain.Role `json:"assignee_role"`
}

// CaseStatusChangedPayload payload.
type CaseStatusChangedPayload struct {
	OldStatus domain.CaseStatusName `json:"old_status"`
	NewStatus domain.CaseStatusName `json:"new_status"`
}
