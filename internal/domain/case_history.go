package domain

import "time"

// CaseChangeType captures what changed in a history entry.
type CaseChangeType string

const (
	ChangeTypeCreated  CaseChangeType = "CREATED"
	ChangeTypeAssignee CaseChangeType = "ASSIGNEE"
	ChangeTypeStatus   CaseChangeType = "STATUS"
)

// CaseHistory is an immutable audit trail entry.
type CaseHistory struct {
	ID         string
	CaseID     string
	ActorID    string
	ChangeType CaseChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}
