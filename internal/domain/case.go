package domain

import "time"

// Case is the aggregate worked by assignees.
type Case struct {
	ID          string
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   string
	AssignedTo  *string
	AssignedBy  *string
	StatusID    int

	// Expanded relations, populated on reads.
	Status       CaseStatus
	Creator      *User
	AssignedUser *User
	Assigner     *User
}

// IsAssignedTo reports whether userID currently holds the case.
func (c *Case) IsAssignedTo(userID string) bool {
	return c.AssignedTo != nil && *c.AssignedTo == userID
}

// VisibleTo reports whether actor may read the case.
func (c *Case) VisibleTo(actor Actor) bool {
	if actor.Role.SeesAllCases() {
		return true
	}
	return c.IsAssignedTo(actor.ID)
}
