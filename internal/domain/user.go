package domain

import "time"

// User is a person who can act on cases. Identity and role are reference data.
type User struct {
	ID        string
	Name      string
	Role      Role
	CreatedAt time.Time
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   string
	Name string
	Role Role
}

// Actor returns the acting identity for u.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}
