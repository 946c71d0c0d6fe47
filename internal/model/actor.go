package model

import "github.com/google/uuid"

// Actor is the authenticated caller, resolved once by the auth middleware
// and passed explicitly into every service call that needs it. A zero-value
// Actor means "unauthenticated"; read paths treat that as an empty scope
// rather than an error.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Name   string
	OrgID  uuid.UUID
	Role   string
}

// Authenticated reports whether the actor carries a real user identity.
func (a Actor) Authenticated() bool {
	return a.UserID != uuid.Nil
}

// IsAdmin reports whether the actor holds the admin role in its organization.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
