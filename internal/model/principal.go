package model

import "github.com/google/uuid"

// Principal is the authenticated identity attached to a request context.
type Principal struct {
	UserID uuid.UUID
	Role   Role
	Name   string
}

func (p Principal) IsRequester() bool {
	return p.Role == RoleRequester
}

func (p Principal) IsCollector() bool {
	return p.Role == RoleCollector
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
