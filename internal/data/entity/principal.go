package entity

import "github.com/google/uuid"

// Principal is the authenticated actor of a request.
type Principal struct {
	UserID uuid.UUID
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccess reports whether p owns b or is an administrator.
func (p Principal) CanAccess(b *Booking) bool {
	return p.IsAdmin() || b.UserID == p.UserID
}
