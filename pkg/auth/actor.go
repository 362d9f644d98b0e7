package auth

import "github.com/google/uuid"

type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleTherapist   Role = "therapist"
	RolePatient     Role = "patient"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleCoordinator, RoleTherapist, RolePatient:
		return true
	}
	return false
}

// Privileged roles bypass the standard status-transition table.
func (r Role) Privileged() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// Actor is the acting user behind a mutation. A nil *Actor means the change
// was system-initiated with no known user; such changes produce no status
// history row.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

func (a *Actor) Privileged() bool {
	return a != nil && a.Role.Privileged()
}
