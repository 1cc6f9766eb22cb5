package entity

import "github.com/google/uuid"

// Actor is the authenticated caller of a usecase. Handlers build it from the
// verified token and pass it down explicitly.
type Actor struct {
	UserID uuid.UUID
	RoleID int
}

func (a Actor) IsDoctor() bool  { return a.RoleID == RoleIDDoctor }
func (a Actor) IsPatient() bool { return a.RoleID == RoleIDPatient }
func (a Actor) IsAdmin() bool   { return a.RoleID == RoleIDAdmin }
