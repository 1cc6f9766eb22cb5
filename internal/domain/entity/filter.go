package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps page to >= 1 and limit to 1..MaxPageLimit.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

type AppointmentFilter struct {
	Status *AppointmentStatus
	Page
}

// DoctorFilter narrows the doctor directory. Nil bounds are not applied.
type DoctorFilter struct {
	Specialization string
	Search         string
	MinRating      *float64
	MaxFee         *decimal.Decimal
	Page
}

// AppointmentOwner selects appointments by doctor or by patient; exactly
// one field is set.
type AppointmentOwner struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
}

// OwnerOf returns the owner selector matching the actor's role.
func OwnerOf(actor Actor) AppointmentOwner {
	id := actor.UserID
	if actor.IsDoctor() {
		return AppointmentOwner{DoctorID: &id}
	}
	return AppointmentOwner{PatientID: &id}
}
