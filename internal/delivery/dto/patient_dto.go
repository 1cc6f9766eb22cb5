package dto

import (
	"time"

	"github.com/google/uuid"
)

type UpdatePatientProfileRequest struct {
	FullName         *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Phone            *string `json:"phone" validate:"omitempty,min=10,max=20"`
	Age              *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender           *string `json:"gender" validate:"omitempty,oneof=male female other"`
	BloodGroup       *string `json:"blood_group" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Address          *string `json:"address" validate:"omitempty,max=500"`
	EmergencyContact *string `json:"emergency_contact" validate:"omitempty,min=10,max=20"`
	OldPassword      *string `json:"old_password" validate:"required_with=NewPassword"`
	NewPassword      *string `json:"new_password" validate:"omitempty,min=6"`
}

type PatientProfileResponse struct {
	Age              int    `json:"age"`
	Gender           string `json:"gender,omitempty"`
	BloodGroup       string `json:"blood_group,omitempty"`
	Address          string `json:"address,omitempty"`
	EmergencyContact string `json:"emergency_contact,omitempty"`
}

type PatientResponse struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	Phone            string    `json:"phone,omitempty"`
	Age              int       `json:"age"`
	Gender           string    `json:"gender,omitempty"`
	BloodGroup       string    `json:"blood_group,omitempty"`
	Address          string    `json:"address,omitempty"`
	EmergencyContact string    `json:"emergency_contact,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
