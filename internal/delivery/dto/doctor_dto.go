package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AvailabilityRequest is a weekly template: weekday names and the
// "HH:MM-HH:MM" windows offered on each of them.
type AvailabilityRequest struct {
	Days      []string `json:"days" validate:"required,min=1,max=7,unique,dive,weekday"`
	TimeSlots []string `json:"time_slots" validate:"required,min=1,unique,dive,timeslot"`
}

type UpdateDoctorProfileRequest struct {
	FullName        *string              `json:"full_name" validate:"omitempty,min=2,max=100"`
	Phone           *string              `json:"phone" validate:"omitempty,min=10,max=20"`
	Specialization  *string              `json:"specialization" validate:"omitempty"`
	Experience      *int                 `json:"experience" validate:"omitempty,gte=0,lte=50"`
	Qualifications  *string              `json:"qualifications" validate:"omitempty,max=1000"`
	Biography       *string              `json:"biography" validate:"omitempty,max=2000"`
	ConsultationFee *float64             `json:"consultation_fee" validate:"omitempty,gte=0"`
	Availability    *AvailabilityRequest `json:"availability"`
	OldPassword     *string              `json:"old_password" validate:"required_with=NewPassword"`
	NewPassword     *string              `json:"new_password" validate:"omitempty,min=6"`
}

type AvailabilityResponse struct {
	Days      []string `json:"days"`
	TimeSlots []string `json:"time_slots"`
}

type DoctorProfileResponse struct {
	LicenseNumber  string  `json:"license_number"`
	Specialization string  `json:"specialization"`
	Experience     int     `json:"experience"`
	Rating         float64 `json:"rating"`
}

type DoctorResponse struct {
	ID              uuid.UUID            `json:"id"`
	Email           string               `json:"email"`
	FullName        string               `json:"full_name"`
	Phone           string               `json:"phone,omitempty"`
	LicenseNumber   string               `json:"license_number"`
	Specialization  string               `json:"specialization"`
	Experience      int                  `json:"experience"`
	Qualifications  string               `json:"qualifications,omitempty"`
	Biography       string               `json:"biography,omitempty"`
	ConsultationFee decimal.Decimal      `json:"consultation_fee"`
	Availability    AvailabilityResponse `json:"availability"`
	Rating          float64              `json:"rating"`
	TotalPatients   int                  `json:"total_patients"`
	IsActive        *bool                `json:"is_active,omitempty"`
}

type AvailableSlotsResponse struct {
	DoctorID       uuid.UUID `json:"doctor_id"`
	Date           string    `json:"date"`
	Day            string    `json:"day"`
	AvailableSlots []string  `json:"available_slots"`
}
