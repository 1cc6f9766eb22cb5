package dto

import (
	"time"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserResponse struct {
	ID             uuid.UUID               `json:"id"`
	Email          string                  `json:"email"`
	FullName       string                  `json:"full_name"`
	Phone          string                  `json:"phone,omitempty"`
	Role           string                  `json:"role"`
	DoctorProfile  *DoctorProfileResponse  `json:"doctor_profile,omitempty"`
	PatientProfile *PatientProfileResponse `json:"patient_profile,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

type RegisterPatientRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	FullName         string `json:"full_name" validate:"required,min=2,max=100"`
	Phone            string `json:"phone" validate:"required,min=10,max=20"`
	Age              int    `json:"age" validate:"gte=0,lte=150"`
	Gender           string `json:"gender" validate:"required,oneof=male female other"`
	BloodGroup       string `json:"blood_group" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Address          string `json:"address" validate:"omitempty,max=500"`
	EmergencyContact string `json:"emergency_contact" validate:"omitempty,min=10,max=20"`
}

type RegisterDoctorRequest struct {
	Email           string               `json:"email" validate:"required,email"`
	Password        string               `json:"password" validate:"required,min=6"`
	FullName        string               `json:"full_name" validate:"required,min=2,max=100"`
	Phone           string               `json:"phone" validate:"required,min=10,max=20"`
	LicenseNumber   string               `json:"license_number" validate:"required,max=50"`
	Specialization  string               `json:"specialization" validate:"required"`
	Experience      int                  `json:"experience" validate:"gte=0,lte=50"`
	Qualifications  string               `json:"qualifications" validate:"omitempty,max=1000"`
	Biography       string               `json:"biography" validate:"omitempty,max=2000"`
	ConsultationFee float64              `json:"consultation_fee" validate:"gte=0"`
	Availability    *AvailabilityRequest `json:"availability"`
}
