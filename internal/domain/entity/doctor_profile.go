package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DoctorProfile represents doctor-specific profile data, including the
// recurring weekly availability the resolver works from.
type DoctorProfile struct {
	UserID          uuid.UUID            `gorm:"type:uuid;primaryKey" json:"user_id"`
	LicenseNumber   string               `gorm:"type:varchar(50);uniqueIndex;not null" json:"license_number"`
	Specialization  string               `gorm:"type:varchar(100);not null;index" json:"specialization"`
	Experience      int                  `gorm:"not null;default:0" json:"experience"`
	Qualifications  string               `gorm:"type:text" json:"qualifications,omitempty"`
	Biography       string               `gorm:"type:text" json:"biography,omitempty"`
	ConsultationFee decimal.Decimal      `gorm:"type:numeric(10,2);not null;default:0" json:"consultation_fee"`
	Availability    AvailabilityTemplate `gorm:"embedded;embeddedPrefix:availability_" json:"availability"`
	Rating          float64              `gorm:"type:numeric(2,1);not null;default:0" json:"rating"`
	TotalPatients   int                  `gorm:"not null;default:0" json:"total_patients"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

// Specializations accepted on registration and profile updates.
var Specializations = []string{
	"General Medicine",
	"Cardiology",
	"Dermatology",
	"Pediatrics",
	"Psychiatry",
	"Neurology",
	"Orthopedics",
	"Gynecology",
	"ENT",
	"Ophthalmology",
}
