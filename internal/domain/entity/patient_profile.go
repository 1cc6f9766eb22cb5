package entity

import (
	"github.com/google/uuid"
)

// PatientProfile holds patient-only data. Contact details live on User.
type PatientProfile struct {
	UserID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Age              int       `gorm:"not null;default:0" json:"age"`
	Gender           string    `gorm:"type:varchar(10)" json:"gender,omitempty"`
	BloodGroup       string    `gorm:"type:varchar(3)" json:"blood_group,omitempty"`
	Address          string    `gorm:"type:text" json:"address,omitempty"`
	EmergencyContact string    `gorm:"type:varchar(20)" json:"emergency_contact,omitempty"`

	User         User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:PatientID;references:UserID" json:"appointments,omitempty"`
}

func (PatientProfile) TableName() string {
	return "patient_profiles"
}

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)
