package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveSlotConstraint is the partial unique index over
// (doctor_id, appointment_day, time_slot) for active appointments.
const ActiveSlotConstraint = "uq_appointments_active_slot"

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusOngoing   AppointmentStatus = "ongoing"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no-show"
)

// ActiveStatuses lists the statuses that hold a slot. It must stay in sync
// with the predicate of ActiveSlotConstraint.
func ActiveStatuses() []AppointmentStatus {
	return []AppointmentStatus{AppointmentStatusScheduled, AppointmentStatusOngoing}
}

// IsActive reports whether an appointment in this status occupies its slot.
func (s AppointmentStatus) IsActive() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusOngoing
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusOngoing, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled: {
		AppointmentStatusOngoing,
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
		AppointmentStatusNoShow,
	},
	AppointmentStatusOngoing: {
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
		AppointmentStatusNoShow,
	},
}

// CanTransitionTo reports whether next may follow s. Terminal statuses
// accept nothing, so a released slot is never re-held by the same row.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanCancel is false once an appointment is completed or already cancelled.
func (s AppointmentStatus) CanCancel() bool {
	return s != AppointmentStatusCompleted && s != AppointmentStatusCancelled
}

// CancellableStatuses is the complement of the CanCancel exclusions.
func CancellableStatuses() []AppointmentStatus {
	return []AppointmentStatus{AppointmentStatusScheduled, AppointmentStatusOngoing, AppointmentStatusNoShow}
}

type ConsultationType string

const (
	ConsultationVideo ConsultationType = "video"
	ConsultationAudio ConsultationType = "audio"
	ConsultationChat  ConsultationType = "chat"
)

// Appointment is a single reservation of one doctor time window on one
// calendar day. Rows are never deleted; cancellation is a status change.
type Appointment struct {
	ID                uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	DoctorID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	AppointmentDate   time.Time         `gorm:"type:timestamptz;not null" json:"appointment_date"`
	AppointmentDay    time.Time         `gorm:"type:date;not null" json:"appointment_day"`
	TimeSlot          string            `gorm:"type:varchar(11);not null" json:"time_slot"`
	Status            AppointmentStatus `gorm:"type:varchar(20);not null" json:"status"`
	ConsultationType  ConsultationType  `gorm:"type:varchar(10);not null" json:"consultation_type"`
	Symptoms          string            `gorm:"type:text" json:"symptoms,omitempty"`
	Diagnosis         string            `gorm:"type:text" json:"diagnosis,omitempty"`
	Prescription      Prescription      `gorm:"type:jsonb" json:"prescription"`
	ConsultationNotes string            `gorm:"type:text" json:"consultation_notes,omitempty"`
	MeetingID         string            `gorm:"type:varchar(100)" json:"meeting_id"`
	MeetingLink       string            `gorm:"type:text" json:"meeting_link"`
	NotificationSent  bool              `gorm:"not null" json:"notification_sent"`
	RatingScore       *int              `json:"rating_score,omitempty"`
	RatingFeedback    string            `gorm:"type:varchar(500)" json:"rating_feedback,omitempty"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	Doctor  *DoctorProfile  `gorm:"foreignKey:DoctorID;references:UserID" json:"doctor,omitempty"`
	Patient *PatientProfile `gorm:"foreignKey:PatientID;references:UserID" json:"patient,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsParticipant reports whether the actor is the doctor or the patient of
// this appointment.
func (a *Appointment) IsParticipant(actor Actor) bool {
	return a.IsDoctor(actor) || a.IsPatient(actor)
}

func (a *Appointment) IsDoctor(actor Actor) bool {
	return actor.IsDoctor() && a.DoctorID == actor.UserID
}

func (a *Appointment) IsPatient(actor Actor) bool {
	return actor.IsPatient() && a.PatientID == actor.UserID
}

// Medication is one prescribed drug line.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

// Prescription is stored as a jsonb document on the appointment row.
type Prescription struct {
	Medications  []Medication `json:"medications"`
	Instructions string       `json:"instructions,omitempty"`
}

func (p Prescription) IsEmpty() bool {
	return len(p.Medications) == 0 && p.Instructions == ""
}

func (p Prescription) Value() (driver.Value, error) {
	if p.IsEmpty() {
		return nil, nil
	}
	return json.Marshal(p)
}

func (p *Prescription) Scan(value interface{}) error {
	if value == nil {
		*p = Prescription{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal prescription value: %v", value)
	}
	return json.Unmarshal(bytes, p)
}

// StatusCount is one row of a per-status aggregate.
type StatusCount struct {
	Status AppointmentStatus
	Count  int64
}
