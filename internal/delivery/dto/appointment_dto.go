package dto

import (
	"time"

	"github.com/google/uuid"
)

type MedicationRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Dosage    string `json:"dosage" validate:"omitempty,max=100"`
	Frequency string `json:"frequency" validate:"omitempty,max=100"`
	Duration  string `json:"duration" validate:"omitempty,max=100"`
}

type PrescriptionRequest struct {
	Medications  []MedicationRequest `json:"medications" validate:"omitempty,dive"`
	Instructions string              `json:"instructions" validate:"omitempty,max=2000"`
}

// BookAppointmentRequest books a window for the calling patient.
// AppointmentDate accepts RFC 3339 or a bare YYYY-MM-DD date.
type BookAppointmentRequest struct {
	DoctorID         uuid.UUID `json:"doctor_id" validate:"required"`
	AppointmentDate  string    `json:"appointment_date" validate:"required"`
	TimeSlot         string    `json:"time_slot" validate:"required,timeslot"`
	ConsultationType string    `json:"consultation_type" validate:"omitempty,oneof=video audio chat"`
	Symptoms         string    `json:"symptoms" validate:"omitempty,max=1000"`
}

// UpdateAppointmentRequest carries clinical updates. Doctors may set the
// status and the clinical fields; patients may only set symptoms. Fields
// outside the caller's role are ignored.
type UpdateAppointmentRequest struct {
	Status            *string              `json:"status" validate:"omitempty,oneof=ongoing completed cancelled no-show"`
	Symptoms          *string              `json:"symptoms" validate:"omitempty,max=1000"`
	Diagnosis         *string              `json:"diagnosis" validate:"omitempty,max=2000"`
	Prescription      *PrescriptionRequest `json:"prescription"`
	ConsultationNotes *string              `json:"consultation_notes" validate:"omitempty,max=5000"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type RescheduleAppointmentRequest struct {
	AppointmentDate string `json:"appointment_date" validate:"required"`
	TimeSlot        string `json:"time_slot" validate:"required,timeslot"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ongoing completed cancelled no-show"`
}

type RateAppointmentRequest struct {
	Score    int    `json:"score" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback" validate:"omitempty,max=500"`
}

type AppointmentPartyResponse struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Specialization string    `json:"specialization,omitempty"`
}

type MedicationResponse struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	Duration  string `json:"duration,omitempty"`
}

type PrescriptionResponse struct {
	Medications  []MedicationResponse `json:"medications"`
	Instructions string               `json:"instructions,omitempty"`
}

type RatingResponse struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback,omitempty"`
}

type AppointmentResponse struct {
	ID                uuid.UUID                 `json:"id"`
	DoctorID          uuid.UUID                 `json:"doctor_id"`
	PatientID         uuid.UUID                 `json:"patient_id"`
	Doctor            *AppointmentPartyResponse `json:"doctor,omitempty"`
	Patient           *AppointmentPartyResponse `json:"patient,omitempty"`
	AppointmentDate   time.Time                 `json:"appointment_date"`
	AppointmentDay    string                    `json:"appointment_day"`
	Day               string                    `json:"day"`
	TimeSlot          string                    `json:"time_slot"`
	Status            string                    `json:"status"`
	ConsultationType  string                    `json:"consultation_type"`
	Symptoms          string                    `json:"symptoms,omitempty"`
	Diagnosis         string                    `json:"diagnosis,omitempty"`
	Prescription      *PrescriptionResponse     `json:"prescription,omitempty"`
	ConsultationNotes string                    `json:"consultation_notes,omitempty"`
	MeetingID         string                    `json:"meeting_id"`
	MeetingLink       string                    `json:"meeting_link"`
	NotificationSent  bool                      `json:"notification_sent"`
	Rating            *RatingResponse           `json:"rating,omitempty"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int64                 `json:"total"`
}

type AppointmentStatsResponse struct {
	Total     int64 `json:"total"`
	Scheduled int64 `json:"scheduled"`
	Ongoing   int64 `json:"ongoing"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
	NoShow    int64 `json:"no_show"`
}

type MeetingConfigResponse struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	RoomName      string    `json:"room_name"`
	Domain        string    `json:"domain"`
	MeetingLink   string    `json:"meeting_link"`
}
