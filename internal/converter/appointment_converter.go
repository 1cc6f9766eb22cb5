package converter

import (
	"telehealth-booking/internal/delivery/dto"
	"telehealth-booking/internal/domain/entity"
)

func PrescriptionFromRequest(req *dto.PrescriptionRequest) entity.Prescription {
	if req == nil {
		return entity.Prescription{}
	}
	medications := make([]entity.Medication, len(req.Medications))
	for i, m := range req.Medications {
		medications[i] = entity.Medication{
			Name:      m.Name,
			Dosage:    m.Dosage,
			Frequency: m.Frequency,
			Duration:  m.Duration,
		}
	}
	return entity.Prescription{Medications: medications, Instructions: req.Instructions}
}

func prescriptionToResponse(p entity.Prescription) *dto.PrescriptionResponse {
	if p.IsEmpty() {
		return nil
	}
	medications := make([]dto.MedicationResponse, len(p.Medications))
	for i, m := range p.Medications {
		medications[i] = dto.MedicationResponse{
			Name:      m.Name,
			Dosage:    m.Dosage,
			Frequency: m.Frequency,
			Duration:  m.Duration,
		}
	}
	return &dto.PrescriptionResponse{Medications: medications, Instructions: p.Instructions}
}

func doctorParty(profile *entity.DoctorProfile) *dto.AppointmentPartyResponse {
	if profile == nil {
		return nil
	}
	return &dto.AppointmentPartyResponse{
		ID:             profile.UserID,
		FullName:       profile.User.FullName,
		Email:          profile.User.Email,
		Phone:          profile.User.Phone,
		Specialization: profile.Specialization,
	}
}

func patientParty(profile *entity.PatientProfile) *dto.AppointmentPartyResponse {
	if profile == nil {
		return nil
	}
	return &dto.AppointmentPartyResponse{
		ID:       profile.UserID,
		FullName: profile.User.FullName,
		Email:    profile.User.Email,
		Phone:    profile.User.Phone,
	}
}

func AppointmentToResponse(a *entity.Appointment) *dto.AppointmentResponse {
	if a == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:                a.ID,
		DoctorID:          a.DoctorID,
		PatientID:         a.PatientID,
		Doctor:            doctorParty(a.Doctor),
		Patient:           patientParty(a.Patient),
		AppointmentDate:   a.AppointmentDate,
		AppointmentDay:    a.AppointmentDay.Format("2006-01-02"),
		Day:               a.AppointmentDay.Weekday().String(),
		TimeSlot:          a.TimeSlot,
		Status:            string(a.Status),
		ConsultationType:  string(a.ConsultationType),
		Symptoms:          a.Symptoms,
		Diagnosis:         a.Diagnosis,
		Prescription:      prescriptionToResponse(a.Prescription),
		ConsultationNotes: a.ConsultationNotes,
		MeetingID:         a.MeetingID,
		MeetingLink:       a.MeetingLink,
		NotificationSent:  a.NotificationSent,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}

	if a.RatingScore != nil {
		response.Rating = &dto.RatingResponse{Score: *a.RatingScore, Feedback: a.RatingFeedback}
	}

	return response
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

// StatusCountsToStats folds per-status rows into the stats response.
func StatusCountsToStats(counts []entity.StatusCount) *dto.AppointmentStatsResponse {
	stats := &dto.AppointmentStatsResponse{}
	for _, c := range counts {
		stats.Total += c.Count
		switch c.Status {
		case entity.AppointmentStatusScheduled:
			stats.Scheduled = c.Count
		case entity.AppointmentStatusOngoing:
			stats.Ongoing = c.Count
		case entity.AppointmentStatusCompleted:
			stats.Completed = c.Count
		case entity.AppointmentStatusCancelled:
			stats.Cancelled = c.Count
		case entity.AppointmentStatusNoShow:
			stats.NoShow = c.Count
		}
	}
	return stats
}
