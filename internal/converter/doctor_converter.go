package converter

import (
	"telehealth-booking/internal/delivery/dto"
	"telehealth-booking/internal/domain/entity"
)

func AvailabilityToResponse(t entity.AvailabilityTemplate) dto.AvailabilityResponse {
	days := make([]string, len(t.Days))
	copy(days, t.Days)
	slots := make([]string, len(t.TimeSlots))
	copy(slots, t.TimeSlots)
	return dto.AvailabilityResponse{Days: days, TimeSlots: slots}
}

func AvailabilityFromRequest(req *dto.AvailabilityRequest) entity.AvailabilityTemplate {
	if req == nil {
		return entity.AvailabilityTemplate{Days: []string{}, TimeSlots: []string{}}
	}
	return entity.AvailabilityTemplate{
		Days:      append([]string{}, req.Days...),
		TimeSlots: append([]string{}, req.TimeSlots...),
	}
}

func DoctorProfileToResponse(profile *entity.DoctorProfile) *dto.DoctorResponse {
	if profile == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:              profile.UserID,
		Email:           profile.User.Email,
		FullName:        profile.User.FullName,
		Phone:           profile.User.Phone,
		LicenseNumber:   profile.LicenseNumber,
		Specialization:  profile.Specialization,
		Experience:      profile.Experience,
		Qualifications:  profile.Qualifications,
		Biography:       profile.Biography,
		ConsultationFee: profile.ConsultationFee,
		Availability:    AvailabilityToResponse(profile.Availability),
		Rating:          profile.Rating,
		TotalPatients:   profile.TotalPatients,
		IsActive:        profile.User.IsActive,
	}
}

func DoctorProfilesToResponses(profiles []entity.DoctorProfile) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(profiles))
	for i := range profiles {
		responses[i] = *DoctorProfileToResponse(&profiles[i])
	}
	return responses
}
