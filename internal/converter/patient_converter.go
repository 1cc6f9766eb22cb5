package converter

import (
	"telehealth-booking/internal/delivery/dto"
	"telehealth-booking/internal/domain/entity"
)

func PatientProfileToResponse(profile *entity.PatientProfile) *dto.PatientResponse {
	if profile == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:               profile.UserID,
		Email:            profile.User.Email,
		FullName:         profile.User.FullName,
		Phone:            profile.User.Phone,
		Age:              profile.Age,
		Gender:           profile.Gender,
		BloodGroup:       profile.BloodGroup,
		Address:          profile.Address,
		EmergencyContact: profile.EmergencyContact,
		CreatedAt:        profile.User.CreatedAt,
		UpdatedAt:        profile.User.UpdatedAt,
	}
}
