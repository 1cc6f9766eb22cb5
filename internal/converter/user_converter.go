package converter

import (
	"telehealth-booking/internal/delivery/dto"
	"telehealth-booking/internal/domain/entity"
)

// UserToResponse includes the doctor or patient profile when it is loaded.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Phone:     user.Phone,
		Role:      user.Role.RoleName,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	if user.DoctorProfile != nil {
		response.DoctorProfile = &dto.DoctorProfileResponse{
			LicenseNumber:  user.DoctorProfile.LicenseNumber,
			Specialization: user.DoctorProfile.Specialization,
			Experience:     user.DoctorProfile.Experience,
			Rating:         user.DoctorProfile.Rating,
		}
	}

	if user.PatientProfile != nil {
		response.PatientProfile = &dto.PatientProfileResponse{
			Age:              user.PatientProfile.Age,
			Gender:           user.PatientProfile.Gender,
			BloodGroup:       user.PatientProfile.BloodGroup,
			Address:          user.PatientProfile.Address,
			EmergencyContact: user.PatientProfile.EmergencyContact,
		}
	}

	return response
}
