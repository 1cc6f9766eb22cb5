package dto

type DoctorDashboardStats struct {
	TotalAppointments    int64 `json:"total_appointments"`
	TodayAppointments    int64 `json:"today_appointments"`
	UpcomingAppointments int64 `json:"upcoming_appointments"`
}

type DoctorDashboardResponse struct {
	Doctor             *DoctorResponse       `json:"doctor"`
	Statistics         DoctorDashboardStats  `json:"statistics"`
	RecentAppointments []AppointmentResponse `json:"recent_appointments"`
}

type PatientDashboardStats struct {
	TotalAppointments     int64 `json:"total_appointments"`
	UpcomingAppointments  int64 `json:"upcoming_appointments"`
	CompletedAppointments int64 `json:"completed_appointments"`
}

type PatientDashboardResponse struct {
	Patient            *PatientResponse      `json:"patient"`
	Statistics         PatientDashboardStats `json:"statistics"`
	RecentAppointments []AppointmentResponse `json:"recent_appointments"`
	RecommendedDoctors []DoctorResponse      `json:"recommended_doctors"`
}
