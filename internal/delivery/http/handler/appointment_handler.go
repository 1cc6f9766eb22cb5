package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"telehealth-booking/internal/delivery/dto"
	"telehealth-booking/internal/domain/entity"
	"telehealth-booking/internal/usecase"
	"telehealth-booking/pkg/response"
	"telehealth-booking/pkg/validator"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

// writeAppointmentError maps booking and lifecycle errors to HTTP statuses.
func writeAppointmentError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, "Appointment not found")
	case errors.Is(err, usecase.ErrDoctorNotFound):
		response.NotFound(w, "Doctor not found")
	case errors.Is(err, usecase.ErrPatientNotFound):
		response.NotFound(w, "Patient profile not found")
	case errors.Is(err, usecase.ErrAppointmentForbidden):
		response.Forbidden(w, "Not authorized to access this appointment")
	case errors.Is(err, usecase.ErrSlotTaken):
		response.Conflict(w, "Time slot is already booked")
	case errors.Is(err, usecase.ErrInvalidAppointmentDate),
		errors.Is(err, usecase.ErrAppointmentInPast),
		errors.Is(err, usecase.ErrAppointmentNotCancellable),
		errors.Is(err, usecase.ErrAppointmentNotActive),
		errors.Is(err, usecase.ErrInvalidStatusTransition),
		errors.Is(err, usecase.ErrAppointmentNotRateable),
		errors.Is(err, usecase.ErrMeetingUnavailable):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}

func (h *AppointmentHandler) decode(w http.ResponseWriter, r *http.Request, req interface{}, optional bool) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
			return false
		}
	}

	if err := h.validator.Validate(req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return false
	}
	return true
}

func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.BookAppointmentRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	appointment, err := h.appointmentUsecase.BookAppointment(r.Context(), actor, &req)
	if err != nil {
		writeAppointmentError(w, err, "Failed to book appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.GetAppointment(r.Context(), actor, id)
	if err != nil {
		writeAppointmentError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

// ListDoctorAppointments answers GET /doctor/appointments?status=&page=&limit=.
func (h *AppointmentHandler) ListDoctorAppointments(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	filter := entity.AppointmentFilter{Page: pageFromQuery(r)}
	if s := r.URL.Query().Get("status"); s != "" {
		status := entity.AppointmentStatus(s)
		if !status.Valid() {
			response.BadRequest(w, "Invalid appointment status")
			return
		}
		filter.Status = &status
	}

	appointments, total, err := h.appointmentUsecase.ListDoctorAppointments(r.Context(), actor, filter)
	if err != nil {
		writeAppointmentError(w, err, "Failed to get appointments")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Appointments retrieved successfully", appointments,
		response.NewMeta(filter.Page.Page, filter.Page.Limit, total))
}

func (h *AppointmentHandler) ListPatientAppointments(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	appointments, err := h.appointmentUsecase.ListPatientAppointments(r.Context(), actor)
	if err != nil {
		writeAppointmentError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.UpdateAppointmentRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	appointment, err := h.appointmentUsecase.UpdateAppointment(r.Context(), actor, id, &req)
	if err != nil {
		writeAppointmentError(w, err, "Failed to update appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment updated successfully", appointment)
}

func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.UpdateAppointmentStatusRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	appointment, err := h.appointmentUsecase.UpdateStatus(r.Context(), actor, id, &req)
	if err != nil {
		writeAppointmentError(w, err, "Failed to update appointment status")
		return
	}

	response.Success(w, http.StatusOK, "Appointment status updated successfully", appointment)
}

// CancelAppointment accepts an empty body; the reason is optional.
func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.CancelAppointmentRequest
	if !h.decode(w, r, &req, true) {
		return
	}

	appointment, err := h.appointmentUsecase.CancelAppointment(r.Context(), actor, id, &req)
	if err != nil {
		writeAppointmentError(w, err, "Failed to cancel appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", appointment)
}

func (h *AppointmentHandler) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.RescheduleAppointmentRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	appointment, err := h.appointmentUsecase.RescheduleAppointment(r.Context(), actor, id, &req)
	if err != nil {
		writeAppointmentError(w, err, "Failed to reschedule appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment rescheduled successfully", appointment)
}

func (h *AppointmentHandler) RateAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.RateAppointmentRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	appointment, err := h.appointmentUsecase.RateAppointment(r.Context(), actor, id, &req)
	if err != nil {
		writeAppointmentError(w, err, "Failed to rate appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment rated successfully", appointment)
}

func (h *AppointmentHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	stats, err := h.appointmentUsecase.GetStats(r.Context(), actor)
	if err != nil {
		writeAppointmentError(w, err, "Failed to get appointment stats")
		return
	}

	response.Success(w, http.StatusOK, "Appointment stats retrieved successfully", stats)
}

// GetMeetingConfig answers GET /appointments/{id}/video.
func (h *AppointmentHandler) GetMeetingConfig(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	meeting, err := h.appointmentUsecase.GetMeetingConfig(r.Context(), actor, id)
	if err != nil {
		writeAppointmentError(w, err, "Failed to get meeting config")
		return
	}

	response.Success(w, http.StatusOK, "Meeting config retrieved successfully", meeting)
}

func (h *AppointmentHandler) GetDoctorDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	dashboard, err := h.appointmentUsecase.GetDoctorDashboard(r.Context(), actor)
	if err != nil {
		writeAppointmentError(w, err, "Failed to get dashboard data")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}

func (h *AppointmentHandler) GetPatientDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	dashboard, err := h.appointmentUsecase.GetPatientDashboard(r.Context(), actor)
	if err != nil {
		writeAppointmentError(w, err, "Failed to get dashboard data")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}
