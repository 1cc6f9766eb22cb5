package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"telehealth-booking/config"
	"telehealth-booking/internal/converter"
	"telehealth-booking/internal/delivery/dto"
	"telehealth-booking/internal/domain/entity"
	"telehealth-booking/internal/domain/repository"
	"telehealth-booking/internal/infrastructure/database"
	"telehealth-booking/internal/observability/metrics"
	"telehealth-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

var appointmentTracer = otel.Tracer("telehealth-booking/internal/usecase/appointment")

const (
	dashboardRecentLimit      = 5
	dashboardRecommendedLimit = 5
)

var (
	ErrAppointmentNotFound       = errors.New("appointment not found")
	ErrInvalidAppointmentDate    = errors.New("invalid appointment date, use RFC 3339 or YYYY-MM-DD")
	ErrAppointmentInPast         = errors.New("appointment date must be in the future")
	ErrSlotTaken                 = errors.New("time slot is already booked")
	ErrAppointmentForbidden      = errors.New("not authorized to access this appointment")
	ErrAppointmentNotCancellable = errors.New("appointment cannot be cancelled")
	ErrAppointmentNotActive      = errors.New("only scheduled or ongoing appointments can be rescheduled")
	ErrInvalidStatusTransition   = errors.New("invalid appointment status transition")
	ErrAppointmentNotRateable    = errors.New("only completed appointments can be rated")
	ErrMeetingUnavailable        = errors.New("video room is only open for scheduled or ongoing appointments")
)

type AppointmentUsecase interface {
	BookAppointment(ctx context.Context, actor entity.Actor, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error)
	ListDoctorAppointments(ctx context.Context, actor entity.Actor, filter entity.AppointmentFilter) ([]dto.AppointmentResponse, int64, error)
	ListPatientAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)
	UpdateAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error)
	RescheduleAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error)
	RateAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.RateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetStats(ctx context.Context, actor entity.Actor) (*dto.AppointmentStatsResponse, error)
	GetMeetingConfig(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.MeetingConfigResponse, error)
	GetDoctorDashboard(ctx context.Context, actor entity.Actor) (*dto.DoctorDashboardResponse, error)
	GetPatientDashboard(ctx context.Context, actor entity.Actor) (*dto.PatientDashboardResponse, error)
}

type appointmentUsecase struct {
	db                 *gorm.DB
	txm                repository.Transactor
	log                *logrus.Logger
	appointmentRepo    repository.AppointmentRepository
	doctorProfileRepo  repository.DoctorProfileRepository
	patientProfileRepo repository.PatientProfileRepository
	auditService       service.AuditService
	meetingService     *service.MeetingService
	notifier           service.Notifier
	metrics            *metrics.BookingMetrics
	loc                *time.Location
	notifyTimeout      time.Duration
	now                func() time.Time
}

func NewAppointmentUsecase(
	db *gorm.DB,
	txm repository.Transactor,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	patientProfileRepo repository.PatientProfileRepository,
	auditService service.AuditService,
	meetingService *service.MeetingService,
	notifier service.Notifier,
	bookingMetrics *metrics.BookingMetrics,
	cfg config.BookingConfig,
) AppointmentUsecase {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	notifyTimeout := cfg.NotifyTimeout
	if notifyTimeout <= 0 {
		notifyTimeout = 10 * time.Second
	}
	if notifier == nil {
		notifier = service.NoopNotifier{}
	}
	return &appointmentUsecase{
		db:                 db,
		txm:                txm,
		log:                log,
		appointmentRepo:    appointmentRepo,
		doctorProfileRepo:  doctorProfileRepo,
		patientProfileRepo: patientProfileRepo,
		auditService:       auditService,
		meetingService:     meetingService,
		notifier:           notifier,
		metrics:            bookingMetrics,
		loc:                loc,
		notifyTimeout:      notifyTimeout,
		now:                time.Now,
	}
}

// parseAppointmentDate accepts RFC 3339, or a bare date taken as midnight in loc.
func parseAppointmentDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidAppointmentDate
}

func bookingOutcome(err error) string {
	switch {
	case errors.Is(err, ErrSlotTaken):
		return metrics.OutcomeConflict
	case errors.Is(err, ErrDoctorNotFound), errors.Is(err, ErrPatientNotFound),
		errors.Is(err, ErrAppointmentInPast), errors.Is(err, ErrInvalidAppointmentDate):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}

// BookAppointment runs the booking guard: doctor exists, patient exists,
// date in the future, slot free. The unique index on active slots decides
// races; losing one yields ErrSlotTaken.
func (u *appointmentUsecase) BookAppointment(ctx context.Context, actor entity.Actor, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	ctx, span := appointmentTracer.Start(ctx, "appointment.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("doctor.id", req.DoctorID.String()),
		attribute.String("patient.id", actor.UserID.String()),
		attribute.String("appointment.time_slot", req.TimeSlot),
	)

	appointment, doctor, patient, err := u.book(ctx, actor, req)
	if err != nil {
		u.metrics.ObserveBooking(bookingOutcome(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	u.metrics.ObserveBooking(metrics.OutcomeBooked)
	span.SetAttributes(attribute.String("appointment.id", appointment.ID.String()))
	u.log.Infof("Booked appointment %s with doctor %s on %s %s", appointment.ID, doctor.UserID,
		appointment.AppointmentDay.Format("2006-01-02"), appointment.TimeSlot)

	appointment.Doctor = doctor
	appointment.Patient = patient
	u.sendConfirmation(ctx, appointment)

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) book(ctx context.Context, actor entity.Actor, req *dto.BookAppointmentRequest) (*entity.Appointment, *entity.DoctorProfile, *entity.PatientProfile, error) {
	date, err := parseAppointmentDate(req.AppointmentDate, u.loc)
	if err != nil {
		return nil, nil, nil, err
	}

	doctor, err := u.doctorProfileRepo.FindByUserID(ctx, u.db, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", req.DoctorID, err)
		return nil, nil, nil, err
	}
	if doctor == nil || !doctor.User.Active() {
		return nil, nil, nil, ErrDoctorNotFound
	}

	patient, err := u.patientProfileRepo.FindByUserID(ctx, u.db, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile %s: %+v", actor.UserID, err)
		return nil, nil, nil, err
	}
	if patient == nil {
		return nil, nil, nil, ErrPatientNotFound
	}

	if !date.After(u.now()) {
		return nil, nil, nil, ErrAppointmentInPast
	}

	day := entity.CalendarDay(date, u.loc)
	taken, err := u.appointmentRepo.ExistsActiveInSlot(ctx, u.db, doctor.UserID, day, req.TimeSlot)
	if err != nil {
		u.log.Warnf("Failed to check slot for doctor %s: %+v", doctor.UserID, err)
		return nil, nil, nil, err
	}
	if taken {
		return nil, nil, nil, ErrSlotTaken
	}

	consultationType := entity.ConsultationType(req.ConsultationType)
	if consultationType == "" {
		consultationType = entity.ConsultationVideo
	}

	appointment := &entity.Appointment{
		ID:               uuid.New(),
		DoctorID:         doctor.UserID,
		PatientID:        patient.UserID,
		AppointmentDate:  date,
		AppointmentDay:   day,
		TimeSlot:         req.TimeSlot,
		Status:           entity.AppointmentStatusScheduled,
		ConsultationType: consultationType,
		Symptoms:         req.Symptoms,
	}
	appointment.MeetingID, appointment.MeetingLink = u.meetingService.Room(appointment.ID)

	err = u.txm.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.appointmentRepo.Create(ctx, tx, appointment); err != nil {
			if database.IsUniqueViolation(err, entity.ActiveSlotConstraint) {
				return ErrSlotTaken
			}
			u.log.Warnf("Failed to create appointment: %+v", err)
			return err
		}

		if err := u.doctorProfileRepo.IncrementTotalPatients(ctx, tx, doctor.UserID); err != nil {
			u.log.Warnf("Failed to increment total patients for doctor %s: %+v", doctor.UserID, err)
			return err
		}

		if err := u.auditService.LogCreate(ctx, tx, &actor.UserID, entity.AuditActionAppointmentBook, "appointment", appointment.ID.String(), converter.AppointmentToResponse(appointment)); err != nil {
			u.log.Warnf("Failed to write audit log for appointment %s: %+v", appointment.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}

	doctor.TotalPatients++
	return appointment, doctor, patient, nil
}

func (u *appointmentUsecase) notice(appointment *entity.Appointment) service.AppointmentNotice {
	notice := service.AppointmentNotice{
		Date:        appointment.AppointmentDate.In(u.loc),
		TimeSlot:    appointment.TimeSlot,
		MeetingLink: appointment.MeetingLink,
	}
	if appointment.Doctor != nil {
		notice.DoctorName = appointment.Doctor.User.FullName
	}
	if appointment.Patient != nil {
		notice.PatientName = appointment.Patient.User.FullName
		notice.PatientPhone = appointment.Patient.User.Phone
		notice.PatientEmail = appointment.Patient.User.Email
	}
	return notice
}

// sendConfirmation is best effort: a failure is logged and the booking
// stands with notification_sent left false.
func (u *appointmentUsecase) sendConfirmation(ctx context.Context, appointment *entity.Appointment) {
	if _, noop := u.notifier.(service.NoopNotifier); noop {
		return
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.notifyTimeout)
	defer cancel()

	if err := u.notifier.SendAppointmentConfirmation(notifyCtx, u.notice(appointment)); err != nil {
		u.metrics.ObserveNotification("confirmation", u.notifier.Name(), metrics.NotificationFails)
		u.log.Warnf("Failed to send confirmation for appointment %s: %+v", appointment.ID, err)
		return
	}
	u.metrics.ObserveNotification("confirmation", u.notifier.Name(), metrics.NotificationSent)

	if err := u.appointmentRepo.MarkNotificationSent(notifyCtx, u.db, appointment.ID); err != nil {
		u.log.Warnf("Failed to mark notification sent for appointment %s: %+v", appointment.ID, err)
		return
	}
	appointment.NotificationSent = true
}

func (u *appointmentUsecase) sendCancellation(ctx context.Context, appointment *entity.Appointment) {
	if _, noop := u.notifier.(service.NoopNotifier); noop {
		return
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.notifyTimeout)
	defer cancel()

	if err := u.notifier.SendAppointmentCancellation(notifyCtx, u.notice(appointment)); err != nil {
		u.metrics.ObserveNotification("cancellation", u.notifier.Name(), metrics.NotificationFails)
		u.log.Warnf("Failed to send cancellation for appointment %s: %+v", appointment.ID, err)
		return
	}
	u.metrics.ObserveNotification("cancellation", u.notifier.Name(), metrics.NotificationSent)
}

func (u *appointmentUsecase) findForParticipant(ctx context.Context, actor entity.Actor, id uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.IsParticipant(actor) {
		return nil, ErrAppointmentForbidden
	}
	return appointment, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.findForParticipant(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) ListDoctorAppointments(ctx context.Context, actor entity.Actor, filter entity.AppointmentFilter) ([]dto.AppointmentResponse, int64, error) {
	appointments, total, err := u.appointmentRepo.FindByDoctor(ctx, u.db, actor.UserID, filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments for doctor %s: %+v", actor.UserID, err)
		return nil, 0, err
	}
	return converter.AppointmentsToResponses(appointments), total, nil
}

func (u *appointmentUsecase) ListPatientAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindByPatient(ctx, u.db, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to list appointments for patient %s: %+v", actor.UserID, err)
		return nil, err
	}
	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        int64(len(appointments)),
	}, nil
}

// transition moves the appointment to next if the status table allows it
// and the row has not changed since it was read.
func (u *appointmentUsecase) transition(ctx context.Context, tx *gorm.DB, appointment *entity.Appointment, next entity.AppointmentStatus) error {
	if !appointment.Status.CanTransitionTo(next) {
		return ErrInvalidStatusTransition
	}

	affected, err := u.appointmentRepo.UpdateStatus(ctx, tx, appointment.ID, next, appointment.Status)
	if err != nil {
		u.log.Warnf("Failed to update status of appointment %s: %+v", appointment.ID, err)
		return err
	}
	if affected == 0 {
		return ErrInvalidStatusTransition
	}

	appointment.Status = next
	u.metrics.ObserveStatusChange(string(next))
	return nil
}

// UpdateAppointment lets the doctor record status and clinical notes and
// the patient record symptoms. Fields outside the caller's role are ignored.
// A doctor setting status cancelled goes through the same release as
// CancelAppointment.
func (u *appointmentUsecase) UpdateAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.findForParticipant(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	cancelled := false
	oldValue := converter.AppointmentToResponse(appointment)
	err = u.txm.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if appointment.IsDoctor(actor) {
			if req.Status != nil {
				next := entity.AppointmentStatus(*req.Status)
				if next == entity.AppointmentStatusCancelled {
					if err := u.release(ctx, tx, actor, appointment, ""); err != nil {
						return err
					}
					cancelled = true
				} else if err := u.transition(ctx, tx, appointment, next); err != nil {
					return err
				}
			}
			if req.Diagnosis != nil {
				appointment.Diagnosis = *req.Diagnosis
			}
			if req.Prescription != nil {
				appointment.Prescription = converter.PrescriptionFromRequest(req.Prescription)
			}
			if req.ConsultationNotes != nil {
				appointment.ConsultationNotes = *req.ConsultationNotes
			}
		} else if req.Symptoms != nil {
			appointment.Symptoms = *req.Symptoms
		}

		if err := u.appointmentRepo.UpdateClinicalNotes(ctx, tx, appointment); err != nil {
			u.log.Warnf("Failed to update appointment %s: %+v", id, err)
			return err
		}

		if err := u.auditService.LogUpdate(ctx, tx, &actor.UserID, entity.AuditActionAppointmentUpdate, "appointment", id.String(), oldValue, converter.AppointmentToResponse(appointment)); err != nil {
			u.log.Warnf("Failed to write audit log for appointment %s: %+v", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cancelled {
		u.sendCancellation(ctx, appointment)
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) UpdateStatus(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.findForParticipant(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !appointment.IsDoctor(actor) {
		return nil, ErrAppointmentForbidden
	}

	previous := appointment.Status
	next := entity.AppointmentStatus(req.Status)
	err = u.txm.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if next == entity.AppointmentStatusCancelled {
			return u.release(ctx, tx, actor, appointment, "")
		}
		if err := u.transition(ctx, tx, appointment, next); err != nil {
			return err
		}
		if err := u.auditService.LogUpdate(ctx, tx, &actor.UserID, entity.AuditActionAppointmentStatus, "appointment", id.String(),
			map[string]interface{}{"status": previous}, map[string]interface{}{"status": next}); err != nil {
			u.log.Warnf("Failed to write audit log for appointment %s: %+v", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Appointment %s moved from %s to %s", id, previous, next)
	if next == entity.AppointmentStatusCancelled {
		u.sendCancellation(ctx, appointment)
	}
	return converter.AppointmentToResponse(appointment), nil
}

// release cancels the appointment inside tx. The update is conditional on a
// cancellable status, so a concurrent cancel or completion makes it fail.
func (u *appointmentUsecase) release(ctx context.Context, tx *gorm.DB, actor entity.Actor, appointment *entity.Appointment, reason string) error {
	if !appointment.Status.CanCancel() {
		return ErrAppointmentNotCancellable
	}

	affected, err := u.appointmentRepo.UpdateStatus(ctx, tx, appointment.ID, entity.AppointmentStatusCancelled, entity.CancellableStatuses()...)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", appointment.ID, err)
		return err
	}
	if affected == 0 {
		return ErrAppointmentNotCancellable
	}

	if err := u.auditService.LogUpdate(ctx, tx, &actor.UserID, entity.AuditActionAppointmentCancel, "appointment", appointment.ID.String(),
		map[string]interface{}{"status": appointment.Status},
		map[string]interface{}{"status": entity.AppointmentStatusCancelled, "reason": reason}); err != nil {
		u.log.Warnf("Failed to write audit log for appointment %s: %+v", appointment.ID, err)
	}

	appointment.Status = entity.AppointmentStatusCancelled
	u.metrics.ObserveStatusChange(string(entity.AppointmentStatusCancelled))
	return nil
}

// CancelAppointment releases the slot. Completed or already cancelled
// appointments are rejected, including when a concurrent cancel wins.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error) {
	ctx, span := appointmentTracer.Start(ctx, "appointment.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id.String()))

	appointment, err := u.findForParticipant(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	reason := ""
	if req != nil {
		reason = req.Reason
	}

	err = u.txm.WithinTransaction(ctx, func(tx *gorm.DB) error {
		return u.release(ctx, tx, actor, appointment, reason)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	u.log.Infof("Appointment %s cancelled by %s", id, actor.UserID)
	u.sendCancellation(ctx, appointment)

	return converter.AppointmentToResponse(appointment), nil
}

// RescheduleAppointment moves an active appointment to a new future date
// and window. The move is subject to the same slot uniqueness as booking.
func (u *appointmentUsecase) RescheduleAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error) {
	ctx, span := appointmentTracer.Start(ctx, "appointment.reschedule")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id.String()), attribute.String("appointment.time_slot", req.TimeSlot))

	appointment, err := u.findForParticipant(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !appointment.Status.IsActive() {
		return nil, ErrAppointmentNotActive
	}

	date, err := parseAppointmentDate(req.AppointmentDate, u.loc)
	if err != nil {
		return nil, err
	}
	if !date.After(u.now()) {
		return nil, ErrAppointmentInPast
	}

	day := entity.CalendarDay(date, u.loc)
	sameSlot := day.Equal(appointment.AppointmentDay) && req.TimeSlot == appointment.TimeSlot
	if !sameSlot {
		taken, err := u.appointmentRepo.ExistsActiveInSlot(ctx, u.db, appointment.DoctorID, day, req.TimeSlot)
		if err != nil {
			u.log.Warnf("Failed to check slot for doctor %s: %+v", appointment.DoctorID, err)
			return nil, err
		}
		if taken {
			return nil, ErrSlotTaken
		}
	}

	oldValue := map[string]interface{}{
		"appointment_date": appointment.AppointmentDate,
		"time_slot":        appointment.TimeSlot,
	}
	err = u.txm.WithinTransaction(ctx, func(tx *gorm.DB) error {
		affected, err := u.appointmentRepo.UpdateSlot(ctx, tx, id, date, day, req.TimeSlot)
		if err != nil {
			if database.IsUniqueViolation(err, entity.ActiveSlotConstraint) {
				return ErrSlotTaken
			}
			u.log.Warnf("Failed to reschedule appointment %s: %+v", id, err)
			return err
		}
		if affected == 0 {
			return ErrAppointmentNotActive
		}

		if err := u.auditService.LogUpdate(ctx, tx, &actor.UserID, entity.AuditActionAppointmentReschedule, "appointment", id.String(), oldValue,
			map[string]interface{}{"appointment_date": date, "time_slot": req.TimeSlot}); err != nil {
			u.log.Warnf("Failed to write audit log for appointment %s: %+v", id, err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	appointment.AppointmentDate = date
	appointment.AppointmentDay = day
	appointment.TimeSlot = req.TimeSlot
	u.log.Infof("Appointment %s rescheduled to %s %s", id, day.Format("2006-01-02"), req.TimeSlot)

	return converter.AppointmentToResponse(appointment), nil
}

func roundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// RateAppointment stores the patient's score and recomputes the doctor's
// rating as the mean of all rated completed appointments.
func (u *appointmentUsecase) RateAppointment(ctx context.Context, actor entity.Actor, id uuid.UUID, req *dto.RateAppointmentRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.findForParticipant(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !appointment.IsPatient(actor) {
		return nil, ErrAppointmentForbidden
	}
	if appointment.Status != entity.AppointmentStatusCompleted {
		return nil, ErrAppointmentNotRateable
	}

	err = u.txm.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.appointmentRepo.UpdateRating(ctx, tx, id, req.Score, req.Feedback); err != nil {
			u.log.Warnf("Failed to rate appointment %s: %+v", id, err)
			return err
		}

		average, _, err := u.appointmentRepo.AverageRatingForDoctor(ctx, tx, appointment.DoctorID)
		if err != nil {
			u.log.Warnf("Failed to average ratings for doctor %s: %+v", appointment.DoctorID, err)
			return err
		}
		if err := u.doctorProfileRepo.UpdateRating(ctx, tx, appointment.DoctorID, roundRating(average)); err != nil {
			u.log.Warnf("Failed to update rating for doctor %s: %+v", appointment.DoctorID, err)
			return err
		}

		if err := u.auditService.LogCreate(ctx, tx, &actor.UserID, entity.AuditActionAppointmentRate, "appointment", id.String(),
			map[string]interface{}{"score": req.Score, "feedback": req.Feedback}); err != nil {
			u.log.Warnf("Failed to write audit log for appointment %s: %+v", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	score := req.Score
	appointment.RatingScore = &score
	appointment.RatingFeedback = req.Feedback
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) GetStats(ctx context.Context, actor entity.Actor) (*dto.AppointmentStatsResponse, error) {
	counts, err := u.appointmentRepo.CountByStatus(ctx, u.db, entity.OwnerOf(actor))
	if err != nil {
		u.log.Warnf("Failed to count appointments for %s: %+v", actor.UserID, err)
		return nil, err
	}
	return converter.StatusCountsToStats(counts), nil
}

// GetMeetingConfig returns the video room of an active appointment to one
// of its participants. Rows booked without a room get one derived from the id.
func (u *appointmentUsecase) GetMeetingConfig(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.MeetingConfigResponse, error) {
	appointment, err := u.findForParticipant(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !appointment.Status.IsActive() {
		return nil, ErrMeetingUnavailable
	}

	meetingID := appointment.MeetingID
	if meetingID == "" {
		meetingID = "HealthChat-" + id.String()
	}
	cfg := u.meetingService.Config(meetingID, appointment.MeetingLink)
	return &dto.MeetingConfigResponse{
		AppointmentID: id,
		RoomName:      cfg.RoomName,
		Domain:        cfg.Domain,
		MeetingLink:   cfg.MeetingLink,
	}, nil
}

func (u *appointmentUsecase) GetDoctorDashboard(ctx context.Context, actor entity.Actor) (*dto.DoctorDashboardResponse, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(ctx, u.db, actor.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	owner := entity.OwnerOf(actor)
	now := u.now()
	counts, err := u.appointmentRepo.CountByStatus(ctx, u.db, owner)
	if err != nil {
		u.log.Warnf("Failed to count appointments for %s: %+v", actor.UserID, err)
		return nil, err
	}
	today, err := u.appointmentRepo.CountOnDay(ctx, u.db, owner, entity.CalendarDay(now, u.loc))
	if err != nil {
		return nil, err
	}
	upcoming, err := u.appointmentRepo.CountUpcoming(ctx, u.db, owner, now)
	if err != nil {
		return nil, err
	}
	recent, err := u.appointmentRepo.FindRecent(ctx, u.db, owner, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}

	return &dto.DoctorDashboardResponse{
		Doctor: converter.DoctorProfileToResponse(profile),
		Statistics: dto.DoctorDashboardStats{
			TotalAppointments:    converter.StatusCountsToStats(counts).Total,
			TodayAppointments:    today,
			UpcomingAppointments: upcoming,
		},
		RecentAppointments: converter.AppointmentsToResponses(recent),
	}, nil
}

// GetPatientDashboard also recommends the top rated doctors.
func (u *appointmentUsecase) GetPatientDashboard(ctx context.Context, actor entity.Actor) (*dto.PatientDashboardResponse, error) {
	profile, err := u.patientProfileRepo.FindByUserID(ctx, u.db, actor.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}

	owner := entity.OwnerOf(actor)
	counts, err := u.appointmentRepo.CountByStatus(ctx, u.db, owner)
	if err != nil {
		u.log.Warnf("Failed to count appointments for %s: %+v", actor.UserID, err)
		return nil, err
	}
	upcoming, err := u.appointmentRepo.CountUpcoming(ctx, u.db, owner, u.now())
	if err != nil {
		return nil, err
	}
	recent, err := u.appointmentRepo.FindRecent(ctx, u.db, owner, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}
	doctors, _, err := u.doctorProfileRepo.FindAll(ctx, u.db, entity.DoctorFilter{
		Page: entity.Page{Page: 1, Limit: dashboardRecommendedLimit},
	})
	if err != nil {
		u.log.Warnf("Failed to load recommended doctors: %+v", err)
		return nil, err
	}

	stats := converter.StatusCountsToStats(counts)
	return &dto.PatientDashboardResponse{
		Patient: converter.PatientProfileToResponse(profile),
		Statistics: dto.PatientDashboardStats{
			TotalAppointments:     stats.Total,
			UpcomingAppointments:  upcoming,
			CompletedAppointments: stats.Completed,
		},
		RecentAppointments: converter.AppointmentsToResponses(recent),
		RecommendedDoctors: converter.DoctorProfilesToResponses(doctors),
	}, nil
}
