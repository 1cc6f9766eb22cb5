package usecase

import (
	"context"
	"errors"
	"time"

	"telehealth-booking/internal/delivery/dto"
	"telehealth-booking/internal/domain/entity"
	"telehealth-booking/internal/domain/repository"
	"telehealth-booking/internal/observability/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

var availabilityTracer = otel.Tracer("telehealth-booking/internal/usecase/availability")

var (
	ErrInvalidDate = errors.New("invalid date, use YYYY-MM-DD")
)

type AvailabilityUsecase interface {
	GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailableSlotsResponse, error)
}

type availabilityUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	doctorProfileRepo repository.DoctorProfileRepository
	appointmentRepo   repository.AppointmentRepository
	metrics           *metrics.BookingMetrics
	loc               *time.Location
}

func NewAvailabilityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorProfileRepo repository.DoctorProfileRepository,
	appointmentRepo repository.AppointmentRepository,
	bookingMetrics *metrics.BookingMetrics,
	loc *time.Location,
) AvailabilityUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &availabilityUsecase{
		db:                db,
		log:               log,
		doctorProfileRepo: doctorProfileRepo,
		appointmentRepo:   appointmentRepo,
		metrics:           bookingMetrics,
		loc:               loc,
	}
}

// GetAvailableSlots lists the doctor's template windows on date that no
// active appointment holds. A day outside the template yields an empty list.
// It is read-only, so two calls with no writes in between agree.
func (u *availabilityUsecase) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailableSlotsResponse, error) {
	ctx, span := availabilityTracer.Start(ctx, "availability.resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("doctor.id", doctorID.String()),
		attribute.String("availability.date", date),
	)

	start := time.Now()
	defer func() { u.metrics.ObserveResolve(time.Since(start)) }()

	day, err := time.ParseInLocation("2006-01-02", date, u.loc)
	if err != nil {
		return nil, ErrInvalidDate
	}

	doctor, err := u.doctorProfileRepo.FindByUserID(ctx, u.db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", doctorID, err)
		span.RecordError(err)
		return nil, err
	}
	if doctor == nil || !doctor.User.Active() {
		return nil, ErrDoctorNotFound
	}

	weekday := day.Weekday()
	response := &dto.AvailableSlotsResponse{
		DoctorID:       doctorID,
		Date:           day.Format("2006-01-02"),
		Day:            weekday.String(),
		AvailableSlots: []string{},
	}

	if !doctor.Availability.WorksOn(weekday) {
		return response, nil
	}

	booked, err := u.appointmentRepo.FindByDoctorAndDay(ctx, u.db, doctorID, entity.CalendarDay(day, u.loc))
	if err != nil {
		u.log.Warnf("Failed to load appointments for doctor %s on %s: %+v", doctorID, response.Date, err)
		span.RecordError(err)
		return nil, err
	}

	response.AvailableSlots = doctor.Availability.OpenWindows(weekday, booked)
	span.SetAttributes(attribute.Int("availability.open", len(response.AvailableSlots)))
	return response, nil
}
