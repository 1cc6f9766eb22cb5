package repository

import (
	"context"
	"time"

	"telehealth-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentRepository is the reservation store. Finders return nil, nil
// when nothing matches. Conditional updates return the number of rows
// changed so callers can detect a lost race.
type AppointmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)

	// ExistsActiveInSlot is advisory; the unique index is authoritative.
	ExistsActiveInSlot(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, day time.Time, timeSlot string) (bool, error)
	FindByDoctorAndDay(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, day time.Time) ([]entity.Appointment, error)
	FindByDoctor(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error)
	FindByPatient(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)
	CountByStatus(ctx context.Context, db *gorm.DB, owner entity.AppointmentOwner) ([]entity.StatusCount, error)
	// CountUpcoming counts scheduled appointments starting at or after since.
	CountUpcoming(ctx context.Context, db *gorm.DB, owner entity.AppointmentOwner, since time.Time) (int64, error)
	CountOnDay(ctx context.Context, db *gorm.DB, owner entity.AppointmentOwner, day time.Time) (int64, error)
	// FindRecent returns the latest appointments by appointment date.
	FindRecent(ctx context.Context, db *gorm.DB, owner entity.AppointmentOwner, limit int) ([]entity.Appointment, error)

	UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, to entity.AppointmentStatus, from ...entity.AppointmentStatus) (int64, error)
	UpdateSlot(ctx context.Context, db *gorm.DB, id uuid.UUID, date, day time.Time, timeSlot string) (int64, error)
	UpdateClinicalNotes(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	UpdateRating(ctx context.Context, db *gorm.DB, id uuid.UUID, score int, feedback string) error
	AverageRatingForDoctor(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) (float64, int64, error)
	MarkNotificationSent(ctx context.Context, db *gorm.DB, id uuid.UUID) error
}
