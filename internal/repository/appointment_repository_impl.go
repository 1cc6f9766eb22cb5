package repository

import (
	"context"
	"errors"
	"time"

	"telehealth-booking/internal/domain/entity"
	domainRepo "telehealth-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

// Create inserts the appointment. A unique violation on
// entity.ActiveSlotConstraint is returned as-is for the caller to translate.
func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Preload("Doctor.User").
		Preload("Patient.User").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) ExistsActiveInSlot(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, day time.Time, timeSlot string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("doctor_id = ? AND appointment_day = ? AND time_slot = ? AND status IN ?",
			doctorID, day, timeSlot, entity.ActiveStatuses()).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByDoctorAndDay returns the active appointments of a doctor on one
// calendar day.
func (r *appointmentRepository) FindByDoctorAndDay(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, day time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.WithContext(ctx).
		Where("doctor_id = ? AND appointment_day = ? AND status IN ?", doctorID, day, entity.ActiveStatuses()).
		Order("time_slot ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByDoctor(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	page := filter.Page.Normalize()

	scoped := func() *gorm.DB {
		query := db.WithContext(ctx).Model(&entity.Appointment{}).Where("doctor_id = ?", doctorID)
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var appointments []entity.Appointment
	err := scoped().
		Preload("Patient.User").
		Order("appointment_date ASC, time_slot ASC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&appointments).Error
	if err != nil {
		return nil, 0, err
	}
	return appointments, total, nil
}

func (r *appointmentRepository) FindByPatient(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.WithContext(ctx).
		Preload("Doctor.User").
		Where("patient_id = ?", patientID).
		Order("appointment_date DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

var errOwnerRequired = errors.New("appointment owner is required")

func ownedBy(query *gorm.DB, owner entity.AppointmentOwner) (*gorm.DB, error) {
	switch {
	case owner.DoctorID != nil:
		return query.Where("doctor_id = ?", *owner.DoctorID), nil
	case owner.PatientID != nil:
		return query.Where("patient_id = ?", *owner.PatientID), nil
	default:
		return nil, errOwnerRequired
	}
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, db *gorm.DB, owner entity.AppointmentOwner) ([]entity.StatusCount, error) {
	query, err := ownedBy(db.WithContext(ctx).Model(&entity.Appointment{}).Select("status, COUNT(*) AS count"), owner)
	if err != nil {
		return nil, err
	}

	var counts []entity.StatusCount
	if err := query.Group("status").Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *appointmentRepository) CountUpcoming(ctx context.Context, db *gorm.DB, owner entity.AppointmentOwner, since time.Time) (int64, error) {
	query, err := ownedBy(db.WithContext(ctx).Model(&entity.Appointment{}), owner)
	if err != nil {
		return 0, err
	}

	var count int64
	err = query.Where("status = ? AND appointment_date >= ?", entity.AppointmentStatusScheduled, since).
		Count(&count).Error
	return count, err
}

// CountOnDay counts appointments of any status on one calendar day.
func (r *appointmentRepository) CountOnDay(ctx context.Context, db *gorm.DB, owner entity.AppointmentOwner, day time.Time) (int64, error) {
	query, err := ownedBy(db.WithContext(ctx).Model(&entity.Appointment{}), owner)
	if err != nil {
		return 0, err
	}

	var count int64
	err = query.Where("appointment_day = ?", day).Count(&count).Error
	return count, err
}

func (r *appointmentRepository) FindRecent(ctx context.Context, db *gorm.DB, owner entity.AppointmentOwner, limit int) ([]entity.Appointment, error) {
	query, err := ownedBy(db.WithContext(ctx), owner)
	if err != nil {
		return nil, err
	}

	var appointments []entity.Appointment
	err = query.
		Preload("Doctor.User").
		Preload("Patient.User").
		Order("appointment_date DESC").
		Limit(limit).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// UpdateStatus sets the status only while the row is still in one of from.
// Returns affected rows: 0 means the row moved on concurrently (or does not
// exist), which callers treat as a rejected transition.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, to entity.AppointmentStatus, from ...entity.AppointmentStatus) (int64, error) {
	query := db.WithContext(ctx).Model(&entity.Appointment{}).Where("id = ?", id)
	if len(from) > 0 {
		query = query.Where("status IN ?", from)
	}
	result := query.Update("status", to)
	return result.RowsAffected, result.Error
}

// UpdateSlot moves an active appointment. Moving onto a held slot fails with
// a unique violation on entity.ActiveSlotConstraint.
func (r *appointmentRepository) UpdateSlot(ctx context.Context, db *gorm.DB, id uuid.UUID, date, day time.Time, timeSlot string) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status IN ?", id, entity.ActiveStatuses()).
		Updates(map[string]interface{}{
			"appointment_date": date,
			"appointment_day":  day,
			"time_slot":        timeSlot,
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) UpdateClinicalNotes(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	return db.WithContext(ctx).Model(appointment).
		Select("symptoms", "diagnosis", "prescription", "consultation_notes").
		Updates(appointment).Error
}

func (r *appointmentRepository) UpdateRating(ctx context.Context, db *gorm.DB, id uuid.UUID, score int, feedback string) error {
	return db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating_score":    score,
			"rating_feedback": feedback,
		}).Error
}

// AverageRatingForDoctor averages the scores of rated, completed
// appointments. It returns the average and the number of ratings.
func (r *appointmentRepository) AverageRatingForDoctor(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) (float64, int64, error) {
	var result struct {
		Average float64
		Total   int64
	}
	err := db.WithContext(ctx).Model(&entity.Appointment{}).
		Select("COALESCE(AVG(rating_score), 0) AS average, COUNT(rating_score) AS total").
		Where("doctor_id = ? AND status = ? AND rating_score IS NOT NULL", doctorID, entity.AppointmentStatusCompleted).
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	return result.Average, result.Total, nil
}

func (r *appointmentRepository) MarkNotificationSent(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ?", id).
		Update("notification_sent", true).Error
}
