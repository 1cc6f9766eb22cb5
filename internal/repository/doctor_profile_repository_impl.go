package repository

import (
	"context"
	"errors"

	"telehealth-booking/internal/domain/entity"
	domainRepo "telehealth-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

func (r *doctorProfileRepository) Create(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error
}

func (r *doctorProfileRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// FindAll lists doctors with an active account, best rated first.
func (r *doctorProfileRepository) FindAll(ctx context.Context, db *gorm.DB, filter entity.DoctorFilter) ([]entity.DoctorProfile, int64, error) {
	page := filter.Page.Normalize()

	scoped := func() *gorm.DB {
		query := db.WithContext(ctx).Model(&entity.DoctorProfile{}).
			Joins("JOIN users ON users.id = doctor_profiles.user_id").
			Where("users.is_active = ?", true)
		if filter.Specialization != "" {
			query = query.Where("doctor_profiles.specialization = ?", filter.Specialization)
		}
		if filter.Search != "" {
			query = query.Where("users.full_name ILIKE ?", "%"+filter.Search+"%")
		}
		if filter.MinRating != nil {
			query = query.Where("doctor_profiles.rating >= ?", *filter.MinRating)
		}
		if filter.MaxFee != nil {
			query = query.Where("doctor_profiles.consultation_fee <= ?", *filter.MaxFee)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []entity.DoctorProfile
	err := scoped().Preload("User").
		Order("doctor_profiles.rating DESC, doctor_profiles.total_patients DESC, users.full_name ASC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *doctorProfileRepository) Update(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.WithContext(ctx).Omit(clause.Associations).Save(profile).Error
}

func (r *doctorProfileRepository) IncrementTotalPatients(ctx context.Context, db *gorm.DB, userID uuid.UUID) error {
	return db.WithContext(ctx).Model(&entity.DoctorProfile{}).
		Where("user_id = ?", userID).
		UpdateColumn("total_patients", gorm.Expr("total_patients + ?", 1)).Error
}

func (r *doctorProfileRepository) UpdateRating(ctx context.Context, db *gorm.DB, userID uuid.UUID, rating float64) error {
	return db.WithContext(ctx).Model(&entity.DoctorProfile{}).
		Where("user_id = ?", userID).
		UpdateColumn("rating", rating).Error
}
