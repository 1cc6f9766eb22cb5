package repository

import (
	"context"

	"telehealth-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorProfileRepository interface {
	Create(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error)
	FindAll(ctx context.Context, db *gorm.DB, filter entity.DoctorFilter) ([]entity.DoctorProfile, int64, error)
	Update(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error
	IncrementTotalPatients(ctx context.Context, db *gorm.DB, userID uuid.UUID) error
	UpdateRating(ctx context.Context, db *gorm.DB, userID uuid.UUID, rating float64) error
}
