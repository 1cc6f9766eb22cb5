package usecase

import (
	"context"
	"errors"
	"strings"

	"telehealth-booking/internal/converter"
	"telehealth-booking/internal/delivery/dto"
	"telehealth-booking/internal/domain/entity"
	"telehealth-booking/internal/domain/repository"
	"telehealth-booking/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound = errors.New("doctor not found")
)

type DoctorProfileUsecase interface {
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	ListDoctors(ctx context.Context, filter entity.DoctorFilter) ([]dto.DoctorResponse, int64, error)
	GetSelfProfile(ctx context.Context, actor entity.Actor) (*dto.DoctorResponse, error)
	UpdateSelfProfile(ctx context.Context, actor entity.Actor, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorResponse, error)
}

type doctorProfileUsecase struct {
	db                *gorm.DB
	txm               repository.Transactor
	log               *logrus.Logger
	userRepo          repository.UserRepository
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
}

func NewDoctorProfileUsecase(
	db *gorm.DB,
	txm repository.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		db:                db,
		txm:               txm,
		log:               log,
		userRepo:          userRepo,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
	}
}

func (u *doctorProfileUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(ctx, u.db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil || !profile.User.Active() {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) ListDoctors(ctx context.Context, filter entity.DoctorFilter) ([]dto.DoctorResponse, int64, error) {
	profiles, total, err := u.doctorProfileRepo.FindAll(ctx, u.db, filter)
	if err != nil {
		u.log.Warnf("Failed to list doctor profiles: %+v", err)
		return nil, 0, err
	}

	return converter.DoctorProfilesToResponses(profiles), total, nil
}

func (u *doctorProfileUsecase) GetSelfProfile(ctx context.Context, actor entity.Actor) (*dto.DoctorResponse, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(ctx, u.db, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", actor.UserID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorProfileToResponse(profile), nil
}

// UpdateSelfProfile applies the non-nil fields of req. Replacing the
// availability template never touches existing appointments.
func (u *doctorProfileUsecase) UpdateSelfProfile(ctx context.Context, actor entity.Actor, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorResponse, error) {
	if req.Specialization != nil && !isKnownSpecialization(*req.Specialization) {
		return nil, ErrInvalidSpecialization
	}

	var result *dto.DoctorResponse
	err := u.txm.WithinTransaction(ctx, func(tx *gorm.DB) error {
		profile, err := u.doctorProfileRepo.FindByUserID(ctx, tx, actor.UserID)
		if err != nil {
			u.log.Warnf("Failed to find doctor profile %s: %+v", actor.UserID, err)
			return err
		}
		if profile == nil {
			return ErrDoctorNotFound
		}

		oldValue := converter.DoctorProfileToResponse(profile)

		userChanged, err := applyPasswordChange(&profile.User, req.OldPassword, req.NewPassword)
		if err != nil {
			return err
		}
		if req.FullName != nil {
			profile.User.FullName = strings.TrimSpace(*req.FullName)
			userChanged = true
		}
		if req.Phone != nil {
			profile.User.Phone = strings.TrimSpace(*req.Phone)
			userChanged = true
		}
		if userChanged {
			if err := u.userRepo.Update(ctx, tx, &profile.User); err != nil {
				u.log.Warnf("Failed to update user %s: %+v", actor.UserID, err)
				return err
			}
		}

		if req.Specialization != nil {
			profile.Specialization = *req.Specialization
		}
		if req.Experience != nil {
			profile.Experience = *req.Experience
		}
		if req.Qualifications != nil {
			profile.Qualifications = *req.Qualifications
		}
		if req.Biography != nil {
			profile.Biography = *req.Biography
		}
		if req.ConsultationFee != nil {
			profile.ConsultationFee = decimal.NewFromFloat(*req.ConsultationFee).Round(2)
		}
		action := entity.AuditActionProfileUpdate
		if req.Availability != nil {
			profile.Availability = converter.AvailabilityFromRequest(req.Availability)
			action = entity.AuditActionAvailabilityUpdate
		}

		if err := u.doctorProfileRepo.Update(ctx, tx, profile); err != nil {
			u.log.Warnf("Failed to update doctor profile %s: %+v", actor.UserID, err)
			return err
		}

		result = converter.DoctorProfileToResponse(profile)
		if err := u.auditService.LogUpdate(ctx, tx, &actor.UserID, action, "doctor_profile", actor.UserID.String(), oldValue, result); err != nil {
			u.log.Warnf("Failed to write audit log for doctor profile %s: %+v", actor.UserID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
