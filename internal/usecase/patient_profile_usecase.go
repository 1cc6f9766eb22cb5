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

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
)

type PatientProfileUsecase interface {
	GetSelfProfile(ctx context.Context, actor entity.Actor) (*dto.PatientResponse, error)
	UpdateSelfProfile(ctx context.Context, actor entity.Actor, req *dto.UpdatePatientProfileRequest) (*dto.PatientResponse, error)
}

type patientProfileUsecase struct {
	db                 *gorm.DB
	txm                repository.Transactor
	log                *logrus.Logger
	userRepo           repository.UserRepository
	patientProfileRepo repository.PatientProfileRepository
	auditService       service.AuditService
}

func NewPatientProfileUsecase(
	db *gorm.DB,
	txm repository.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	patientProfileRepo repository.PatientProfileRepository,
	auditService service.AuditService,
) PatientProfileUsecase {
	return &patientProfileUsecase{
		db:                 db,
		txm:                txm,
		log:                log,
		userRepo:           userRepo,
		patientProfileRepo: patientProfileRepo,
		auditService:       auditService,
	}
}

func (u *patientProfileUsecase) GetSelfProfile(ctx context.Context, actor entity.Actor) (*dto.PatientResponse, error) {
	profile, err := u.patientProfileRepo.FindByUserID(ctx, u.db, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile %s: %+v", actor.UserID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientProfileToResponse(profile), nil
}

func (u *patientProfileUsecase) UpdateSelfProfile(ctx context.Context, actor entity.Actor, req *dto.UpdatePatientProfileRequest) (*dto.PatientResponse, error) {
	var result *dto.PatientResponse
	err := u.txm.WithinTransaction(ctx, func(tx *gorm.DB) error {
		profile, err := u.patientProfileRepo.FindByUserID(ctx, tx, actor.UserID)
		if err != nil {
			u.log.Warnf("Failed to find patient profile %s: %+v", actor.UserID, err)
			return err
		}
		if profile == nil {
			return ErrPatientNotFound
		}

		oldValue := converter.PatientProfileToResponse(profile)

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

		if req.Age != nil {
			profile.Age = *req.Age
		}
		if req.Gender != nil {
			profile.Gender = *req.Gender
		}
		if req.BloodGroup != nil {
			profile.BloodGroup = *req.BloodGroup
		}
		if req.Address != nil {
			profile.Address = *req.Address
		}
		if req.EmergencyContact != nil {
			profile.EmergencyContact = *req.EmergencyContact
		}

		if err := u.patientProfileRepo.Update(ctx, tx, profile); err != nil {
			u.log.Warnf("Failed to update patient profile %s: %+v", actor.UserID, err)
			return err
		}

		result = converter.PatientProfileToResponse(profile)
		if err := u.auditService.LogUpdate(ctx, tx, &actor.UserID, entity.AuditActionProfileUpdate, "patient_profile", actor.UserID.String(), oldValue, result); err != nil {
			u.log.Warnf("Failed to write audit log for patient profile %s: %+v", actor.UserID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
