package usecase

import (
	"context"
	"errors"
	"strings"

	"telehealth-booking/internal/converter"
	"telehealth-booking/internal/delivery/dto"
	"telehealth-booking/internal/domain/entity"
	"telehealth-booking/internal/domain/repository"
	"telehealth-booking/internal/infrastructure/cache"
	"telehealth-booking/internal/infrastructure/database"
	"telehealth-booking/internal/service"
	"telehealth-booking/pkg/jwt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrTokenRevoked          = errors.New("token has been revoked")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserInactive          = errors.New("account is deactivated")
	ErrRoleNotFound          = errors.New("role not found")
	ErrLicenseAlreadyExists  = errors.New("license number already exists")
	ErrInvalidSpecialization = errors.New("unknown specialization")
)

type AuthUsecase interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error)
	RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type authUsecase struct {
	db                 *gorm.DB
	txm                repository.Transactor
	log                *logrus.Logger
	userRepo           repository.UserRepository
	roleRepo           repository.RoleRepository
	doctorProfileRepo  repository.DoctorProfileRepository
	patientProfileRepo repository.PatientProfileRepository
	auditService       service.AuditService
	jwtService         *jwt.JWTService
	tokenStore         *cache.TokenStore
}

func NewAuthUsecase(
	db *gorm.DB,
	txm repository.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	patientProfileRepo repository.PatientProfileRepository,
	auditService service.AuditService,
	jwtService *jwt.JWTService,
	tokenStore *cache.TokenStore,
) AuthUsecase {
	return &authUsecase{
		db:                 db,
		txm:                txm,
		log:                log,
		userRepo:           userRepo,
		roleRepo:           roleRepo,
		doctorProfileRepo:  doctorProfileRepo,
		patientProfileRepo: patientProfileRepo,
		auditService:       auditService,
		jwtService:         jwtService,
		tokenStore:         tokenStore,
	}
}

// createUser inserts the login record for roleName inside tx.
func (u *authUsecase) createUser(ctx context.Context, tx *gorm.DB, roleName, email, password, fullName, phone string) (*entity.User, error) {
	role, err := u.roleRepo.FindByName(ctx, tx, roleName)
	if err != nil {
		u.log.Warnf("Failed to find role %s: %+v", roleName, err)
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	active := true
	user := &entity.User{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: string(hashedPassword),
		FullName: strings.TrimSpace(fullName),
		Phone:    strings.TrimSpace(phone),
		RoleID:   role.ID,
		IsActive: &active,
		Role:     *role,
	}

	if err := u.userRepo.Create(ctx, tx, user); err != nil {
		if database.IsUniqueViolation(err, "idx_users_email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(), map[string]interface{}{
		"email": user.Email,
		"role":  roleName,
	}); err != nil {
		u.log.Warnf("Failed to write audit log for registration of %s: %+v", user.ID, err)
	}

	return user, nil
}

func (u *authUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error) {
	var user *entity.User
	err := u.txm.WithinTransaction(ctx, func(tx *gorm.DB) error {
		created, err := u.createUser(ctx, tx, entity.RolePatient, req.Email, req.Password, req.FullName, req.Phone)
		if err != nil {
			return err
		}

		profile := &entity.PatientProfile{
			UserID:           created.ID,
			Age:              req.Age,
			Gender:           req.Gender,
			BloodGroup:       req.BloodGroup,
			Address:          req.Address,
			EmergencyContact: req.EmergencyContact,
		}
		if err := u.patientProfileRepo.Create(ctx, tx, profile); err != nil {
			u.log.Warnf("Failed to create patient profile: %+v", err)
			return err
		}

		created.PatientProfile = profile
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Registered patient %s", user.ID)
	return converter.UserToResponse(user), nil
}

func (u *authUsecase) RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*dto.UserResponse, error) {
	if !isKnownSpecialization(req.Specialization) {
		return nil, ErrInvalidSpecialization
	}

	var user *entity.User
	err := u.txm.WithinTransaction(ctx, func(tx *gorm.DB) error {
		created, err := u.createUser(ctx, tx, entity.RoleDoctor, req.Email, req.Password, req.FullName, req.Phone)
		if err != nil {
			return err
		}

		profile := &entity.DoctorProfile{
			UserID:          created.ID,
			LicenseNumber:   strings.TrimSpace(req.LicenseNumber),
			Specialization:  req.Specialization,
			Experience:      req.Experience,
			Qualifications:  req.Qualifications,
			Biography:       req.Biography,
			ConsultationFee: decimal.NewFromFloat(req.ConsultationFee).Round(2),
			Availability:    converter.AvailabilityFromRequest(req.Availability),
		}
		if err := u.doctorProfileRepo.Create(ctx, tx, profile); err != nil {
			if database.IsUniqueViolation(err, "idx_doctor_profiles_license_number") {
				return ErrLicenseAlreadyExists
			}
			u.log.Warnf("Failed to create doctor profile: %+v", err)
			return err
		}

		created.DoctorProfile = profile
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Registered doctor %s", user.ID)
	return converter.UserToResponse(user), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, u.db, strings.TrimSpace(req.Email))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active() {
		return nil, ErrUserInactive
	}

	return u.issueTokens(ctx, jwt.Subject{UserID: user.ID, Email: user.Email, RoleID: user.RoleID})
}

// Logout revokes every token issued to the user.
func (u *authUsecase) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := u.tokenStore.RevokeAll(ctx, userID); err != nil {
		u.log.Warnf("Failed to revoke tokens for user %s: %+v", userID, err)
		return err
	}
	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken, jwt.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	exists, err := u.tokenStore.RefreshExists(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check refresh token in Redis: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	if err := u.tokenStore.DeleteRefresh(ctx, claims.UserID, claims.TokenID); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	return u.issueTokens(ctx, jwt.Subject{UserID: claims.UserID, Email: claims.Email, RoleID: claims.RoleID})
}

func (u *authUsecase) issueTokens(ctx context.Context, sub jwt.Subject) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.SaveAccess(ctx, sub.UserID, accessTokenID, u.jwtService.AccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}
	if err := u.tokenStore.SaveRefresh(ctx, sub.UserID, refreshTokenID, u.jwtService.RefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.AccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	switch user.RoleID {
	case entity.RoleIDDoctor:
		if user.DoctorProfile, err = u.doctorProfileRepo.FindByUserID(ctx, u.db, userID); err != nil {
			u.log.Warnf("Failed to load doctor profile for %s: %+v", userID, err)
			return nil, err
		}
	case entity.RoleIDPatient:
		if user.PatientProfile, err = u.patientProfileRepo.FindByUserID(ctx, u.db, userID); err != nil {
			u.log.Warnf("Failed to load patient profile for %s: %+v", userID, err)
			return nil, err
		}
	}

	return converter.UserToResponse(user), nil
}

func isKnownSpecialization(s string) bool {
	for _, known := range entity.Specializations {
		if known == s {
			return true
		}
	}
	return false
}
