package usecase

import (
	"errors"

	"telehealth-booking/internal/domain/entity"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidOldPassword = errors.New("invalid old password")

// applyPasswordChange rehashes the password when newPassword is set. The
// current password must match oldPassword.
func applyPasswordChange(user *entity.User, oldPassword, newPassword *string) (bool, error) {
	if newPassword == nil || *newPassword == "" {
		return false, nil
	}
	if oldPassword == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(*oldPassword)) != nil {
		return false, ErrInvalidOldPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*newPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	user.Password = string(hashed)
	return true, nil
}
