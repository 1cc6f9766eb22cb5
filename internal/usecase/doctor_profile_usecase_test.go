package usecase

import (
	"context"
	"testing"

	"telehealth-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDirectoryDoctor(name string, rating float64, fee int64, patients int) *entity.DoctorProfile {
	active := true
	id := uuid.New()
	return &entity.DoctorProfile{
		UserID:          id,
		Specialization:  "General Practice",
		ConsultationFee: decimal.NewFromInt(fee),
		Rating:          rating,
		TotalPatients:   patients,
		User:            entity.User{ID: id, FullName: name, IsActive: &active},
	}
}

func TestListDoctorsFiltersByRatingAndFee(t *testing.T) {
	pricey := newDirectoryDoctor("Andi", 4.8, 300000, 10)
	popular := newDirectoryDoctor("Bayu", 4.8, 150000, 40)
	budget := newDirectoryDoctor("Citra", 3.9, 100000, 100)
	doctors := NewDoctorProfileUsecase(nil, fakeTransactor{}, quietLogger(), nil,
		newFakeDoctorProfileRepo(pricey, popular, budget), &fakeAuditService{})
	ctx := context.Background()

	all, total, err := doctors.ListDoctors(ctx, entity.DoctorFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{popular.UserID, pricey.UserID, budget.UserID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	minRating := 4.5
	rated, total, err := doctors.ListDoctors(ctx, entity.DoctorFilter{MinRating: &minRating})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rated, 2)
	assert.Equal(t, popular.UserID, rated[0].ID)

	maxFee := decimal.NewFromInt(200000)
	affordable, total, err := doctors.ListDoctors(ctx, entity.DoctorFilter{MinRating: &minRating, MaxFee: &maxFee})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, affordable, 1)
	assert.Equal(t, popular.UserID, affordable[0].ID)
}
