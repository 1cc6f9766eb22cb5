package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"telehealth-booking/internal/delivery/dto"
	"telehealth-booking/internal/domain/entity"
	"telehealth-booking/internal/usecase"
	"telehealth-booking/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDoctorUsecase struct {
	usecase.DoctorProfileUsecase

	calls     int
	gotFilter entity.DoctorFilter
}

func (s *stubDoctorUsecase) ListDoctors(ctx context.Context, filter entity.DoctorFilter) ([]dto.DoctorResponse, int64, error) {
	s.calls++
	s.gotFilter = filter
	return []dto.DoctorResponse{}, 0, nil
}

func newDoctorRouter(doctors *stubDoctorUsecase) *mux.Router {
	h := NewDoctorHandler(doctors, &stubAvailabilityUsecase{}, validator.NewValidator())
	r := mux.NewRouter()
	r.HandleFunc("/doctors", h.ListDoctors).Methods(http.MethodGet)
	return r
}

func TestListDoctorsParsesSearchBounds(t *testing.T) {
	stub := &stubDoctorUsecase{}
	rec := httptest.NewRecorder()
	newDoctorRouter(stub).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doctors?specialization=Cardiology&min_rating=4.5&max_fee=150000.50", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cardiology", stub.gotFilter.Specialization)
	require.NotNil(t, stub.gotFilter.MinRating)
	assert.Equal(t, 4.5, *stub.gotFilter.MinRating)
	require.NotNil(t, stub.gotFilter.MaxFee)
	assert.True(t, decimal.RequireFromString("150000.50").Equal(*stub.gotFilter.MaxFee))
}

func TestListDoctorsRejectsInvalidBounds(t *testing.T) {
	for _, query := range []string{"min_rating=high", "min_rating=7", "max_fee=cheap", "max_fee=-1"} {
		t.Run(query, func(t *testing.T) {
			stub := &stubDoctorUsecase{}
			rec := httptest.NewRecorder()
			newDoctorRouter(stub).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doctors?"+query, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, stub.calls)
		})
	}
}
