package usecase

import (
	"context"
	"testing"

	"telehealth-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAvailableSlotsOffDayIsEmpty(t *testing.T) {
	f := newBookingFixture()

	resp, err := f.availability.GetAvailableSlots(context.Background(), f.doctor.UserID, nextTuesday)
	require.NoError(t, err)
	assert.Equal(t, "Tuesday", resp.Day)
	assert.NotNil(t, resp.AvailableSlots)
	assert.Empty(t, resp.AvailableSlots)
	assert.Zero(t, f.appointments.dayQueries)
}

func TestGetAvailableSlotsReturnsWholeTemplateWhenFree(t *testing.T) {
	f := newBookingFixture()

	resp, err := f.availability.GetAvailableSlots(context.Background(), f.doctor.UserID, nextMonday)
	require.NoError(t, err)
	assert.Equal(t, f.doctor.UserID, resp.DoctorID)
	assert.Equal(t, nextMonday, resp.Date)
	assert.Equal(t, "Monday", resp.Day)
	assert.Equal(t, templateSlots, resp.AvailableSlots)
}

func TestGetAvailableSlotsIgnoresReleasedAppointments(t *testing.T) {
	f := newBookingFixture()
	f.seed(entity.AppointmentStatusScheduled, nextMonday, "09:00-10:00")
	f.seed(entity.AppointmentStatusCancelled, nextMonday, "10:00-11:00")
	f.seed(entity.AppointmentStatusCompleted, nextMonday, "11:00-12:00")
	f.seed(entity.AppointmentStatusOngoing, nextWednesday, "11:00-12:00")

	assert.Equal(t, []string{"10:00-11:00", "11:00-12:00"}, f.openSlots(t, nextMonday))
	assert.Equal(t, []string{"09:00-10:00", "10:00-11:00"}, f.openSlots(t, nextWednesday))
}

func TestGetAvailableSlotsIsRepeatable(t *testing.T) {
	f := newBookingFixture()
	f.seed(entity.AppointmentStatusScheduled, nextMonday, "10:00-11:00")

	first := f.openSlots(t, nextMonday)
	second := f.openSlots(t, nextMonday)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"09:00-10:00", "11:00-12:00"}, first)
}

func TestGetAvailableSlotsValidatesInput(t *testing.T) {
	f := newBookingFixture()

	_, err := f.availability.GetAvailableSlots(context.Background(), f.doctor.UserID, "2030-13-01")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = f.availability.GetAvailableSlots(context.Background(), uuid.New(), nextMonday)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}
