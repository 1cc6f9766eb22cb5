package converter

import (
	"testing"
	"time"

	"telehealth-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAppointmentToResponseDayIsWeekdayName(t *testing.T) {
	resp := AppointmentToResponse(&entity.Appointment{
		ID:              uuid.New(),
		AppointmentDate: time.Date(2030, 6, 5, 9, 0, 0, 0, time.UTC),
		AppointmentDay:  time.Date(2030, 6, 5, 0, 0, 0, 0, time.UTC),
		TimeSlot:        "09:00-10:00",
		Status:          entity.AppointmentStatusScheduled,
	})

	assert.Equal(t, "Wednesday", resp.Day)
	assert.Equal(t, "2030-06-05", resp.AppointmentDay)
	assert.Nil(t, resp.Rating)
	assert.Nil(t, resp.Prescription)
}

func TestStatusCountsToStats(t *testing.T) {
	stats := StatusCountsToStats([]entity.StatusCount{
		{Status: entity.AppointmentStatusScheduled, Count: 2},
		{Status: entity.AppointmentStatusNoShow, Count: 1},
	})

	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Scheduled)
	assert.Equal(t, int64(1), stats.NoShow)
}
