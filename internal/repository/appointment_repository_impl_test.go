package repository

import (
	"context"
	"testing"
	"time"

	"telehealth-booking/internal/domain/entity"
	"telehealth-booking/internal/infrastructure/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func newScheduledAppointment() *entity.Appointment {
	day := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)
	return &entity.Appointment{
		ID:               uuid.New(),
		DoctorID:         uuid.New(),
		PatientID:        uuid.New(),
		AppointmentDate:  day.Add(9 * time.Hour),
		AppointmentDay:   day,
		TimeSlot:         "09:00-10:00",
		Status:           entity.AppointmentStatusScheduled,
		ConsultationType: entity.ConsultationVideo,
	}
}

func TestAppointmentCreateInsertsRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository()

	mock.ExpectExec(`INSERT INTO "appointments"`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), db, newScheduledAppointment()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentCreateSurfacesActiveSlotViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository()

	mock.ExpectExec(`INSERT INTO "appointments"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: entity.ActiveSlotConstraint})

	err := repo.Create(context.Background(), db, newScheduledAppointment())
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err, entity.ActiveSlotConstraint))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentFindByDoctorAndDay(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository()
	doctorID := uuid.New()
	day := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "doctor_id", "time_slot", "status"}).
		AddRow(uuid.New().String(), doctorID.String(), "09:00-10:00", "scheduled").
		AddRow(uuid.New().String(), doctorID.String(), "11:00-12:00", "ongoing")
	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE doctor_id = .+ AND appointment_day = .+ AND status IN .+ ORDER BY time_slot ASC`).
		WillReturnRows(rows)

	appointments, err := repo.FindByDoctorAndDay(context.Background(), db, doctorID, day)
	require.NoError(t, err)
	require.Len(t, appointments, 2)
	assert.Equal(t, "09:00-10:00", appointments[0].TimeSlot)
	assert.Equal(t, entity.AppointmentStatusOngoing, appointments[1].Status)
	assert.Equal(t, doctorID, appointments[1].DoctorID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentUpdateStatusReportsLostRace(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository()

	mock.ExpectExec(`UPDATE "appointments" SET "status"=.+ WHERE id = .+ AND status IN`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.UpdateStatus(context.Background(), db, uuid.New(), entity.AppointmentStatusCancelled, entity.CancellableStatuses()...)
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentUpdateSlotSurfacesActiveSlotViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository()
	day := time.Date(2030, 6, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE "appointments" SET .*"time_slot"=.+ WHERE id = .+ AND status IN`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: entity.ActiveSlotConstraint})

	affected, err := repo.UpdateSlot(context.Background(), db, uuid.New(), day.Add(11*time.Hour), day, "11:00-12:00")
	require.Error(t, err)
	assert.Zero(t, affected)
	assert.True(t, database.IsUniqueViolation(err, entity.ActiveSlotConstraint))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentCountByStatusRequiresOwner(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewAppointmentRepository()

	_, err := repo.CountByStatus(context.Background(), db, entity.AppointmentOwner{})
	assert.ErrorIs(t, err, errOwnerRequired)

	_, err = repo.CountUpcoming(context.Background(), db, entity.AppointmentOwner{}, time.Now())
	assert.ErrorIs(t, err, errOwnerRequired)

	_, err = repo.FindRecent(context.Background(), db, entity.AppointmentOwner{}, 5)
	assert.ErrorIs(t, err, errOwnerRequired)
}

func TestAppointmentCountUpcomingForPatient(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository()
	patientID := uuid.New()
	since := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "appointments" WHERE patient_id = .+status = .+ AND appointment_date >= `).
		WithArgs(patientID, entity.AppointmentStatusScheduled, since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountUpcoming(context.Background(), db, entity.AppointmentOwner{PatientID: &patientID}, since)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
