package usecase

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"telehealth-booking/internal/domain/entity"
	"telehealth-booking/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeAuditService struct {
	mu      sync.Mutex
	actions []string
}

func (s *fakeAuditService) LogCreate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return nil
}

func (s *fakeAuditService) LogUpdate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return s.LogCreate(ctx, tx, userID, action, entityName, entityID, newValue)
}

type fakeNotifier struct {
	mu            sync.Mutex
	err           error
	confirmations []service.AppointmentNotice
	cancellations []service.AppointmentNotice
}

func (n *fakeNotifier) Name() string { return "fake" }

func (n *fakeNotifier) SendAppointmentConfirmation(ctx context.Context, notice service.AppointmentNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, notice)
	return n.err
}

func (n *fakeNotifier) SendAppointmentCancellation(ctx context.Context, notice service.AppointmentNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancellations = append(n.cancellations, notice)
	return n.err
}

type fakeDoctorProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*entity.DoctorProfile
}

func newFakeDoctorProfileRepo(profiles ...*entity.DoctorProfile) *fakeDoctorProfileRepo {
	r := &fakeDoctorProfileRepo{profiles: map[uuid.UUID]*entity.DoctorProfile{}}
	for _, p := range profiles {
		r.profiles[p.UserID] = p
	}
	return r
}

func (r *fakeDoctorProfileRepo) Create(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *fakeDoctorProfileRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeDoctorProfileRepo) FindAll(ctx context.Context, db *gorm.DB, filter entity.DoctorFilter) ([]entity.DoctorProfile, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.DoctorProfile
	for _, p := range r.profiles {
		if filter.Specialization != "" && p.Specialization != filter.Specialization {
			continue
		}
		if filter.MinRating != nil && p.Rating < *filter.MinRating {
			continue
		}
		if filter.MaxFee != nil && p.ConsultationFee.GreaterThan(*filter.MaxFee) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].TotalPatients > out[j].TotalPatients
	})

	total := int64(len(out))
	page := filter.Page.Normalize()
	if page.Offset() >= len(out) {
		return nil, total, nil
	}
	out = out[page.Offset():]
	if len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out, total, nil
}

func (r *fakeDoctorProfileRepo) Update(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error {
	return r.Create(ctx, db, profile)
}

func (r *fakeDoctorProfileRepo) IncrementTotalPatients(ctx context.Context, db *gorm.DB, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[userID]; ok {
		p.TotalPatients++
	}
	return nil
}

func (r *fakeDoctorProfileRepo) UpdateRating(ctx context.Context, db *gorm.DB, userID uuid.UUID, rating float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[userID]; ok {
		p.Rating = rating
	}
	return nil
}

type fakePatientProfileRepo struct {
	profiles map[uuid.UUID]*entity.PatientProfile
}

func newFakePatientProfileRepo(profiles ...*entity.PatientProfile) *fakePatientProfileRepo {
	r := &fakePatientProfileRepo{profiles: map[uuid.UUID]*entity.PatientProfile{}}
	for _, p := range profiles {
		r.profiles[p.UserID] = p
	}
	return r
}

func (r *fakePatientProfileRepo) Create(ctx context.Context, db *gorm.DB, profile *entity.PatientProfile) error {
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *fakePatientProfileRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.PatientProfile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePatientProfileRepo) Update(ctx context.Context, db *gorm.DB, profile *entity.PatientProfile) error {
	r.profiles[profile.UserID] = profile
	return nil
}

// fakeAppointmentRepo keeps appointments in memory and enforces the active
// slot uniqueness the way the partial unique index does.
type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*entity.Appointment
	// staleReads makes ExistsActiveInSlot always report a free slot, so
	// only the uniqueness check on write can catch a conflict.
	staleReads bool
	dayQueries int
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: map[uuid.UUID]*entity.Appointment{}}
}

func slotTakenError() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: entity.ActiveSlotConstraint}
}

func (r *fakeAppointmentRepo) holds(doctorID uuid.UUID, day time.Time, slot string, except uuid.UUID) bool {
	for _, a := range r.appointments {
		if a.ID == except || !a.Status.IsActive() {
			continue
		}
		if a.DoctorID == doctorID && a.AppointmentDay.Equal(day) && a.TimeSlot == slot {
			return true
		}
	}
	return false
}

func (r *fakeAppointmentRepo) seed(a *entity.Appointment) *entity.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.appointments[a.ID] = a
	return a
}

func (r *fakeAppointmentRepo) get(id uuid.UUID) *entity.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if appointment.Status.IsActive() && r.holds(appointment.DoctorID, appointment.AppointmentDay, appointment.TimeSlot, uuid.Nil) {
		return slotTakenError()
	}
	cp := *appointment
	r.appointments[cp.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	return r.get(id), nil
}

func (r *fakeAppointmentRepo) ExistsActiveInSlot(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, day time.Time, timeSlot string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.staleReads {
		return false, nil
	}
	return r.holds(doctorID, day, timeSlot, uuid.Nil), nil
}

func (r *fakeAppointmentRepo) FindByDoctorAndDay(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, day time.Time) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dayQueries++
	var out []entity.Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.AppointmentDay.Equal(day) && a.Status.IsActive() {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimeSlot < out[j].TimeSlot })
	return out, nil
}

func (r *fakeAppointmentRepo) FindByDoctor(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, filter entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.appointments {
		if a.DoctorID != doctorID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (r *fakeAppointmentRepo) FindByPatient(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.appointments {
		if a.PatientID == patientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func ownedBy(a *entity.Appointment, owner entity.AppointmentOwner) bool {
	return owner.DoctorID != nil && a.DoctorID == *owner.DoctorID ||
		owner.PatientID != nil && a.PatientID == *owner.PatientID
}

func (r *fakeAppointmentRepo) CountByStatus(ctx context.Context, db *gorm.DB, owner entity.AppointmentOwner) ([]entity.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[entity.AppointmentStatus]int64{}
	for _, a := range r.appointments {
		if ownedBy(a, owner) {
			counts[a.Status]++
		}
	}
	var out []entity.StatusCount
	for status, n := range counts {
		out = append(out, entity.StatusCount{Status: status, Count: n})
	}
	return out, nil
}

func (r *fakeAppointmentRepo) CountUpcoming(ctx context.Context, db *gorm.DB, owner entity.AppointmentOwner, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.appointments {
		if ownedBy(a, owner) && a.Status == entity.AppointmentStatusScheduled && !a.AppointmentDate.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeAppointmentRepo) CountOnDay(ctx context.Context, db *gorm.DB, owner entity.AppointmentOwner, day time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.appointments {
		if ownedBy(a, owner) && a.AppointmentDay.Equal(day) {
			n++
		}
	}
	return n, nil
}

func (r *fakeAppointmentRepo) FindRecent(ctx context.Context, db *gorm.DB, owner entity.AppointmentOwner, limit int) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.appointments {
		if ownedBy(a, owner) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDate.After(out[j].AppointmentDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, to entity.AppointmentStatus, from ...entity.AppointmentStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return 0, nil
	}
	if len(from) > 0 {
		allowed := false
		for _, s := range from {
			if a.Status == s {
				allowed = true
			}
		}
		if !allowed {
			return 0, nil
		}
	}
	a.Status = to
	return 1, nil
}

func (r *fakeAppointmentRepo) UpdateSlot(ctx context.Context, db *gorm.DB, id uuid.UUID, date, day time.Time, timeSlot string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || !a.Status.IsActive() {
		return 0, nil
	}
	if r.holds(a.DoctorID, day, timeSlot, id) {
		return 0, slotTakenError()
	}
	a.AppointmentDate = date
	a.AppointmentDay = day
	a.TimeSlot = timeSlot
	return 1, nil
}

func (r *fakeAppointmentRepo) UpdateClinicalNotes(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.appointments[appointment.ID]; ok {
		a.Symptoms = appointment.Symptoms
		a.Diagnosis = appointment.Diagnosis
		a.Prescription = appointment.Prescription
		a.ConsultationNotes = appointment.ConsultationNotes
	}
	return nil
}

func (r *fakeAppointmentRepo) UpdateRating(ctx context.Context, db *gorm.DB, id uuid.UUID, score int, feedback string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.appointments[id]; ok {
		a.RatingScore = &score
		a.RatingFeedback = feedback
	}
	return nil
}

func (r *fakeAppointmentRepo) AverageRatingForDoctor(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) (float64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum, n int64
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.Status == entity.AppointmentStatusCompleted && a.RatingScore != nil {
			sum += int64(*a.RatingScore)
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}

func (r *fakeAppointmentRepo) MarkNotificationSent(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.appointments[id]; ok {
		a.NotificationSent = true
	}
	return nil
}
