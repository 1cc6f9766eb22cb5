package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Booking outcome labels.
const (
	OutcomeBooked     = "booked"
	OutcomeConflict   = "conflict"
	OutcomeRejected   = "rejected"
	OutcomeError      = "error"
	NotificationSent  = "sent"
	NotificationFails = "failed"
)

// BookingMetrics holds the appointment counters. A nil *BookingMetrics is
// valid and records nothing.
type BookingMetrics struct {
	bookings        *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	statusChanges   *prometheus.CounterVec
	resolveDuration prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telehealth",
			Subsystem: "appointments",
			Name:      "booking_attempts_total",
			Help:      "Booking attempts by outcome.",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telehealth",
			Subsystem: "appointments",
			Name:      "notifications_total",
			Help:      "Appointment notifications by kind, provider and result.",
		}, []string{"kind", "provider", "result"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telehealth",
			Subsystem: "appointments",
			Name:      "status_changes_total",
			Help:      "Appointment status changes by target status.",
		}, []string{"status"}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "telehealth",
			Subsystem: "availability",
			Name:      "resolve_duration_seconds",
			Help:      "Time spent resolving open windows for a doctor and day.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.bookings, m.notifications, m.statusChanges, m.resolveDuration)
	}
	return m
}

func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveNotification(kind, provider, result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, provider, result).Inc()
}

func (m *BookingMetrics) ObserveStatusChange(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveResolve(d time.Duration) {
	if m == nil {
		return
	}
	m.resolveDuration.Observe(d.Seconds())
}
