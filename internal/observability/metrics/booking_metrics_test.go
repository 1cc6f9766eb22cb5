package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBookingMetricsCounts(t *testing.T) {
	m := NewBookingMetrics(prometheus.NewRegistry())

	m.ObserveBooking(OutcomeBooked)
	m.ObserveBooking(OutcomeConflict)
	m.ObserveBooking(OutcomeConflict)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookings.WithLabelValues(OutcomeBooked)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookings.WithLabelValues(OutcomeConflict)))
}

func TestNilBookingMetricsIsSafe(t *testing.T) {
	var m *BookingMetrics
	assert.NotPanics(t, func() {
		m.ObserveBooking(OutcomeBooked)
		m.ObserveNotification("confirmation", "none", NotificationSent)
		m.ObserveStatusChange("completed")
		m.ObserveResolve(time.Millisecond)
	})
}
