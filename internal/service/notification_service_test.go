package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNotice() AppointmentNotice {
	return AppointmentNotice{
		PatientName:  "Budi",
		PatientPhone: "+628123456789",
		PatientEmail: "budi@example.com",
		DoctorName:   "Sari",
		Date:         time.Date(2030, 6, 3, 9, 0, 0, 0, time.UTC),
		TimeSlot:     "09:00-10:00",
		MeetingLink:  "https://meet.jit.si/HealthChat-1-2",
	}
}

func TestWhatsAppNotifierSendsQuery(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWhatsAppNotifier(srv.URL+"/whatsapp.php", "secret-key", time.Second)
	require.NoError(t, n.SendAppointmentConfirmation(context.Background(), testNotice()))

	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/whatsapp.php", got.URL.Path)
	assert.Equal(t, "+628123456789", got.URL.Query().Get("phone"))
	assert.Equal(t, "secret-key", got.URL.Query().Get("apikey"))
	text := got.URL.Query().Get("text")
	assert.Contains(t, text, "Dr. Sari")
	assert.Contains(t, text, "Monday, 03 Jun 2030")
	assert.Contains(t, text, "https://meet.jit.si/HealthChat-1-2")
}

func TestWhatsAppNotifierReportsGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "down")
	}))
	defer srv.Close()

	n := NewWhatsAppNotifier(srv.URL, "k", time.Second)
	err := n.SendAppointmentCancellation(context.Background(), testNotice())
	assert.ErrorIs(t, err, ErrNotificationFailed)
	assert.True(t, strings.Contains(err.Error(), "502"))
}

func TestWhatsAppNotifierRequiresPhone(t *testing.T) {
	n := NewWhatsAppNotifier("http://127.0.0.1:1", "k", time.Second)
	notice := testNotice()
	notice.PatientPhone = " "

	err := n.SendAppointmentConfirmation(context.Background(), notice)
	assert.ErrorIs(t, err, ErrNotificationFailed)
}

func TestNewNotifierFallsBackToNoop(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	assert.Equal(t, "none", NewNotifier(NotifierConfig{Provider: "whatsapp"}, log).Name())
	assert.Equal(t, "none", NewNotifier(NotifierConfig{Provider: "email", SendGridAPIKey: "k"}, log).Name())
	assert.Equal(t, "none", NewNotifier(NotifierConfig{}, log).Name())
	assert.Equal(t, "whatsapp", NewNotifier(NotifierConfig{Provider: "whatsapp", CallMeBotAPIKey: "k"}, log).Name())
	assert.Equal(t, "email", NewNotifier(NotifierConfig{Provider: "email", SendGridAPIKey: "k", FromEmail: "a@b.c"}, log).Name())
}
