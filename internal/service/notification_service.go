package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

var ErrNotificationFailed = errors.New("notification delivery failed")

// AppointmentNotice is everything a message about one appointment needs.
type AppointmentNotice struct {
	PatientName  string
	PatientPhone string
	PatientEmail string
	DoctorName   string
	Date         time.Time
	TimeSlot     string
	MeetingLink  string
}

// Notifier delivers appointment messages to the patient. Callers treat
// failures as non-fatal.
type Notifier interface {
	SendAppointmentConfirmation(ctx context.Context, notice AppointmentNotice) error
	SendAppointmentCancellation(ctx context.Context, notice AppointmentNotice) error
	Name() string
}

func confirmationText(n AppointmentNotice) string {
	return fmt.Sprintf(
		"Hello %s, your video consultation with Dr. %s is confirmed for %s, %s. Join here: %s",
		n.PatientName, n.DoctorName, n.Date.Format("Monday, 02 Jan 2006"), n.TimeSlot, n.MeetingLink,
	)
}

func cancellationText(n AppointmentNotice) string {
	return fmt.Sprintf(
		"Hello %s, your consultation with Dr. %s on %s, %s has been cancelled.",
		n.PatientName, n.DoctorName, n.Date.Format("Monday, 02 Jan 2006"), n.TimeSlot,
	)
}

// WhatsAppNotifier sends messages through the CallMeBot WhatsApp gateway.
type WhatsAppNotifier struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewWhatsAppNotifier(endpoint, apiKey string, timeout time.Duration) *WhatsAppNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WhatsAppNotifier{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

func (n *WhatsAppNotifier) Name() string { return "whatsapp" }

func (n *WhatsAppNotifier) SendAppointmentConfirmation(ctx context.Context, notice AppointmentNotice) error {
	return n.send(ctx, notice.PatientPhone, confirmationText(notice))
}

func (n *WhatsAppNotifier) SendAppointmentCancellation(ctx context.Context, notice AppointmentNotice) error {
	return n.send(ctx, notice.PatientPhone, cancellationText(notice))
}

func (n *WhatsAppNotifier) send(ctx context.Context, phone, text string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("%w: patient has no phone number", ErrNotificationFailed)
	}

	u, err := url.Parse(n.endpoint)
	if err != nil {
		return fmt.Errorf("parse callmebot endpoint: %w", err)
	}
	q := u.Query()
	q.Set("phone", phone)
	q.Set("text", text)
	q.Set("apikey", n.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: callmebot returned status %d", ErrNotificationFailed, resp.StatusCode)
	}
	return nil
}

// EmailNotifier sends messages through SendGrid.
type EmailNotifier struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailNotifier(apiKey, fromEmail, fromName string) *EmailNotifier {
	return &EmailNotifier{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (n *EmailNotifier) Name() string { return "email" }

func (n *EmailNotifier) SendAppointmentConfirmation(ctx context.Context, notice AppointmentNotice) error {
	return n.send(ctx, notice, "Your appointment is confirmed", confirmationText(notice))
}

func (n *EmailNotifier) SendAppointmentCancellation(ctx context.Context, notice AppointmentNotice) error {
	return n.send(ctx, notice, "Your appointment was cancelled", cancellationText(notice))
}

func (n *EmailNotifier) send(ctx context.Context, notice AppointmentNotice, subject, body string) error {
	if strings.TrimSpace(notice.PatientEmail) == "" {
		return fmt.Errorf("%w: patient has no email address", ErrNotificationFailed)
	}

	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail(notice.PatientName, notice.PatientEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: sendgrid returned status %d", ErrNotificationFailed, resp.StatusCode)
	}
	return nil
}

// NoopNotifier drops every message.
type NoopNotifier struct{}

func (NoopNotifier) Name() string { return "none" }

func (NoopNotifier) SendAppointmentConfirmation(context.Context, AppointmentNotice) error {
	return nil
}

func (NoopNotifier) SendAppointmentCancellation(context.Context, AppointmentNotice) error {
	return nil
}

// NotifierConfig selects and configures a Notifier.
type NotifierConfig struct {
	Provider        string
	CallMeBotURL    string
	CallMeBotAPIKey string
	SendGridAPIKey  string
	FromEmail       string
	FromName        string
	Timeout         time.Duration
}

// NewNotifier builds the configured notifier, falling back to NoopNotifier
// when the chosen provider lacks credentials.
func NewNotifier(cfg NotifierConfig, log *logrus.Logger) Notifier {
	switch cfg.Provider {
	case "whatsapp":
		if cfg.CallMeBotAPIKey == "" {
			log.Warn("CALLMEBOT_API_KEY is empty, appointment notifications are disabled")
			return NoopNotifier{}
		}
		return NewWhatsAppNotifier(cfg.CallMeBotURL, cfg.CallMeBotAPIKey, cfg.Timeout)
	case "email":
		if cfg.SendGridAPIKey == "" || cfg.FromEmail == "" {
			log.Warn("SendGrid is not configured, appointment notifications are disabled")
			return NoopNotifier{}
		}
		return NewEmailNotifier(cfg.SendGridAPIKey, cfg.FromEmail, cfg.FromName)
	default:
		return NoopNotifier{}
	}
}
