package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"telehealth-booking/config"
	"telehealth-booking/internal/delivery/http/handler"
	"telehealth-booking/internal/delivery/http/middleware"
	"telehealth-booking/pkg/jwt"
	"telehealth-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type allowAll struct{}

func (allowAll) Allow(ctx context.Context, key string) (bool, error) { return true, nil }

type noTokens struct{}

func (noTokens) AccessExists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	return false, nil
}

func newTestMux() *mux.Router {
	log := logrus.New()
	log.SetOutput(io.Discard)
	v := validator.NewValidator()
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})

	router := NewRouter(
		log,
		handler.NewAuthHandler(nil, v),
		handler.NewDoctorHandler(nil, nil, v),
		handler.NewPatientHandler(nil, v),
		handler.NewAppointmentHandler(nil, v),
		handler.NewAuditLogHandler(nil),
		middleware.NewAuthMiddleware(jwtService, noTokens{}, log),
		middleware.NewCORSMiddleware([]string{"https://app.example.com"}),
		middleware.NewRateLimitMiddleware(allowAll{}, time.Minute, log),
		middleware.NewTracingMiddleware(nil),
	)
	return router.Setup()
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPreflightIsAnswered(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/appointments", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	newTestMux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/appointments"},
		{http.MethodGet, "/api/v1/appointments/stats"},
		{http.MethodPost, "/api/v1/appointments/" + uuid.NewString() + "/cancel"},
		{http.MethodGet, "/api/v1/appointments/" + uuid.NewString() + "/video"},
		{http.MethodGet, "/api/v1/doctor/dashboard"},
		{http.MethodGet, "/api/v1/patient/dashboard"},
		{http.MethodGet, "/api/v1/doctor/appointments"},
		{http.MethodGet, "/api/v1/patient/profile"},
		{http.MethodGet, "/api/v1/admin/audit-logs"},
		{http.MethodGet, "/api/v1/auth/me"},
	}
	m := newTestMux()
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			m.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
