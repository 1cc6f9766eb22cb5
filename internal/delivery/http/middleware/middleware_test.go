package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"telehealth-booking/config"
	"telehealth-booking/internal/domain/entity"
	"telehealth-booking/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeTokenChecker struct {
	valid map[string]bool
	err   error
}

func (f *fakeTokenChecker) AccessExists(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	return f.valid[tokenID], f.err
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func newJWT() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	mw := NewAuthMiddleware(newJWT(), &fakeTokenChecker{}, quietLogger())
	rec := httptest.NewRecorder()

	mw.Authenticate(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticatePutsActorInContext(t *testing.T) {
	svc := newJWT()
	userID := uuid.New()
	token, tokenID, err := svc.GenerateAccessToken(jwt.Subject{UserID: userID, Email: "p@example.com", RoleID: entity.RoleIDPatient})
	require.NoError(t, err)

	var got entity.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := GetActorFromContext(r.Context())
		require.True(t, ok)
		got = actor
		w.WriteHeader(http.StatusOK)
	})

	mw := NewAuthMiddleware(svc, &fakeTokenChecker{valid: map[string]bool{tokenID: true}}, quietLogger())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.Authenticate(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.Actor{UserID: userID, RoleID: entity.RoleIDPatient}, got)
}

func TestAuthenticateRejectsRevokedAndRefreshTokens(t *testing.T) {
	svc := newJWT()
	sub := jwt.Subject{UserID: uuid.New(), RoleID: entity.RoleIDDoctor}
	access, _, err := svc.GenerateAccessToken(sub)
	require.NoError(t, err)
	refresh, refreshID, err := svc.GenerateRefreshToken(sub)
	require.NoError(t, err)

	mw := NewAuthMiddleware(svc, &fakeTokenChecker{valid: map[string]bool{refreshID: true}}, quietLogger())
	for _, token := range []string{access, refresh} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		mw.Authenticate(okHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name   string
		ctx    context.Context
		status int
	}{
		{"no role", context.Background(), http.StatusUnauthorized},
		{"wrong role", context.WithValue(context.Background(), RoleIDKey, entity.RoleIDDoctor), http.StatusForbidden},
		{"allowed", context.WithValue(context.Background(), RoleIDKey, entity.RoleIDPatient), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(tc.ctx)
			RequirePatient(okHandler()).ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRateLimitRejectsWithRetryAfter(t *testing.T) {
	limiter := &fakeLimiter{allowed: false}
	mw := NewRateLimitMiddleware(limiter, 30*time.Second, quietLogger())

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserIDKey, userID))
	rec := httptest.NewRecorder()
	mw.Limit(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Equal(t, []string{"user:" + userID.String()}, limiter.keys)
}

func TestRateLimitFailOpenPassesThrough(t *testing.T) {
	limiter := &fakeLimiter{allowed: true, err: errors.New("redis down")}
	mw := NewRateLimitMiddleware(limiter, time.Minute, quietLogger())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.7:5123"
	rec := httptest.NewRecorder()
	mw.Limit(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"ip:10.0.0.7"}, limiter.keys)
}

func TestCORSEchoesAllowedOrigin(t *testing.T) {
	mw := NewCORSMiddleware([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	mw.Handle(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://other.example.com")
	rec = httptest.NewRecorder()
	mw.Handle(okHandler()).ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAnswersPreflight(t *testing.T) {
	mw := NewCORSMiddleware([]string{"*"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/appointments", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	mw.Handle(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://anywhere.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
