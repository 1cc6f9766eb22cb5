package middleware

import (
	"context"
	"net"
	"net/http"
	"time"

	"telehealth-booking/pkg/response"

	"github.com/sirupsen/logrus"
)

// Limiter decides whether one more request from key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitMiddleware throttles per authenticated user, falling back to the
// client address on public routes.
type RateLimitMiddleware struct {
	limiter Limiter
	window  time.Duration
	log     *logrus.Logger
}

func NewRateLimitMiddleware(limiter Limiter, window time.Duration, log *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		window:  window,
		log:     log,
	}
}

func clientKey(r *http.Request) string {
	if userID, ok := GetUserIDFromContext(r.Context()); ok {
		return "user:" + userID.String()
	}
	if ip := r.Header.Get("X-Real-Ip"); ip != "" {
		return "ip:" + ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		allowed, err := m.limiter.Allow(r.Context(), key)
		if err != nil {
			m.log.Warnf("Rate limiter unavailable for %s: %+v", key, err)
		}
		if !allowed {
			response.TooManyRequests(w, m.window)
			return
		}
		next.ServeHTTP(w, r)
	})
}
