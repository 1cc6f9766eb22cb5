package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript increments the counter and sets its expiry on the first
// hit of a window.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimiter is a fixed-window request counter keyed by caller.
type RateLimiter struct {
	client   *redis.Client
	limit    int
	window   time.Duration
	prefix   string
	failOpen bool
}

func NewRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration, failOpen bool) *RateLimiter {
	return &RateLimiter{
		client:   client,
		limit:    limit,
		window:   window,
		prefix:   prefix,
		failOpen: failOpen,
	}
}

// Allow reports whether another request from key fits the current window.
// When Redis is unreachable the answer follows failOpen and the error is
// returned for logging.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || l.client == nil || l.limit <= 0 {
		return true, nil
	}
	if key == "" {
		return false, errors.New("rate limit key is required")
	}

	count, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + ":" + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return l.failOpen, err
	}
	return count <= int64(l.limit), nil
}
