package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultResetWindow = time.Minute

// ResetThrottle allows one password-reset request per email per window.
// Key format: portal:reset:<digest(lower(email))>
type ResetThrottle struct {
	client *redis.Client
	window time.Duration
}

func NewResetThrottle(client *redis.Client, window time.Duration) *ResetThrottle {
	if window <= 0 {
		window = defaultResetWindow
	}
	return &ResetThrottle{client: client, window: window}
}

// Allow reports whether a reset for email may be forwarded now, and if so
// starts a new window.
func (t *ResetThrottle) Allow(ctx context.Context, email string) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.key(email), "1", t.window).Result()
	if err != nil {
		return false, fmt.Errorf("reset throttle: %w", err)
	}
	return ok, nil
}

func (t *ResetThrottle) key(email string) string {
	return keyPrefix + "reset:" + digest(strings.ToLower(strings.TrimSpace(email)))
}
