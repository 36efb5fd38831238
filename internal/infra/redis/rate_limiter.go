package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter bounds how often one chat may issue a command, using a fixed
// window counter in Redis. The window opens on the first hit and closes when
// the key expires; counts are never carried across windows.
type RateLimiter struct {
	client *Client
}

func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow reports whether the caller is still inside its quota for the window.
// Over-limit turns are counted too, so a chat that keeps hammering stays
// blocked until the window lapses.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// UserCommandKey buckets counts per chat and command, so a burst of dialog
// answers cannot lock a student out of /resetme.
func UserCommandKey(chatID int64, command string) string {
	return fmt.Sprintf("rl:chat:%d:cmd:%s", chatID, command)
}
