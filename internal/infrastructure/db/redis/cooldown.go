package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResendCooldown enforces the per-user OTP resend window backed by Redis.
// Key format: otp_cooldown:<user_id>
type ResendCooldown struct {
	client *redis.Client
}

// NewResendCooldown creates a ResendCooldown wrapping the given Redis client.
func NewResendCooldown(client *redis.Client) *ResendCooldown {
	return &ResendCooldown{client: client}
}

// Allow reports whether the user may request another OTP. The first call in a
// window claims the key (SET NX with TTL) and returns true; until the key
// expires, further calls return false without touching the TTL.
func (c *ResendCooldown) Allow(ctx context.Context, userID string, cooldown time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, c.key(userID), "1", cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("otp cooldown: %w", err)
	}
	return ok, nil
}

func (c *ResendCooldown) key(userID string) string {
	return fmt.Sprintf("otp_cooldown:%s", userID)
}
