package ports

import (
	"context"
	"time"

	"github.com/davinci-it/expense-tracker/internal/core/domain"
)

// OTPRepository stores ephemeral email-verification codes.
type OTPRepository interface {
	Create(ctx context.Context, otp *domain.OTP) error
	// FindLatestByUser returns the most recently issued OTP for the user,
	// domain.ErrOTPNotFound when none exists.
	FindLatestByUser(ctx context.Context, userID string) (*domain.OTP, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// ResendLimiter throttles OTP reissue per user.
type ResendLimiter interface {
	// Allow reports whether the user may request another OTP now. When it
	// returns true the attempt is recorded and the cooldown window restarts.
	Allow(ctx context.Context, userID string, cooldown time.Duration) (bool, error)
}
