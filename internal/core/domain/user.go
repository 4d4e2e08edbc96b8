package domain

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email is already registered")
var ErrUsernameTaken = errors.New("username is already taken")
var ErrInvalidCredentials = errors.New("invalid user credentials")
var ErrEmailNotVerified = errors.New("email is not verified")
var ErrEmailAlreadyVerified = errors.New("email is already verified")
var ErrOldPasswordMismatch = errors.New("old password is invalid")
var ErrSamePassword = errors.New("new password cannot be the same as the old one")

// AlertLevels lists the expense-percentage thresholds in the order the alert
// machine evaluates them (descending).
var AlertLevels = []int{75, 50, 25, 10, 5}

// AlertThresholds records, per threshold level, whether the user has already
// been notified since the flag was last reset. It is a fixed struct rather
// than a map so exactly these five flags always exist.
type AlertThresholds struct {
	SeventyFivePercent bool `json:"seventyFivePercent"`
	FiftyPercent       bool `json:"fiftyPercent"`
	TwentyFivePercent  bool `json:"twentyFivePercent"`
	TenPercent         bool `json:"tenPercent"`
	FivePercent        bool `json:"fivePercent"`
}

// Flag returns the notified flag for a threshold level.
func (a *AlertThresholds) Flag(level int) bool {
	switch level {
	case 75:
		return a.SeventyFivePercent
	case 50:
		return a.FiftyPercent
	case 25:
		return a.TwentyFivePercent
	case 10:
		return a.TenPercent
	case 5:
		return a.FivePercent
	}
	return false
}

// SetFlag sets the notified flag for a threshold level.
func (a *AlertThresholds) SetFlag(level int, v bool) {
	switch level {
	case 75:
		a.SeventyFivePercent = v
	case 50:
		a.FiftyPercent = v
	case 25:
		a.TwentyFivePercent = v
	case 10:
		a.TenPercent = v
	case 5:
		a.FivePercent = v
	}
}

// User models an account. PasswordHash is a bcrypt hash; the plaintext is
// never stored, compared outside bcrypt, or logged. Verified gates login and
// flips only through OTP verification. AlertThresholds is mutated only by the
// alert machine.
type User struct {
	ID              string          `json:"id"`
	Username        string          `json:"username"`
	Email           string          `json:"email"`
	PasswordHash    string          `json:"-"`
	Verified        bool            `json:"verified"`
	AlertThresholds AlertThresholds `json:"alertThresholds"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
