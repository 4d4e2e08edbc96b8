package domain

import (
	"errors"
	"time"
)

var ErrOTPNotFound = errors.New("no valid OTP found, please request a new one")
var ErrOTPExpired = errors.New("the OTP has expired")
var ErrOTPMismatch = errors.New("invalid OTP, please check your inbox")
var ErrOTPCooldown = errors.New("please wait at least one minute before requesting another OTP")

// OTP is an ephemeral email-verification code. Only the bcrypt hash of the
// 4-digit code is stored; records are purged on reissue and on successful
// verification.
type OTP struct {
	ID        string
	UserID    string
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}
