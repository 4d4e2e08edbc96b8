package ports

import (
	"context"

	"github.com/davinci-it/expense-tracker/internal/core/domain"
)

// RegisterInput carries a new account request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateProfileInput carries a partial profile update. Nil fields are left
// untouched; at least one must be supplied.
type UpdateProfileInput struct {
	UserID   string
	Username *string
	Email    *string
}

// AuthService covers registration, login, profile management and the OTP
// email-verification flow. Login and Register return a signed session token
// alongside the user; the transport layer turns it into an HTTP-only cookie.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, in UpdateProfileInput) (*domain.User, error)
	ResetPassword(ctx context.Context, userID, oldPassword, newPassword string) error
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*domain.User, error)
}
