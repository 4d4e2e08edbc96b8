package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/davinci-it/expense-tracker/internal/api/metrics"
	"github.com/davinci-it/expense-tracker/internal/core/domain"
	"github.com/davinci-it/expense-tracker/internal/core/ports"
)

const (
	otpTTL          = time.Minute
	otpCooldown     = time.Minute
	otpCodeDigits   = 4
	defaultTokenTTL = 24 * time.Hour
)

// AuthService implements registration, login, profile management and the OTP
// email-verification flow.
type AuthService struct {
	users     ports.UserRepository
	otps      ports.OTPRepository
	limiter   ports.ResendLimiter
	mailer    ports.Mailer
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	otps ports.OTPRepository,
	limiter ports.ResendLimiter,
	mailer ports.Mailer,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		users:     users,
		otps:      otps,
		limiter:   limiter,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// Register creates an unverified account and returns it with a session token.
// Email and username must both be free.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, string, error) {
	if err := domain.ValidateUsername(in.Username); err != nil {
		return nil, "", err
	}
	if err := domain.ValidateEmail(in.Email); err != nil {
		return nil, "", err
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, "", err
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, "", domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", err
	}
	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, "", domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.generateToken(created)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, token, nil
}

// Login authenticates by email and password. Unknown emails are reported as
// not found; unverified accounts cannot log in.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if !user.Verified {
		return nil, "", domain.ErrEmailNotVerified
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Profile returns the user's account details.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile applies a partial username/email update. At least one field
// must be supplied, a no-op update is rejected, and a changed email must not
// collide with another account.
func (s *AuthService) UpdateProfile(ctx context.Context, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username == nil && in.Email == nil {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if (in.Username == nil || *in.Username == user.Username) &&
		(in.Email == nil || *in.Email == user.Email) {
		return nil, domain.ErrNoChangesDetected
	}

	if in.Email != nil && *in.Email != user.Email {
		if _, err := s.users.FindByEmail(ctx, *in.Email); err == nil {
			return nil, domain.ErrEmailTaken
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
	}

	if in.Username != nil {
		if err := domain.ValidateUsername(*in.Username); err != nil {
			return nil, err
		}
		user.Username = *in.Username
	}
	if in.Email != nil {
		if err := domain.ValidateEmail(*in.Email); err != nil {
			return nil, err
		}
		user.Email = *in.Email
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword replaces the password after verifying the old one.
func (s *AuthService) ResetPassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}
	if oldPassword == newPassword {
		return domain.ErrSamePassword
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return domain.ErrOldPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.SetPasswordHash(ctx, userID, string(hash))
}

// SendOTP issues a fresh verification code, subject to a per-user resend
// cooldown. Previously issued codes are purged first, so at most one code is
// live per user.
func (s *AuthService) SendOTP(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	allowed, err := s.limiter.Allow(ctx, user.ID, otpCooldown)
	if err != nil {
		metrics.OTPRequestsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("otp cooldown check: %w", err)
	}
	if !allowed {
		metrics.OTPRequestsTotal.WithLabelValues("cooldown").Inc()
		return domain.ErrOTPCooldown
	}

	if err := s.otps.DeleteByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("purge previous otps: %w", err)
	}

	code, err := generateOTPCode()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.otps.Create(ctx, &domain.OTP{
		UserID:    user.ID,
		CodeHash:  string(hash),
		ExpiresAt: now.Add(otpTTL),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, user.Email, "Your Expense Tracker verification code", otpBody(code)); err != nil {
		metrics.OTPRequestsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("send otp email: %w", err)
	}

	metrics.OTPRequestsTotal.WithLabelValues("sent").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("otp issued")
	return nil
}

// VerifyOTP checks the submitted code against the latest issued one and, on
// success, marks the account verified and purges the user's codes.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*domain.User, error) {
	if err := domain.ValidateOTPCode(code); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.Verified {
		return nil, domain.ErrEmailAlreadyVerified
	}

	record, err := s.otps.FindLatestByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if time.Now().UTC().After(record.ExpiresAt) {
		_ = s.otps.DeleteByUser(ctx, user.ID)
		return nil, domain.ErrOTPExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(record.CodeHash), []byte(code)) != nil {
		return nil, domain.ErrOTPMismatch
	}

	if err := s.users.SetVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := s.otps.DeleteByUser(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to purge used otps")
	}

	user.Verified = true
	s.log.Info().Str("user_id", user.ID).Msg("email verified")
	return user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub": user.ID,
		"exp": time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// generateOTPCode returns a zero-padded 4-digit numeric code.
func generateOTPCode() (string, error) {
	bound := big.NewInt(1)
	for i := 0; i < otpCodeDigits; i++ {
		bound.Mul(bound, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpCodeDigits, n), nil
}

func otpBody(code string) string {
	return fmt.Sprintf(`Dear user,

Your verification code for your Expense Tracker account is: %s

This code is valid for one minute. Please use it within that window.

If you did not request this code, please ignore this email.

This is an automated message, please do not reply.`, code)
}
