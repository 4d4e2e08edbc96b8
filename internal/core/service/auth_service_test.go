package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/davinci-it/expense-tracker/internal/core/domain"
	"github.com/davinci-it/expense-tracker/internal/core/ports"
)

func newAuthFixture(t *testing.T) (*AuthService, *stubUserRepo, *stubOTPRepo, *stubLimiter, *stubMailer) {
	t.Helper()
	users := newStubUserRepo()
	otps := newStubOTPRepo()
	limiter := &stubLimiter{allowed: true}
	mailer := &stubMailer{}
	svc := NewAuthService(users, otps, limiter, mailer, "secret", time.Hour, zerolog.Nop())
	return svc, users, otps, limiter, mailer
}

func registerVerified(t *testing.T, svc *AuthService, users *stubUserRepo, email string) *domain.User {
	t.Helper()
	user, _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Email:    email,
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := users.SetVerified(context.Background(), user.ID); err != nil {
		t.Fatalf("set verified: %v", err)
	}
	user.Verified = true
	return user
}

func TestAuthService_Register(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	user, token, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Verified {
		t.Fatalf("fresh accounts must start unverified")
	}
	if user.PasswordHash == "hunter2hunter2" {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2hunter2")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != user.ID {
		t.Fatalf("expected sub claim %q, got %v", user.ID, claims["sub"])
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	cases := []ports.RegisterInput{
		{Username: "al", Email: "al@example.com", Password: "hunter2hunter2"},
		{Username: "alice", Email: "not-an-email", Password: "hunter2hunter2"},
		{Username: "alice", Email: "alice@example.com", Password: "short"},
	}
	for _, in := range cases {
		_, _, err := svc.Register(ctx, in)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError for %+v, got %v", in, err)
		}
	}
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, ports.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "hunter2hunter2",
	}); err != nil {
		t.Fatalf("first register: %v", err)
	}

	if _, _, err := svc.Register(ctx, ports.RegisterInput{
		Username: "someone", Email: "alice@example.com", Password: "hunter2hunter2",
	}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, _, err := svc.Register(ctx, ports.RegisterInput{
		Username: "alice", Email: "other@example.com", Password: "hunter2hunter2",
	}); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, users, _, _, _ := newAuthFixture(t)
	registerVerified(t, svc, users, "alice@example.com")

	user, token, err := svc.Login(context.Background(), "alice@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected session token")
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthService_Login_Unverified(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)
	if _, _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "hunter2hunter2",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, err := svc.Login(context.Background(), "alice@example.com", "hunter2hunter2")
	if !errors.Is(err, domain.ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, users, _, _, _ := newAuthFixture(t)
	registerVerified(t, svc, users, "alice@example.com")

	_, _, err := svc.Login(context.Background(), "alice@example.com", "wrong-password")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever123")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc, users, _, _, _ := newAuthFixture(t)
	user := registerVerified(t, svc, users, "alice@example.com")
	ctx := context.Background()

	if _, err := svc.UpdateProfile(ctx, ports.UpdateProfileInput{UserID: user.ID}); !errors.Is(err, domain.ErrNoFieldsToUpdate) {
		t.Fatalf("expected ErrNoFieldsToUpdate, got %v", err)
	}

	sameName := "alice"
	if _, err := svc.UpdateProfile(ctx, ports.UpdateProfileInput{UserID: user.ID, Username: &sameName}); !errors.Is(err, domain.ErrNoChangesDetected) {
		t.Fatalf("expected ErrNoChangesDetected, got %v", err)
	}

	newName := "alice_renamed"
	updated, err := svc.UpdateProfile(ctx, ports.UpdateProfileInput{UserID: user.ID, Username: &newName})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.Username != "alice_renamed" {
		t.Fatalf("username not updated: %+v", updated)
	}
}

func TestAuthService_UpdateProfile_EmailCollision(t *testing.T) {
	svc, users, _, _, _ := newAuthFixture(t)
	user := registerVerified(t, svc, users, "alice@example.com")

	if _, err := users.Create(context.Background(), &domain.User{
		Username: "bob", Email: "bob@example.com",
	}); err != nil {
		t.Fatalf("seed second user: %v", err)
	}

	taken := "bob@example.com"
	_, err := svc.UpdateProfile(context.Background(), ports.UpdateProfileInput{UserID: user.ID, Email: &taken})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_ResetPassword(t *testing.T) {
	svc, users, _, _, _ := newAuthFixture(t)
	user := registerVerified(t, svc, users, "alice@example.com")
	ctx := context.Background()

	if err := svc.ResetPassword(ctx, user.ID, "hunter2hunter2", "hunter2hunter2"); !errors.Is(err, domain.ErrSamePassword) {
		t.Fatalf("expected ErrSamePassword, got %v", err)
	}
	if err := svc.ResetPassword(ctx, user.ID, "wrong-old-pass", "brand-new-pass"); !errors.Is(err, domain.ErrOldPasswordMismatch) {
		t.Fatalf("expected ErrOldPasswordMismatch, got %v", err)
	}

	if err := svc.ResetPassword(ctx, user.ID, "hunter2hunter2", "brand-new-pass"); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice@example.com", "brand-new-pass"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice@example.com", "hunter2hunter2"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
}

var otpCodePattern = regexp.MustCompile(`\b(\d{4})\b`)

func sentOTPCode(t *testing.T, mailer *stubMailer) string {
	t.Helper()
	if len(mailer.sent) == 0 {
		t.Fatalf("no mail recorded")
	}
	match := otpCodePattern.FindStringSubmatch(mailer.sent[len(mailer.sent)-1].body)
	if match == nil {
		t.Fatalf("no code found in mail body: %q", mailer.sent[len(mailer.sent)-1].body)
	}
	return match[1]
}

func TestAuthService_OTPRoundTrip(t *testing.T) {
	svc, _, _, _, mailer := newAuthFixture(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, ports.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "hunter2hunter2",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.SendOTP(ctx, "alice@example.com"); err != nil {
		t.Fatalf("SendOTP returned error: %v", err)
	}
	code := sentOTPCode(t, mailer)

	verified, err := svc.VerifyOTP(ctx, "alice@example.com", code)
	if err != nil {
		t.Fatalf("VerifyOTP returned error: %v", err)
	}
	if !verified.Verified {
		t.Fatalf("user not marked verified")
	}

	if _, _, err := svc.Login(ctx, "alice@example.com", "hunter2hunter2"); err != nil {
		t.Fatalf("login after verification failed: %v", err)
	}
}

func TestAuthService_SendOTP_Cooldown(t *testing.T) {
	svc, _, _, limiter, mailer := newAuthFixture(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, ports.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "hunter2hunter2",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	limiter.allowed = false
	err := svc.SendOTP(ctx, "alice@example.com")
	if !errors.Is(err, domain.ErrOTPCooldown) {
		t.Fatalf("expected ErrOTPCooldown, got %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("no mail may be sent inside the cooldown window")
	}
}

func TestAuthService_VerifyOTP_Mismatch(t *testing.T) {
	svc, _, _, _, mailer := newAuthFixture(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, ports.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "hunter2hunter2",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.SendOTP(ctx, "alice@example.com"); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}

	code := sentOTPCode(t, mailer)
	wrong := "0000"
	if wrong == code {
		wrong = "1111"
	}
	if _, err := svc.VerifyOTP(ctx, "alice@example.com", wrong); !errors.Is(err, domain.ErrOTPMismatch) {
		t.Fatalf("expected ErrOTPMismatch, got %v", err)
	}
}

func TestAuthService_VerifyOTP_Expired(t *testing.T) {
	svc, _, otps, _, _ := newAuthFixture(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, ports.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash code: %v", err)
	}
	past := time.Now().UTC().Add(-2 * time.Minute)
	if err := otps.Create(ctx, &domain.OTP{
		UserID:    user.ID,
		CodeHash:  string(hash),
		ExpiresAt: past.Add(time.Minute),
		CreatedAt: past,
	}); err != nil {
		t.Fatalf("seed otp: %v", err)
	}

	if _, err := svc.VerifyOTP(ctx, "alice@example.com", "1234"); !errors.Is(err, domain.ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}

	// The expired code was purged, so a retry reports nothing to verify.
	if _, err := svc.VerifyOTP(ctx, "alice@example.com", "1234"); !errors.Is(err, domain.ErrOTPNotFound) {
		t.Fatalf("expected ErrOTPNotFound after purge, got %v", err)
	}
}

func TestAuthService_VerifyOTP_AlreadyVerified(t *testing.T) {
	svc, users, _, _, _ := newAuthFixture(t)
	registerVerified(t, svc, users, "alice@example.com")

	_, err := svc.VerifyOTP(context.Background(), "alice@example.com", "1234")
	if !errors.Is(err, domain.ErrEmailAlreadyVerified) {
		t.Fatalf("expected ErrEmailAlreadyVerified, got %v", err)
	}
}

func TestAuthService_VerifyOTP_BadShape(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	for _, code := range []string{"12", "12345", "abcd", ""} {
		_, err := svc.VerifyOTP(context.Background(), "alice@example.com", code)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError for %q, got %v", code, err)
		}
	}
}
