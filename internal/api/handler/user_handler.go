package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/davinci-it/expense-tracker/internal/api/middleware"
	"github.com/davinci-it/expense-tracker/internal/core/domain"
	"github.com/davinci-it/expense-tracker/internal/core/ports"
)

// UserHandler handles account, session and verification routes.
type UserHandler struct {
	service    ports.AuthService
	sessionTTL time.Duration
}

func NewUserHandler(service ports.AuthService, sessionTTL time.Duration) *UserHandler {
	return &UserHandler{service: service, sessionTTL: sessionTTL}
}

// Register creates a new account and opens a session.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Router       /users/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, token, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	h.setSessionCookie(c, token)
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login authenticates a user and opens a session.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  userResponse
// @Failure      401   {object}  map[string]string
// @Router       /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, token, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, token)
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Logout closes the session by expiring the cookie.
//
// @Summary      Logout
// @Tags         users
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /users/logout [post]
func (h *UserHandler) Logout(c echo.Context) error {
	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out successfully"})
}

// Profile returns the authenticated user's account.
//
// @Summary      Get profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Router       /users/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.service.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateProfile applies a partial username/email update.
//
// @Summary      Update profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Fields to update"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Router       /users/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), ports.UpdateProfileInput{
		UserID:   userID,
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// ResetPassword replaces the password after checking the old one.
//
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Old and new password"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  map[string]string
// @Router       /users/password [put]
func (h *UserHandler) ResetPassword(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.ResetPassword(c.Request().Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated successfully"})
}

// SendOTP emails a fresh verification code.
//
// @Summary      Send verification OTP
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      sendOTPRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      429   {object}  map[string]string
// @Router       /users/otp/send [post]
func (h *UserHandler) SendOTP(c echo.Context) error {
	var req sendOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.SendOTP(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "OTP sent successfully"})
}

// VerifyOTP checks the submitted code and marks the email verified.
//
// @Summary      Verify email with OTP
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      verifyOTPRequest  true  "Email and code"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /users/otp/verify [post]
func (h *UserHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.service.VerifyOTP(c.Request().Context(), req.Email, req.OTP); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "email verified successfully"})
}

// setSessionCookie delivers the JWT as an HTTP-only cookie so scripts never
// see the token.
func (h *UserHandler) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *UserHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
	}
}
