package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError is a field-level input failure. Commands check fields in a
// fixed order and return the first failure, so callers always see a single
// field message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

const (
	titleMinLen       = 5
	titleMaxLen       = 15
	descriptionMinLen = 5
	descriptionMaxLen = 80
	usernameMinLen    = 3
	usernameMaxLen    = 20
	passwordMinLen    = 8
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
var otpPattern = regexp.MustCompile(`^\d{4}$`)

// ValidateTitle enforces the 5-15 character title constraint.
func ValidateTitle(title string) error {
	if len(title) < titleMinLen {
		return validationErr("title", "title must contain at least %d characters", titleMinLen)
	}
	if len(title) > titleMaxLen {
		return validationErr("title", "title must not exceed %d characters", titleMaxLen)
	}
	return nil
}

// ValidateDescription enforces the 5-80 character description constraint.
func ValidateDescription(description string) error {
	if len(description) < descriptionMinLen {
		return validationErr("description", "description must contain at least %d characters", descriptionMinLen)
	}
	if len(description) > descriptionMaxLen {
		return validationErr("description", "description must not exceed %d characters", descriptionMaxLen)
	}
	return nil
}

// ValidateCategory checks membership in the closed category set for kind.
func ValidateCategory(kind TransactionKind, category string) error {
	if !kind.ValidCategory(category) {
		return validationErr("category", "invalid category")
	}
	return nil
}

// ValidateAmount requires a strictly positive amount.
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return validationErr("amount", "amount must be a positive number")
	}
	return nil
}

// ValidateDate requires the YYYY-MM-DD shape. The date is stored verbatim, so
// only the shape is checked here.
func ValidateDate(date string) error {
	if !datePattern.MatchString(date) {
		return validationErr("date", "invalid date format")
	}
	return nil
}

// ValidateTransactionFields runs the full field check in the fixed order
// title, description, category, amount, date and returns the first failure.
func ValidateTransactionFields(kind TransactionKind, title, description, category string, amount float64, date string) error {
	if err := ValidateTitle(title); err != nil {
		return err
	}
	if err := ValidateDescription(description); err != nil {
		return err
	}
	if err := ValidateCategory(kind, category); err != nil {
		return err
	}
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	return ValidateDate(date)
}

// ValidateUsername enforces the 3-20 character username constraint.
func ValidateUsername(username string) error {
	if len(username) < usernameMinLen {
		return validationErr("username", "username must contain at least %d characters", usernameMinLen)
	}
	if len(username) > usernameMaxLen {
		return validationErr("username", "username must not exceed %d characters", usernameMaxLen)
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < passwordMinLen {
		return validationErr("password", "password must contain at least %d characters", passwordMinLen)
	}
	return nil
}

// ValidateEmail checks the RFC shape of an address. Deliverability is proven
// by the OTP round trip, not here.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return validationErr("email", "invalid email address")
	}
	return nil
}

// ValidateOTPCode requires a 4-digit numeric code.
func ValidateOTPCode(code string) error {
	if !otpPattern.MatchString(code) {
		return validationErr("otp", "invalid OTP")
	}
	return nil
}

// ValidatePagination requires page >= 1 and pageSize >= 1.
func ValidatePagination(page, pageSize int) error {
	if page < 1 {
		return validationErr("page", "invalid page number")
	}
	if pageSize < 1 {
		return validationErr("pageSize", "invalid page size")
	}
	return nil
}
