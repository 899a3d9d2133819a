// Package security holds the credential policy the portal enforces before
// anything reaches the API.
package security

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Bcrypt upstream caps input at 72 bytes, so longer passwords would be
// silently truncated server-side.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// ValidatePassword checks a candidate password against the account policy.
// The returned error text is shown to the user as-is.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return errors.New("Password must be between 8 and 72 characters")
	}
	if !utf8.ValidString(password) {
		return errors.New("Password contains invalid characters")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("Password cannot be only spaces")
	}
	return nil
}

// ValidatePasswordConfirmation checks the password pair from a sign-up form.
func ValidatePasswordConfirmation(password, confirm string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if password != confirm {
		return errors.New("Passwords do not match")
	}
	return nil
}
