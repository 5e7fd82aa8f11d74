package users

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/common"
)

const (
	maxEmailLen       = 254
	minPasswordLen    = 8
	maxPasswordBytes  = 72 // bcrypt input limit
	minPINLen         = 4
	maxPINLen         = 12
	maxDisplayNameLen = 120
)

// ValidateEmail accepts a bare address with exactly one '@'.
func ValidateEmail(email string) error {
	if email == "" {
		return common.Invalid("email", "is required")
	}
	if len(email) > maxEmailLen {
		return common.Invalid("email", "is too long")
	}
	if strings.Count(email, "@") != 1 {
		return common.Invalid("email", "is malformed")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return common.Invalid("email", "is malformed")
	}
	return nil
}

// ValidatePassword enforces the login password length policy.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return common.Invalid("password", "must be at least 8 characters")
	}
	if len(password) > maxPasswordBytes {
		return common.Invalid("password", "must be at most 72 bytes")
	}
	return nil
}

// ValidatePIN accepts 4 to 12 decimal digits.
func ValidatePIN(pin string) error {
	if len(pin) < minPINLen || len(pin) > maxPINLen {
		return common.Invalid("pin", "must be 4 to 12 digits")
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return common.Invalid("pin", "must contain digits only")
		}
	}
	return nil
}

func validateName(name string) error {
	if utf8.RuneCountInString(name) > maxDisplayNameLen {
		return common.Invalid("name", "is too long")
	}
	return nil
}
