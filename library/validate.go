package library

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// NormalizeEmail trims and lower-cases an address. Uniqueness is checked on
// the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail reports ErrInvalidEmail for anything that is not a single
// well-formed address.
func ValidateEmail(email string) error {
	if len(email) > 254 || validate.Var(email, "required,email") != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateName accepts non-empty names made of letters, spaces and hyphens.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) && r != '-' {
			return ErrInvalidName
		}
	}
	return nil
}
