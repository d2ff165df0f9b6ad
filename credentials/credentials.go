// Package credentials generates salts, hashes salted passwords with bcrypt
// and enforces the password strength policy.
package credentials

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password CheckStrength accepts.
const MinPasswordLength = 8

// MaxHashInput is bcrypt's input limit; password+salt must fit inside it.
const MaxHashInput = 72

var (
	ErrPasswordTooLong = errors.New("password and salt exceed 72 bytes")
	ErrInvalidLength   = errors.New("salt length must be positive")
)

// saltAlphabet is printable ASCII from '!' to '~': no space, no control
// characters.
var saltAlphabet = func() []byte {
	chars := make([]byte, 0, '~'-'!'+1)
	for c := byte('!'); c <= '~'; c++ {
		chars = append(chars, c)
	}
	return chars
}()

// GenerateSalt returns length characters drawn uniformly from saltAlphabet
// using crypto/rand.
func GenerateSalt(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}
	limit := big.NewInt(int64(len(saltAlphabet)))
	salt := make([]byte, length)
	for i := range salt {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		salt[i] = saltAlphabet[n.Int64()]
	}
	return string(salt), nil
}

// HashPassword hashes password+salt with bcrypt at the given cost. The
// encoded result carries its own cost and bcrypt salt.
func HashPassword(password, salt string, cost int) (string, error) {
	salted := password + salt
	if len(salted) > MaxHashInput {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(salted), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// VerifyHash reports whether candidate (password+salt) matches stored.
// Mismatches and malformed hashes both report false.
func VerifyHash(candidate, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}

// WeakPasswordError lists the strength rules a password failed.
type WeakPasswordError struct {
	Missing []string
}

func (e *WeakPasswordError) Error() string {
	return "password must contain " + strings.Join(e.Missing, ", ")
}

// CheckStrength enforces: at least MinPasswordLength characters, one
// uppercase letter, one lowercase letter, one digit and one symbol.
func CheckStrength(password string) error {
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsNumber(r):
			symbol = true
		}
	}

	var missing []string
	if len([]rune(password)) < MinPasswordLength {
		missing = append(missing, fmt.Sprintf("at least %d characters", MinPasswordLength))
	}
	if !upper {
		missing = append(missing, "an uppercase letter")
	}
	if !lower {
		missing = append(missing, "a lowercase letter")
	}
	if !digit {
		missing = append(missing, "a digit")
	}
	if !symbol {
		missing = append(missing, "a symbol")
	}
	if len(missing) > 0 {
		return &WeakPasswordError{Missing: missing}
	}
	return nil
}
