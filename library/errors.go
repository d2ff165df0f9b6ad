package library

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Error kinds. Every error returned by this package matches exactly one of
// them with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStore      = errors.New("store failure")

	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var (
	ErrInvalidEmail     = fmt.Errorf("%w: invalid email address", ErrValidation)
	ErrInvalidName      = fmt.Errorf("%w: names may contain only letters, spaces and hyphens", ErrValidation)
	ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", ErrValidation)
	ErrInvalidISBN      = fmt.Errorf("%w: invalid ISBN", ErrValidation)
	ErrIncompleteRecord = fmt.Errorf("%w: catalog record has no title", ErrValidation)
	ErrEmailTaken       = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrAlreadyInLibrary = fmt.Errorf("%w: book already in your library", ErrConflict)
	ErrAdminExists      = fmt.Errorf("%w: an administrator already exists", ErrConflict)
	ErrUserNotFound     = fmt.Errorf("%w: no such user", ErrNotFound)
	ErrBookNotFound     = fmt.Errorf("%w: no book with that id", ErrNotFound)
	ErrNotInLibrary     = fmt.Errorf("%w: book is not in your library", ErrNotFound)
)

// validationError wraps ErrValidation around a lower level cause such as a
// credentials.WeakPasswordError.
func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
