package cli

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"personal-library/credentials"
	"personal-library/library"
)

// login allows maxAttempts tries. A nil session with a nil error means the
// user is back at the login menu.
func (a *App) login() (*Session, error) {
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		email, err := a.p.Line("Enter user email: ")
		if err != nil {
			return nil, err
		}
		password, err := a.p.Password("Enter your password: ")
		if err != nil {
			return nil, err
		}

		user, err := a.mgr.Authenticate(email, password)
		switch {
		case err == nil:
			a.p.Println("Login successful!")
			return &Session{User: user}, nil
		case errors.Is(err, library.ErrInvalidCredentials):
			a.p.Printf("Invalid credentials. Attempt %d/%d.\n", attempt, a.maxAttempts)
		default:
			a.report(err)
			return nil, nil
		}
	}
	a.p.Println("Too many login attempts.")
	a.log.Warn("login attempts exhausted")
	return nil, nil
}

func (a *App) register() error {
	a.p.Println("== Register ==")
	req, ok, err := a.collectRegistration()
	if err != nil {
		return err
	}
	if !ok {
		a.p.Println("Registration cancelled.")
		return nil
	}
	if _, err := a.mgr.Register(req); err != nil {
		a.report(err)
		return nil
	}
	a.p.Println("Registration successful. You can now log in.")
	return nil
}

// collectRegistration prompts field by field, re-asking until each answer
// is acceptable. An empty email cancels.
func (a *App) collectRegistration() (library.Registration, bool, error) {
	var req library.Registration

	for {
		email, err := a.p.Line("Enter email (empty to cancel): ")
		if err != nil {
			return req, false, err
		}
		if email == "" {
			return req, false, nil
		}
		if err := library.ValidateEmail(library.NormalizeEmail(email)); err != nil {
			a.p.Println("Invalid email address. Please try again.")
			continue
		}
		taken, err := a.mgr.EmailRegistered(email)
		if err != nil {
			return req, false, err
		}
		if taken {
			a.p.Printf("Email '%s' already exists. Please enter a different email.\n", email)
			continue
		}
		req.Email = email
		break
	}

	var err error
	if req.FirstName, err = a.askName("first name"); err != nil {
		return req, false, err
	}
	if req.LastName, err = a.askName("last name"); err != nil {
		return req, false, err
	}

	for {
		password, err := a.p.Password("Enter a strong password: ")
		if err != nil {
			return req, false, err
		}
		if err := a.mgr.CheckPassword(password); err != nil {
			a.p.Println(passwordAdvice(err))
			continue
		}
		confirm, err := a.p.Password("Re-enter your password to confirm: ")
		if err != nil {
			return req, false, err
		}
		if password != confirm {
			a.p.Println("Passwords do not match. Please try again.")
			continue
		}
		req.Password, req.Confirm = password, confirm
		return req, true, nil
	}
}

func (a *App) askName(label string) (string, error) {
	for {
		name, err := a.p.Line("Enter your " + label + ": ")
		if err != nil {
			return "", err
		}
		if library.ValidateName(name) == nil {
			return name, nil
		}
		a.p.Println("Invalid name. Use letters, spaces and hyphens only.")
	}
}

func passwordAdvice(err error) string {
	var weak *credentials.WeakPasswordError
	if errors.As(err, &weak) {
		return "Password does not meet safety criteria. Must include " + strings.Join(weak.Missing, ", ") + "."
	}
	if errors.Is(err, credentials.ErrPasswordTooLong) {
		return "Password is too long. Please choose a shorter one."
	}
	return "Invalid password. Please try again."
}

// report prints err for the user. Store failures abort only the current
// action and are logged in full.
func (a *App) report(err error) {
	if errors.Is(err, library.ErrStore) {
		a.log.Error("operation failed", zap.Error(err))
		a.p.Println("A database error occurred; the operation was not completed.")
		return
	}
	a.p.Println(userMessage(err))
}
