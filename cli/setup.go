package cli

import (
	"errors"
	"fmt"

	"personal-library/library"
)

var errSetupCancelled = errors.New("setup cancelled")

// Setup creates the first administrator and then runs AfterSetup.
func (a *App) Setup() error {
	needs, err := a.mgr.NeedsSetup()
	if err != nil {
		return err
	}
	if !needs {
		a.p.Println(userMessage(library.ErrAdminExists))
		return nil
	}

	a.p.Println("== Create the administrator account ==")
	req, ok, err := a.collectRegistration()
	if err != nil {
		return err
	}
	if !ok {
		return errSetupCancelled
	}
	id, err := a.mgr.CreateAdministrator(req)
	if err != nil {
		return fmt.Errorf("create administrator: %w", err)
	}
	a.p.Printf("Administrator account created (ID %d).\n", id)

	if a.afterSetup != nil {
		if err := a.afterSetup(); err != nil {
			return fmt.Errorf("save configuration: %w", err)
		}
		a.p.Println("Configuration saved.")
	}
	return nil
}
