package cli

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"personal-library/library"
)

// Session is the logged-in user, handed to every menu action.
type Session struct {
	User *library.UserProfile
}

// Options configures an App.
type Options struct {
	MaxLoginAttempts int
	Logger           *zap.Logger

	// AfterSetup runs once the first administrator has been created.
	AfterSetup func() error
}

// App is one interactive terminal session.
type App struct {
	mgr         *library.LibraryManager
	p           *Prompter
	log         *zap.Logger
	maxAttempts int
	afterSetup  func() error
}

func New(mgr *library.LibraryManager, p *Prompter, opts Options) *App {
	if opts.MaxLoginAttempts < 1 {
		opts.MaxLoginAttempts = 3
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &App{
		mgr:         mgr,
		p:           p,
		log:         opts.Logger.Named("cli"),
		maxAttempts: opts.MaxLoginAttempts,
		afterSetup:  opts.AfterSetup,
	}
}

// Run shows the login menu until the user exits or input ends. The first
// administrator is created before anything else when none exists.
func (a *App) Run(ctx context.Context) error {
	needs, err := a.mgr.NeedsSetup()
	if err != nil {
		return err
	}
	if needs {
		a.p.Println("No administrator account found. Running initialisation...")
		if err := a.Setup(); err != nil {
			return ignoreEOF(err)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.p.Println()
		a.p.Println("Please choose from the following options:")
		a.p.Println("\t1. Login")
		a.p.Println("\t2. Register")
		a.p.Println("\t3. Exit")

		cmd, err := choose(a.p, ParseLoginCommand)
		if err != nil {
			return ignoreEOF(err)
		}
		switch cmd {
		case LoginCmd:
			sess, err := a.login()
			if err != nil {
				return ignoreEOF(err)
			}
			if sess == nil {
				continue
			}
			if err := a.runSession(ctx, sess); err != nil {
				return ignoreEOF(err)
			}
		case RegisterCmd:
			if err := a.register(); err != nil {
				return ignoreEOF(err)
			}
		case ExitCmd:
			a.p.Println("Exiting program...")
			return nil
		}
	}
}

func (a *App) runSession(ctx context.Context, sess *Session) error {
	if sess.User.IsAdmin {
		return a.adminMenu(sess)
	}
	return a.userMenu(ctx, sess)
}

// ignoreEOF treats exhausted input as a normal exit.
func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
