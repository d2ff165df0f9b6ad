package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"personal-library/cli"
	"personal-library/config"
	"personal-library/library"
	"personal-library/logging"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "personal-library",
		Short:        "Keep track of the books you own",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(configPath, func(app *cli.App) error {
				return app.Run(cmd.Context())
			})
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default $LIBRARY_CONFIG or "+config.DefaultConfigPath+")")

	root.AddCommand(
		&cobra.Command{
			Use:   "setup",
			Short: "Create the first administrator account",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(configPath, func(app *cli.App) error { return app.Setup() })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "personal-library", version)
			},
		},
	)
	return root
}

// withApp loads settings, opens the library and hands an interactive App to
// fn. Everything is closed again when fn returns.
func withApp(configPath string, fn func(*cli.App) error) error {
	cfg, err := config.Load(config.ResolvePath(configPath))
	if err != nil {
		return err
	}

	logger, flush := logging.New(cfg.Log)
	defer flush()

	mgr, err := library.Open(cfg, logger)
	if err != nil {
		logger.Error("open library", zap.Error(err))
		return fmt.Errorf("open library: %w", err)
	}
	defer mgr.Close()

	app := cli.New(mgr, cli.NewPrompter(os.Stdin, os.Stdout), cli.Options{
		MaxLoginAttempts: cfg.Session.MaxLoginAttempts,
		Logger:           logger,
		AfterSetup: func() error {
			if cfg.FileExists() {
				return nil
			}
			logger.Info("writing configuration", zap.String("path", cfg.Path()))
			return cfg.Save()
		},
	})
	return fn(app)
}
