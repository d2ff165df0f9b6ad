// Command import_books adds every ISBN listed in a text file to one user's
// library.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"personal-library/cli"
	"personal-library/config"
	"personal-library/library"
	"personal-library/logging"
)

const passwordEnv = "LIBRARY_IMPORT_PASSWORD"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newImportCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newImportCmd() *cobra.Command {
	var file, email, configPath string

	cmd := &cobra.Command{
		Use:          "import_books --file isbns.txt --email you@example.com",
		Short:        "Import ISBNs (one per line) into your library",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.ResolvePath(configPath))
			if err != nil {
				return err
			}
			logger, flush := logging.New(cfg.Log)
			defer flush()

			mgr, err := library.Open(cfg, logger)
			if err != nil {
				return fmt.Errorf("open library: %w", err)
			}
			defer mgr.Close()

			password := os.Getenv(passwordEnv)
			if password == "" {
				p := cli.NewPrompter(os.Stdin, cmd.ErrOrStderr())
				if password, err = p.Password("Password for " + email + ": "); err != nil {
					return fmt.Errorf("read password: %w", err)
				}
			}
			user, err := mgr.Authenticate(email, password)
			if err != nil {
				return err
			}

			logger.Info("import started", zap.Int64("user_id", user.ID), zap.String("file", file))
			results, err := mgr.ImportFromFile(cmd.Context(), user.ID, file)
			report(cmd.OutOrStdout(), results)
			if err != nil {
				return err
			}
			books, err := mgr.ListBooks(user.ID)
			if err != nil {
				return err
			}
			printLibrary(cmd.OutOrStdout(), books)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "text file with one ISBN per line")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email of the library owner")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default $LIBRARY_CONFIG or "+config.DefaultConfigPath+")")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func report(w io.Writer, results []library.ImportResult) {
	successCount, errorCount := 0, 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "line %d: %s ERROR - %v\n", r.Line, r.ISBN, r.Err)
			errorCount++
			continue
		}
		fmt.Fprintf(w, "line %d: %s SUCCESS - %s (ID: %d)\n", r.Line, r.ISBN, r.Title, r.BookID)
		successCount++
	}
	fmt.Fprintf(w, "\nImport complete!\n")
	fmt.Fprintf(w, "Successfully imported: %d books\n", successCount)
	fmt.Fprintf(w, "Errors: %d\n", errorCount)
}

func printLibrary(w io.Writer, books []library.BookSummary) {
	if len(books) == 0 {
		return
	}
	fmt.Fprintln(w, "\nYour library:")
	fmt.Fprintf(w, "%-5s %-50s %-30s %s\n", "ID", "Title", "Author", "ISBN")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, b := range books {
		fmt.Fprintf(w, "%-5d %-50s %-30s %s\n", b.ID, truncateString(b.Title, 50), truncateString(b.Author, 30), b.ISBN)
	}
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
