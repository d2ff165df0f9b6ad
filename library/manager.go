package library

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"personal-library/catalog"
	"personal-library/config"
	"personal-library/isbn"
)

// CatalogClient resolves an ISBN to a bibliographic record.
type CatalogClient interface {
	LookupISBN(ctx context.Context, isbn string) (*catalog.Record, error)
}

// Options tunes a LibraryManager. Zero values fall back to defaults.
type Options struct {
	SaltLength int
	BcryptCost int
	Catalog    CatalogClient
	Logger     *zap.Logger
}

// LibraryManager is a thin façade over the Database, keeping CLI code simple.
type LibraryManager struct {
	db         *Database
	catalog    CatalogClient
	saltLength int
	bcryptCost int
	log        *zap.Logger

	dummyOnce sync.Once
	dummy     string
}

// NewLibraryManager opens (or creates) the SQLite database at dbPath.
func NewLibraryManager(dbPath string, opts Options) (*LibraryManager, error) {
	db, err := NewDatabase(dbPath)
	if err != nil {
		return nil, err
	}
	return newLibraryManager(db, opts), nil
}

func newLibraryManager(db *Database, opts Options) *LibraryManager {
	if opts.SaltLength <= 0 {
		opts.SaltLength = config.DefaultSaltLength
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &LibraryManager{
		db:         db,
		catalog:    opts.Catalog,
		saltLength: opts.SaltLength,
		bcryptCost: opts.BcryptCost,
		log:        opts.Logger.Named("library"),
	}
}

// Open builds a manager from loaded settings, talking to Open Library.
func Open(cfg *config.Config, log *zap.Logger) (*LibraryManager, error) {
	client := catalog.NewOpenLibraryClient(catalog.Options{
		BaseURL:           cfg.Catalog.BaseURL,
		UserAgent:         cfg.Catalog.UserAgent,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		Logger:            log.Named("catalog"),
	})
	lm, err := NewLibraryManager(cfg.Database.Path, Options{
		SaltLength: cfg.Credentials.SaltLength,
		BcryptCost: cfg.Credentials.BcryptCost,
		Catalog:    client,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}
	log.Info("database opened", zap.String("path", cfg.Database.Path))
	return lm, nil
}

// Close closes the underlying database.
func (lm *LibraryManager) Close() error { return lm.db.Close() }

// ------------------ Catalog ------------------

// LookupISBN validates raw and asks the catalog for its record.
func (lm *LibraryManager) LookupISBN(ctx context.Context, raw string) (*catalog.Record, error) {
	if !isbn.IsValid(raw) {
		return nil, ErrInvalidISBN
	}
	if lm.catalog == nil {
		return nil, errors.New("no catalog client configured")
	}
	return lm.catalog.LookupISBN(ctx, raw)
}

// AddBookByISBN looks raw up and adds the result to the user's library
// without asking for confirmation.
func (lm *LibraryManager) AddBookByISBN(ctx context.Context, userID int64, raw string) (*catalog.Record, int64, error) {
	rec, err := lm.LookupISBN(ctx, raw)
	if err != nil {
		return nil, 0, err
	}
	bookID, err := lm.AddBook(userID, raw, rec)
	if err != nil {
		return rec, 0, err
	}
	return rec, bookID, nil
}

// ------------------ Import ------------------

// ImportResult is the outcome of one ISBN line.
type ImportResult struct {
	Line   int
	ISBN   string
	Title  string
	BookID int64
	Err    error
}

// ImportFromReader adds one ISBN per line. Blank lines and lines starting
// with '#' are skipped. A failing line does not stop the import; only a
// cancelled context or a read error does.
func (lm *LibraryManager) ImportFromReader(ctx context.Context, userID int64, r io.Reader) ([]ImportResult, error) {
	var results []ImportResult
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		rec, bookID, err := lm.AddBookByISBN(ctx, userID, raw)
		res := ImportResult{Line: line, ISBN: raw, BookID: bookID, Err: err}
		if rec != nil {
			res.Title = rec.Title
		}
		results = append(results, res)
	}
	if err := sc.Err(); err != nil {
		return results, fmt.Errorf("read isbn list: %w", err)
	}
	return results, nil
}

// ImportFromFile reads the file at path (relative paths resolve from cwd)
// and imports it.
func (lm *LibraryManager) ImportFromFile(ctx context.Context, userID int64, path string) ([]ImportResult, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return lm.ImportFromReader(ctx, userID, f)
}
