package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Database provides high-level helpers around a SQLite connection.
type Database struct {
	db *sql.DB

	userByEmailStmt *sql.Stmt
	listLibraryStmt *sql.Stmt
}

// NewDatabase opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	// Enable busy_timeout and foreign keys.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return newDatabase(db)
}

// newDatabase wraps an already migrated handle. Tests use it with sqlmock.
func newDatabase(db *sql.DB) (*Database, error) {
	database := &Database{db: db}
	if err := database.prepareStatements(); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	if d.userByEmailStmt != nil {
		d.userByEmailStmt.Close()
	}
	if d.listLibraryStmt != nil {
		d.listLibraryStmt.Close()
	}
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id INTEGER PRIMARY KEY AUTOINCREMENT,
            email TEXT NOT NULL UNIQUE COLLATE NOCASE,
            firstname TEXT NOT NULL,
            lastname TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS passwords (
            user_id INTEGER NOT NULL UNIQUE REFERENCES users(user_id) ON DELETE CASCADE ON UPDATE CASCADE,
            password TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS salts (
            user_id INTEGER NOT NULL UNIQUE REFERENCES users(user_id) ON DELETE CASCADE ON UPDATE CASCADE,
            salt TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS admins (
            user_id INTEGER NOT NULL UNIQUE REFERENCES users(user_id) ON DELETE CASCADE ON UPDATE CASCADE
        );`,
		`CREATE TABLE IF NOT EXISTS books (
            book_id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            isbn TEXT NOT NULL UNIQUE,
            publish_date TEXT,
            number_of_pages INTEGER,
            cover_url TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS libraries (
            user_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
            book_id INTEGER NOT NULL REFERENCES books(book_id) ON DELETE RESTRICT,
            PRIMARY KEY (user_id, book_id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_libraries_book ON libraries(book_id);`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

const (
	userByEmailQuery = `SELECT u.user_id, u.email, u.firstname, u.lastname, s.salt, p.password,
            EXISTS(SELECT 1 FROM admins a WHERE a.user_id = u.user_id)
        FROM users u
        JOIN salts s ON s.user_id = u.user_id
        JOIN passwords p ON p.user_id = u.user_id
        WHERE u.email = ?`

	listLibraryQuery = `SELECT b.book_id, b.title, b.author, b.isbn
        FROM libraries l
        JOIN books b ON b.book_id = l.book_id
        WHERE l.user_id = ?
        ORDER BY l.rowid`
)

func (d *Database) prepareStatements() error {
	var err error
	if d.userByEmailStmt, err = d.db.Prepare(userByEmailQuery); err != nil {
		return err
	}
	if d.listLibraryStmt, err = d.db.Prepare(listLibraryQuery); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

// WithTx runs fn inside a transaction. The transaction commits only when fn
// returns nil; errors and panics roll it back.
func (d *Database) WithTx(fn func(tx *sql.Tx) error) (err error) {
	tx, err := d.db.Begin()
	if err != nil {
		return storeError("begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return storeError("commit", err)
	}
	return nil
}
