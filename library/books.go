package library

import (
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"personal-library/catalog"
	"personal-library/isbn"
)

// UnknownAuthor is stored when a catalog record lists no authors.
const UnknownAuthor = "Unknown"

// AddToLibrary records that userID holds the book described by rec. Books
// are shared by ISBN, so a second user adding the same ISBN reuses the
// existing row.
func (d *Database) AddToLibrary(userID int64, rawISBN string, rec *catalog.Record) (int64, error) {
	code := isbn.Normalize(rawISBN)
	if code == "" {
		return 0, ErrInvalidISBN
	}
	if rec == nil || strings.TrimSpace(rec.Title) == "" {
		return 0, ErrIncompleteRecord
	}
	author := rec.PrimaryAuthor()
	if author == "" {
		author = UnknownAuthor
	}

	var bookID int64
	err := d.WithTx(func(tx *sql.Tx) error {
		err := tx.QueryRow(`SELECT book_id FROM books WHERE isbn = ?`, code).Scan(&bookID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			res, err := tx.Exec(`INSERT INTO books(title, author, isbn, publish_date, number_of_pages, cover_url)
                VALUES(?,?,?,?,?,?)`,
				strings.TrimSpace(rec.Title), author, code,
				nullString(rec.PublishDate), nullInt(rec.PageCount()), nullString(rec.CoverURL()))
			if err != nil {
				return storeError("insert book", err)
			}
			if bookID, err = res.LastInsertId(); err != nil {
				return storeError("insert book", err)
			}
		case err != nil:
			return storeError("find book", err)
		}

		if _, err := tx.Exec(`INSERT INTO libraries(user_id, book_id) VALUES(?,?)`, userID, bookID); err != nil {
			switch {
			case isUniqueViolation(err):
				return ErrAlreadyInLibrary
			case isForeignKeyViolation(err):
				return ErrUserNotFound
			}
			return storeError("insert membership", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return bookID, nil
}

// ListForUser returns the user's books in the order they were added.
func (d *Database) ListForUser(userID int64) ([]BookSummary, error) {
	rows, err := d.listLibraryStmt.Query(userID)
	if err != nil {
		return nil, storeError("list library", err)
	}
	return scanSummaries(rows)
}

// SearchLibrary filters the user's books by a case-insensitive substring of
// title, author or ISBN.
func (d *Database) SearchLibrary(userID int64, query string) ([]BookSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return d.ListForUser(userID)
	}
	pattern := "%" + escapeLike(query) + "%"
	rows, err := d.db.Query(`SELECT b.book_id, b.title, b.author, b.isbn
        FROM libraries l
        JOIN books b ON b.book_id = l.book_id
        WHERE l.user_id = ?
          AND (b.title LIKE ? ESCAPE '\' OR b.author LIKE ? ESCAPE '\' OR b.isbn LIKE ? ESCAPE '\')
        ORDER BY l.rowid`, userID, pattern, pattern, pattern)
	if err != nil {
		return nil, storeError("search library", err)
	}
	return scanSummaries(rows)
}

func scanSummaries(rows *sql.Rows) ([]BookSummary, error) {
	defer rows.Close()
	var books []BookSummary
	for rows.Next() {
		var b BookSummary
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN); err != nil {
			return nil, storeError("scan book", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("scan book", err)
	}
	return books, nil
}

// RemoveFromLibrary drops the membership only. The book row stays for other
// users.
func (d *Database) RemoveFromLibrary(userID, bookID int64) error {
	return d.WithTx(func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM books WHERE book_id = ?)`, bookID).Scan(&exists); err != nil {
			return storeError("check book", err)
		}
		if !exists {
			return ErrBookNotFound
		}
		res, err := tx.Exec(`DELETE FROM libraries WHERE user_id = ? AND book_id = ?`, userID, bookID)
		if err != nil {
			return storeError("remove membership", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storeError("remove membership", err)
		}
		if n == 0 {
			return ErrNotInLibrary
		}
		return nil
	})
}

// BookExists reports whether bookID names a stored book, in anyone's
// library.
func (d *Database) BookExists(bookID int64) (bool, error) {
	var exists bool
	if err := d.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM books WHERE book_id = ?)`, bookID).Scan(&exists); err != nil {
		return false, storeError("check book", err)
	}
	return exists, nil
}

// IsMember reports whether userID's library holds bookID.
func (d *Database) IsMember(userID, bookID int64) (bool, error) {
	var exists bool
	err := d.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM libraries WHERE user_id = ? AND book_id = ?)`, userID, bookID).
		Scan(&exists)
	if err != nil {
		return false, storeError("check membership", err)
	}
	return exists, nil
}

// GetBook fetches the full book row.
func (d *Database) GetBook(bookID int64) (*Book, error) {
	var (
		b           Book
		publishDate sql.NullString
		pages       sql.NullInt64
		coverURL    sql.NullString
	)
	err := d.db.QueryRow(`SELECT book_id, isbn, title, author, publish_date, number_of_pages, cover_url
        FROM books WHERE book_id = ?`, bookID).
		Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &publishDate, &pages, &coverURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, storeError("get book", err)
	}
	b.PublishDate = publishDate.String
	b.NumberOfPages = int(pages.Int64)
	b.CoverURL = coverURL.String
	return &b, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n > 0}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// ---------------------------------------------------------------------------
// Library operations
// ---------------------------------------------------------------------------

// AddBook stores rec under isbn in the user's library.
func (lm *LibraryManager) AddBook(userID int64, rawISBN string, rec *catalog.Record) (int64, error) {
	bookID, err := lm.db.AddToLibrary(userID, rawISBN, rec)
	if err != nil {
		lm.log.Warn("add book failed", zap.Int64("user_id", userID), zap.String("isbn", rawISBN), zap.Error(err))
		return 0, err
	}
	lm.log.Info("book added", zap.Int64("user_id", userID), zap.Int64("book_id", bookID))
	return bookID, nil
}

func (lm *LibraryManager) ListBooks(userID int64) ([]BookSummary, error) {
	return lm.db.ListForUser(userID)
}

func (lm *LibraryManager) SearchBooks(userID int64, query string) ([]BookSummary, error) {
	return lm.db.SearchLibrary(userID, query)
}

func (lm *LibraryManager) GetBook(bookID int64) (*Book, error) { return lm.db.GetBook(bookID) }

func (lm *LibraryManager) BookExists(bookID int64) (bool, error) { return lm.db.BookExists(bookID) }

func (lm *LibraryManager) HoldsBook(userID, bookID int64) (bool, error) {
	return lm.db.IsMember(userID, bookID)
}

// RemoveBook deletes bookID from the user's library.
func (lm *LibraryManager) RemoveBook(userID, bookID int64) error {
	if err := lm.db.RemoveFromLibrary(userID, bookID); err != nil {
		return err
	}
	lm.log.Info("book removed", zap.Int64("user_id", userID), zap.Int64("book_id", bookID))
	return nil
}
