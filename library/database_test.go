package library

import (
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"personal-library/catalog"
)

func tempDB(t *testing.T) *Database {
	t.Helper()
	dir := t.TempDir()
	db, err := NewDatabase(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func addUser(t *testing.T, db *Database, email string) int64 {
	t.Helper()
	id, err := db.insertUser(newUser{
		email:     email,
		firstName: "Test",
		lastName:  "User",
		salt:      "salt",
		hash:      "hash",
	})
	if err != nil {
		t.Fatalf("insert user %s: %v", email, err)
	}
	return id
}

func record(title, author string) *catalog.Record {
	rec := &catalog.Record{Title: title}
	if author != "" {
		rec.Authors = []catalog.Author{{Name: author}}
	}
	return rec
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")
	for i := 0; i < 2; i++ {
		db, err := NewDatabase(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		db.Close()
	}
}

func TestEmailUniqueIgnoresCase(t *testing.T) {
	db := tempDB(t)
	addUser(t, db, "Reader@Example.com")

	exists, err := db.EmailExists("reader@example.com")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatalf("lookup should ignore case")
	}

	_, err = db.insertUser(newUser{email: "READER@example.com", firstName: "A", lastName: "B", salt: "s", hash: "h"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
}

func TestHasAdmin(t *testing.T) {
	db := tempDB(t)
	if has, _ := db.HasAdmin(); has {
		t.Fatalf("fresh database has no admin")
	}
	if _, err := db.insertUser(newUser{email: "root@example.com", firstName: "R", lastName: "Oot", salt: "s", hash: "h", admin: true}); err != nil {
		t.Fatalf("insert admin: %v", err)
	}
	has, err := db.HasAdmin()
	if err != nil || !has {
		t.Fatalf("want admin, got %v %v", has, err)
	}
}

func TestAddToLibraryListsOnce(t *testing.T) {
	db := tempDB(t)
	uid := addUser(t, db, "a@example.com")

	bookID, err := db.AddToLibrary(uid, "0-306-40615-2", record("Dune", "Frank Herbert"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	books, err := db.ListForUser(uid)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(books) != 1 || books[0].ID != bookID {
		t.Fatalf("want exactly book %d, got %+v", bookID, books)
	}
	if books[0].ISBN != "0306406152" || books[0].Author != "Frank Herbert" {
		t.Fatalf("unexpected summary %+v", books[0])
	}

	if _, err := db.AddToLibrary(uid, "0306406152", record("Dune", "Frank Herbert")); !errors.Is(err, ErrAlreadyInLibrary) {
		t.Fatalf("want ErrAlreadyInLibrary, got %v", err)
	}
}

func TestAddToLibrarySharesBookByISBN(t *testing.T) {
	db := tempDB(t)
	alice := addUser(t, db, "alice@example.com")
	bob := addUser(t, db, "bob@example.com")

	first, err := db.AddToLibrary(alice, "9780306406157", record("Dune", "Frank Herbert"))
	if err != nil {
		t.Fatalf("alice add: %v", err)
	}
	second, err := db.AddToLibrary(bob, "978-0-306-40615-7", record("Dune", "Frank Herbert"))
	if err != nil {
		t.Fatalf("bob add: %v", err)
	}
	if first != second {
		t.Fatalf("same ISBN should reuse book %d, got %d", first, second)
	}
}

func TestAddToLibraryRejectsBadInput(t *testing.T) {
	db := tempDB(t)
	uid := addUser(t, db, "a@example.com")

	tests := []struct {
		name string
		isbn string
		rec  *catalog.Record
		want error
	}{
		{"bad isbn", "12345", record("Dune", "Frank Herbert"), ErrInvalidISBN},
		{"bad checksum", "0306406153", record("Dune", "Frank Herbert"), ErrInvalidISBN},
		{"nil record", "0306406152", nil, ErrIncompleteRecord},
		{"no title", "0306406152", record("  ", "Frank Herbert"), ErrIncompleteRecord},
		{"unknown user", "0306406152", record("Dune", "Frank Herbert"), ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uid
			if tt.want == ErrUserNotFound {
				id = uid + 100
			}
			if _, err := db.AddToLibrary(id, tt.isbn, tt.rec); !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}

	if books, _ := db.ListForUser(uid); len(books) != 0 {
		t.Fatalf("failed adds must not leave rows, got %+v", books)
	}
}

func TestAddToLibraryOptionalFields(t *testing.T) {
	db := tempDB(t)
	uid := addUser(t, db, "a@example.com")

	pages := 412
	rec := record("Dune", "")
	rec.NumberOfPages = &pages
	rec.PublishDate = "1965"
	rec.Cover = &catalog.Cover{Small: "s.jpg", Large: "l.jpg"}

	bookID, err := db.AddToLibrary(uid, "0306406152", rec)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	b, err := db.GetBook(bookID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if b.Author != UnknownAuthor || b.NumberOfPages != 412 || b.PublishDate != "1965" || b.CoverURL != "l.jpg" {
		t.Fatalf("unexpected book %+v", b)
	}

	bare, err := db.AddToLibrary(uid, "9780306406157", record("Bare", "Someone"))
	if err != nil {
		t.Fatalf("add bare: %v", err)
	}
	b, err = db.GetBook(bare)
	if err != nil {
		t.Fatalf("get bare: %v", err)
	}
	if b.NumberOfPages != 0 || b.PublishDate != "" || b.CoverURL != "" {
		t.Fatalf("absent fields should stay empty, got %+v", b)
	}
}

func TestRemoveFromLibraryAffectsOnlyOwner(t *testing.T) {
	db := tempDB(t)
	alice := addUser(t, db, "alice@example.com")
	bob := addUser(t, db, "bob@example.com")

	bookID, _ := db.AddToLibrary(alice, "0306406152", record("Dune", "Frank Herbert"))
	if _, err := db.AddToLibrary(bob, "0306406152", record("Dune", "Frank Herbert")); err != nil {
		t.Fatalf("bob add: %v", err)
	}

	if err := db.RemoveFromLibrary(alice, bookID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if member, _ := db.IsMember(alice, bookID); member {
		t.Fatalf("alice should no longer hold the book")
	}
	if member, _ := db.IsMember(bob, bookID); !member {
		t.Fatalf("bob's copy must survive")
	}
	if exists, _ := db.BookExists(bookID); !exists {
		t.Fatalf("book row must survive")
	}

	if err := db.RemoveFromLibrary(alice, bookID); !errors.Is(err, ErrNotInLibrary) {
		t.Fatalf("want ErrNotInLibrary, got %v", err)
	}
	if err := db.RemoveFromLibrary(alice, bookID+50); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("want ErrBookNotFound, got %v", err)
	}
}

func TestDeletingUserCascades(t *testing.T) {
	db := tempDB(t)
	uid := addUser(t, db, "a@example.com")
	bookID, _ := db.AddToLibrary(uid, "0306406152", record("Dune", "Frank Herbert"))

	if _, err := db.db.Exec(`DELETE FROM users WHERE user_id = ?`, uid); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	for _, table := range []string{"passwords", "salts", "libraries"} {
		var n int
		if err := db.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Fatalf("%s should be empty after cascade, has %d rows", table, n)
		}
	}
	if exists, _ := db.BookExists(bookID); !exists {
		t.Fatalf("books are not owned by users")
	}
}

func TestBookDeleteRestrictedWhileHeld(t *testing.T) {
	db := tempDB(t)
	uid := addUser(t, db, "a@example.com")
	bookID, _ := db.AddToLibrary(uid, "0306406152", record("Dune", "Frank Herbert"))

	if _, err := db.db.Exec(`DELETE FROM books WHERE book_id = ?`, bookID); err == nil {
		t.Fatalf("deleting a held book should fail")
	}
}

func TestSearchLibrary(t *testing.T) {
	db := tempDB(t)
	uid := addUser(t, db, "a@example.com")
	db.AddToLibrary(uid, "0306406152", record("Dune", "Frank Herbert"))
	db.AddToLibrary(uid, "9780306406157", record("Emma", "Jane Austen"))

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"dune", 1},
		{"AUSTEN", 1},
		{"978030", 1},
		{"%", 0},
		{"nothing", 0},
	}
	for _, tt := range tests {
		res, err := db.SearchLibrary(uid, tt.query)
		if err != nil {
			t.Fatalf("search %q: %v", tt.query, err)
		}
		if len(res) != tt.want {
			t.Errorf("search %q: want %d, got %d", tt.query, tt.want, len(res))
		}
	}
}

func TestUpdateNameUnknownUser(t *testing.T) {
	db := tempDB(t)
	if err := db.UpdateName(42, "A", "B"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Store failures
// ---------------------------------------------------------------------------

func setupMockDB(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	mock.ExpectPrepare(regexp.QuoteMeta("JOIN salts s ON s.user_id = u.user_id"))
	mock.ExpectPrepare(regexp.QuoteMeta("FROM libraries l"))
	db, err := newDatabase(sqlDB)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db, mock
}

func TestInsertUserRollsBackOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users(email, firstname, lastname)")).
		WithArgs("a@example.com", "A", "B").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO salts(user_id, salt)")).
		WithArgs(int64(7), "s").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err := db.insertUser(newUser{email: "a@example.com", firstName: "A", lastName: "B", salt: "s", hash: "h"})
	if !errors.Is(err, ErrStore) {
		t.Fatalf("want ErrStore, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAddToLibraryRollsBackOnMembershipFailure(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT book_id FROM books WHERE isbn = ?")).
		WithArgs("0306406152").
		WillReturnRows(sqlmock.NewRows([]string{"book_id"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO books(")).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO libraries(user_id, book_id)")).
		WithArgs(int64(1), int64(3)).
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	_, err := db.AddToLibrary(1, "0306406152", record("Dune", "Frank Herbert"))
	if !errors.Is(err, ErrStore) {
		t.Fatalf("want ErrStore, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestHasAdminStoreError(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM admins)")).
		WillReturnError(errors.New("no such table: admins"))

	if _, err := db.HasAdmin(); !errors.Is(err, ErrStore) {
		t.Fatalf("want ErrStore, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
