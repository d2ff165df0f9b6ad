package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"personal-library/catalog"
	"personal-library/isbn"
	"personal-library/library"
)

func (a *App) userMenu(ctx context.Context, sess *Session) error {
	a.p.Println("==================")
	a.p.Printf("== Welcome back, %s ==\n", sess.User.FirstName)
	a.p.Println("==================")
	for {
		a.p.Println()
		a.p.Println("Choose from the options below:")
		a.p.Println("\t1. Search Your Books")
		a.p.Println("\t2. Add Book")
		a.p.Println("\t3. Delete Book")
		a.p.Println("\t4. Modify Personal Information")
		a.p.Println("\t0. Logout")

		cmd, err := choose(a.p, ParseUserCommand)
		if err != nil {
			return err
		}
		switch cmd {
		case UserSearchBooks:
			err = a.searchBooks(sess)
		case UserAddBook:
			err = a.addBook(ctx, sess)
		case UserDeleteBook:
			err = a.deleteBook(sess)
		case UserModifyInfo:
			err = a.modifyInfo(sess)
		case UserLogout:
			a.p.Println("Logging out...")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) searchBooks(sess *Session) error {
	query, err := a.p.Line("Search by title, author or ISBN (empty for all): ")
	if err != nil {
		return err
	}
	books, err := a.mgr.SearchBooks(sess.User.ID, query)
	if err != nil {
		a.report(err)
		return nil
	}
	if len(books) == 0 {
		a.p.Println("No books found.")
		return nil
	}
	return a.page(books)
}

// addBook asks for an ISBN until it validates, shows the catalog record and
// adds it after confirmation. Lookup failures change nothing.
func (a *App) addBook(ctx context.Context, sess *Session) error {
	a.p.Println("############################")
	a.p.Println("## Add Book to Collection ##")
	a.p.Println("############################")

	var raw string
	for {
		var err error
		raw, err = a.p.Line("Enter ISBN (10 or 13, empty to cancel): ")
		if err != nil {
			return err
		}
		if raw == "" {
			a.p.Println("Cancelled.")
			return nil
		}
		if isbn.IsValid(raw) {
			break
		}
		a.p.Printf("Invalid ISBN %s. Please try again.\n", raw)
	}

	a.p.Printf("Fetching information for ISBN: %s\n", raw)
	rec, err := a.mgr.LookupISBN(ctx, raw)
	if err != nil {
		a.report(err)
		return nil
	}
	a.p.Println("Book information retrieved successfully.")
	a.p.Println()
	rec.Describe(a.p.out)

	ok, err := a.p.Confirm("Add this book to your library?")
	if err != nil {
		return err
	}
	if !ok {
		a.p.Println("Book not added.")
		return nil
	}
	if _, err := a.mgr.AddBook(sess.User.ID, raw, rec); err != nil {
		a.report(err)
		return nil
	}
	a.p.Println("Book added successfully.")
	return nil
}

// deleteBook optionally lists the library, then asks for a book id until a
// confirmed removal succeeds or the user cancels.
func (a *App) deleteBook(sess *Session) error {
	list, err := a.p.Confirm("List your books first?")
	if err != nil {
		return err
	}
	if list {
		books, err := a.mgr.ListBooks(sess.User.ID)
		if err != nil {
			a.report(err)
			return nil
		}
		if len(books) == 0 {
			a.p.Println("Your library is empty.")
			return nil
		}
		if err := a.page(books); err != nil {
			return err
		}
	}

	for {
		raw, err := a.p.Line("Enter the ID of the book to delete ('cancel' to go back): ")
		if err != nil {
			return err
		}
		if raw == "" || strings.EqualFold(raw, "cancel") {
			a.p.Println("Cancelled.")
			return nil
		}
		bookID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || bookID <= 0 {
			a.p.Printf("Invalid book ID: %s\n", raw)
			continue
		}

		book, err := a.mgr.GetBook(bookID)
		if errors.Is(err, library.ErrBookNotFound) {
			a.report(err)
			continue
		}
		if err != nil {
			a.report(err)
			return nil
		}
		held, err := a.mgr.HoldsBook(sess.User.ID, bookID)
		if err != nil {
			a.report(err)
			return nil
		}
		if !held {
			a.report(library.ErrNotInLibrary)
			continue
		}

		ok, err := a.p.Confirm(fmt.Sprintf("Delete '%s' by %s from your library?", book.Title, book.Author))
		if err != nil {
			return err
		}
		if !ok {
			a.p.Println("Book not deleted.")
			return nil
		}
		if err := a.mgr.RemoveBook(sess.User.ID, bookID); err != nil {
			a.report(err)
			return nil
		}
		a.p.Println("Book deleted from your library.")
		return nil
	}
}

func (a *App) modifyInfo(sess *Session) error {
	a.p.Printf("Current name: %s\n", sess.User.FullName())
	first, err := a.askName("new first name")
	if err != nil {
		return err
	}
	last, err := a.askName("new last name")
	if err != nil {
		return err
	}
	if err := a.mgr.UpdateName(sess.User.ID, first, last); err != nil {
		a.report(err)
		return nil
	}
	sess.User.FirstName, sess.User.LastName = strings.TrimSpace(first), strings.TrimSpace(last)
	a.p.Println("Personal information updated.")
	return nil
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return "No catalog record was found for that ISBN."
	case errors.Is(err, catalog.ErrTransport):
		return "Error fetching book information: " + err.Error()
	case errors.Is(err, library.ErrInvalidISBN), errors.Is(err, catalog.ErrInvalidISBN):
		return "Invalid ISBN. Please try again."
	case errors.Is(err, library.ErrIncompleteRecord):
		return "The catalog record has no title; the book was not added."
	case errors.Is(err, library.ErrAlreadyInLibrary):
		return "That book is already in your library."
	case errors.Is(err, library.ErrBookNotFound):
		return "No book exists with that ID."
	case errors.Is(err, library.ErrNotInLibrary):
		return "That book is not in your library."
	case errors.Is(err, library.ErrEmailTaken):
		return "That email is already registered."
	case errors.Is(err, library.ErrAdminExists):
		return "An administrator already exists."
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "The request was cancelled."
	}
	return "Error: " + err.Error()
}
