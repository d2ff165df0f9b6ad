package cli

import (
	"fmt"
	"strconv"
	"strings"

	"personal-library/library"
)

const pageSize = 10

// PrettyBook formats a book for lists.
func PrettyBook(b library.BookSummary) string {
	return fmt.Sprintf("%-6d %-32s %-24s %s", b.ID, clip(b.Title, 32), clip(b.Author, 24), b.ISBN)
}

func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// page prints books a page at a time. Short lists print directly; longer
// ones wait for [n]ext, [p]revious, [g]oto or [q]uit between pages.
func (a *App) page(books []library.BookSummary) error {
	pages := (len(books) + pageSize - 1) / pageSize
	current := 0

	for {
		start := current * pageSize
		end := min(start+pageSize, len(books))

		a.p.Printf("%-6s %-32s %-24s %s\n", "ID", "Title", "Author", "ISBN")
		for _, b := range books[start:end] {
			a.p.Println(PrettyBook(b))
		}
		if pages == 1 {
			return nil
		}
		a.p.Printf("Page %d of %d (%d books)\n", current+1, pages, len(books))

		input, err := a.p.Line("[n]ext | [p]revious | [g]oto page | [q]uit: ")
		if err != nil {
			return err
		}
		switch strings.ToLower(input) {
		case "n", "next", "":
			if current < pages-1 {
				current++
			} else {
				a.p.Println("Already on the last page.")
			}
		case "p", "prev", "previous":
			if current > 0 {
				current--
			} else {
				a.p.Println("Already on the first page.")
			}
		case "g", "goto":
			raw, err := a.p.Line(fmt.Sprintf("Enter page number (1-%d): ", pages))
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				a.p.Println("Invalid page number!")
				continue
			}
			current = max(0, min(n-1, pages-1))
		case "q", "quit":
			return nil
		default:
			a.p.Printf("Unknown command: %s\n", input)
		}
	}
}
