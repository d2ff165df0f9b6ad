package catalog

import (
	"fmt"
	"io"
	"strings"
)

// Record is the bibliographic data Open Library returns for one ISBN. Only
// Title is reliably present; everything else may be missing.
type Record struct {
	ISBN          string      `json:"-"`
	Title         string      `json:"title"`
	Authors       []Author    `json:"authors"`
	PublishDate   string      `json:"publish_date"`
	NumberOfPages *int        `json:"number_of_pages,omitempty"`
	Cover         *Cover      `json:"cover,omitempty"`
	Works         []WorkLink  `json:"works,omitempty"`
	Subjects      []Subject   `json:"subjects,omitempty"`
	Publishers    []Publisher `json:"publishers,omitempty"`
}

type Author struct {
	Name string `json:"name"`
}

type Cover struct {
	Small  string `json:"small,omitempty"`
	Medium string `json:"medium,omitempty"`
	Large  string `json:"large,omitempty"`
}

type WorkLink struct {
	Key string `json:"key"`
}

type Subject struct {
	Name string `json:"name"`
}

type Publisher struct {
	Name string `json:"name"`
}

// PrimaryAuthor returns the first author's name, or "" when none is listed.
func (r *Record) PrimaryAuthor() string {
	for _, a := range r.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			return name
		}
	}
	return ""
}

func (r *Record) AuthorNames() []string {
	names := make([]string, 0, len(r.Authors))
	for _, a := range r.Authors {
		names = append(names, a.Name)
	}
	return names
}

// PageCount returns 0 when the page count is unknown.
func (r *Record) PageCount() int {
	if r.NumberOfPages == nil {
		return 0
	}
	return *r.NumberOfPages
}

// CoverURL prefers the largest cover available.
func (r *Record) CoverURL() string {
	if r.Cover == nil {
		return ""
	}
	switch {
	case r.Cover.Large != "":
		return r.Cover.Large
	case r.Cover.Medium != "":
		return r.Cover.Medium
	default:
		return r.Cover.Small
	}
}

// Describe writes a human readable summary of the record.
func (r *Record) Describe(w io.Writer) {
	fmt.Fprintf(w, "ISBN: %s\n", r.ISBN)
	fmt.Fprintf(w, "Title: %s\n", orNotAvailable(r.Title))
	fmt.Fprintf(w, "Author(s): %s\n", orNotAvailable(strings.Join(r.AuthorNames(), ", ")))
	fmt.Fprintf(w, "Publish Date: %s\n", orNotAvailable(r.PublishDate))
	if pages := r.PageCount(); pages > 0 {
		fmt.Fprintf(w, "Number of Pages: %d\n", pages)
	} else {
		fmt.Fprintln(w, "Number of Pages: Not available")
	}
	fmt.Fprintf(w, "Cover: %s\n", orNotAvailable(r.CoverURL()))

	subjects := make([]string, 0, len(r.Subjects))
	for _, s := range r.Subjects {
		subjects = append(subjects, s.Name)
	}
	fmt.Fprintf(w, "Subjects: %s\n", orNotAvailable(truncateList(subjects, 8)))

	publishers := make([]string, 0, len(r.Publishers))
	for _, p := range r.Publishers {
		publishers = append(publishers, p.Name)
	}
	fmt.Fprintf(w, "Publishers: %s\n", orNotAvailable(strings.Join(publishers, ", ")))
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not available"
	}
	return s
}

func truncateList(items []string, limit int) string {
	if len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(items[:limit], ", "), len(items)-limit)
}
