package library

// Book is a catalog-wide record, shared by every user whose library holds
// it. Optional catalog fields are empty when the lookup did not supply them.
type Book struct {
	ID            int64  `json:"book_id"`
	ISBN          string `json:"isbn"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	PublishDate   string `json:"publish_date,omitempty"`
	NumberOfPages int    `json:"number_of_pages,omitempty"`
	CoverURL      string `json:"cover_url,omitempty"`
}

// BookSummary is one row of a user's library listing.
type BookSummary struct {
	ID     int64  `json:"book_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

// UserProfile is what a successful login yields.
type UserProfile struct {
	ID        int64  `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	IsAdmin   bool   `json:"is_admin"`
}

// FullName joins first and last name.
func (u *UserProfile) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Registration carries the inputs of a new account. Confirm is the
// re-entered password.
type Registration struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Confirm   string
}
