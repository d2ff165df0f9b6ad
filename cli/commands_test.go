package cli

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personal-library/library"
)

func TestParseCommands(t *testing.T) {
	tests := []struct {
		raw       string
		wantLogin LoginCommand
		loginOK   bool
		wantUser  UserCommand
		userOK    bool
	}{
		{"1", LoginCmd, true, UserSearchBooks, true},
		{"3", ExitCmd, true, UserDeleteBook, true},
		{"0", 0, false, UserLogout, true},
		{"4", 0, false, UserModifyInfo, true},
		{"5", 0, false, 0, false},
		{"one", 0, false, 0, false},
		{"", 0, false, 0, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.raw), func(t *testing.T) {
			login, ok := ParseLoginCommand(tt.raw)
			assert.Equal(t, tt.loginOK, ok)
			assert.Equal(t, tt.wantLogin, login)

			user, ok := ParseUserCommand(tt.raw)
			assert.Equal(t, tt.userOK, ok)
			assert.Equal(t, tt.wantUser, user)
		})
	}

	cmd, ok := ParseAdminCommand("1")
	assert.True(t, ok)
	assert.Equal(t, AdminListUsers, cmd)
	_, ok = ParseAdminCommand("2")
	assert.False(t, ok)
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("what\nYES\nn\n"), &out)

	ok, err := p.Confirm("Proceed?")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = p.Confirm("Again?")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Please answer y or n.")
}

func TestPasswordFromNonTerminal(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader(" spaced secret \r\n"), &out)

	pw, err := p.Password("Password: ")
	require.NoError(t, err)
	assert.Equal(t, " spaced secret ", pw)
}

func TestPagerNavigation(t *testing.T) {
	books := make([]library.BookSummary, 25)
	for i := range books {
		books[i] = library.BookSummary{ID: int64(i + 1), Title: fmt.Sprintf("Book %02d", i+1), Author: "Anon", ISBN: "0306406152"}
	}

	var out bytes.Buffer
	app := &App{p: NewPrompter(strings.NewReader("n\np\np\ng\n9\nbogus\nq\n"), &out)}
	require.NoError(t, app.page(books))

	s := out.String()
	assert.Contains(t, s, "Page 1 of 3 (25 books)")
	assert.Contains(t, s, "Page 2 of 3")
	assert.Contains(t, s, "Already on the first page.")
	assert.Contains(t, s, "Page 3 of 3")
	assert.Contains(t, s, "Book 25")
	assert.Contains(t, s, "Unknown command: bogus")
}

func TestPagerShortListPrintsOnce(t *testing.T) {
	var out bytes.Buffer
	app := &App{p: NewPrompter(strings.NewReader(""), &out)}
	require.NoError(t, app.page([]library.BookSummary{{ID: 1, Title: "Dune", Author: "Frank Herbert", ISBN: "0306406152"}}))
	assert.NotContains(t, out.String(), "Page 1")
	assert.Contains(t, out.String(), "Dune")
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abcd…", clip("abcdefgh", 5))
}
