package cli

import "strconv"

// LoginCommand is a choice on the login menu.
type LoginCommand int

const (
	LoginCmd LoginCommand = iota + 1
	RegisterCmd
	ExitCmd
)

// UserCommand is a choice on the reader menu.
type UserCommand int

const (
	UserLogout UserCommand = iota
	UserSearchBooks
	UserAddBook
	UserDeleteBook
	UserModifyInfo
)

// AdminCommand is a choice on the admin panel.
type AdminCommand int

const (
	AdminLogout AdminCommand = iota
	AdminListUsers
)

// decodeChoice parses raw as one of valid.
func decodeChoice[T ~int](raw string, valid ...T) (T, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	for _, v := range valid {
		if T(n) == v {
			return v, true
		}
	}
	return 0, false
}

func ParseLoginCommand(raw string) (LoginCommand, bool) {
	return decodeChoice(raw, LoginCmd, RegisterCmd, ExitCmd)
}

func ParseUserCommand(raw string) (UserCommand, bool) {
	return decodeChoice(raw, UserLogout, UserSearchBooks, UserAddBook, UserDeleteBook, UserModifyInfo)
}

func ParseAdminCommand(raw string) (AdminCommand, bool) {
	return decodeChoice(raw, AdminLogout, AdminListUsers)
}

// choose reads until parse accepts the answer.
func choose[T ~int](p *Prompter, parse func(string) (T, bool)) (T, error) {
	for {
		raw, err := p.Line("Choice: ")
		if err != nil {
			return 0, err
		}
		if cmd, ok := parse(raw); ok {
			return cmd, nil
		}
		p.Println("Invalid menu option. Please try again.")
	}
}
