package cli

func (a *App) adminMenu(sess *Session) error {
	a.p.Println("======================")
	a.p.Println("==   Admin  Panel   ==")
	a.p.Println("======================")
	a.p.Printf("Signed in as %s\n", sess.User.Email)
	for {
		a.p.Println()
		a.p.Println("Choose from the options below:")
		a.p.Println("\t1. List Users")
		a.p.Println("\t0. Logout")

		cmd, err := choose(a.p, ParseAdminCommand)
		if err != nil {
			return err
		}
		switch cmd {
		case AdminListUsers:
			a.listUsers()
		case AdminLogout:
			a.p.Println("Logging out...")
			return nil
		}
	}
}

func (a *App) listUsers() {
	users, err := a.mgr.ListUsers()
	if err != nil {
		a.report(err)
		return
	}
	a.p.Printf("%-6s %-32s %-28s %s\n", "ID", "Email", "Name", "Role")
	for _, u := range users {
		role := "reader"
		if u.IsAdmin {
			role = "admin"
		}
		a.p.Printf("%-6d %-32s %-28s %s\n", u.ID, clip(u.Email, 32), clip(u.FullName(), 28), role)
	}
}
