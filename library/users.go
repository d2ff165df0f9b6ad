package library

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"personal-library/credentials"
)

// ---------------------------------------------------------------------------
// Store helpers
// ---------------------------------------------------------------------------

type newUser struct {
	email     string
	firstName string
	lastName  string
	salt      string
	hash      string
	admin     bool
}

// EmailExists reports whether email (already normalized) is registered.
func (d *Database) EmailExists(email string) (bool, error) {
	var exists bool
	if err := d.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email).Scan(&exists); err != nil {
		return false, storeError("check email", err)
	}
	return exists, nil
}

// insertUser writes the user, salt, password and optional admin rows in one
// transaction.
func (d *Database) insertUser(u newUser) (int64, error) {
	var id int64
	err := d.WithTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`INSERT INTO users(email, firstname, lastname) VALUES(?,?,?)`, u.email, u.firstName, u.lastName)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrEmailTaken
			}
			return storeError("insert user", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return storeError("insert user", err)
		}
		if _, err := tx.Exec(`INSERT INTO salts(user_id, salt) VALUES(?,?)`, id, u.salt); err != nil {
			return storeError("insert salt", err)
		}
		if _, err := tx.Exec(`INSERT INTO passwords(user_id, password) VALUES(?,?)`, id, u.hash); err != nil {
			return storeError("insert password", err)
		}
		if u.admin {
			if _, err := tx.Exec(`INSERT INTO admins(user_id) VALUES(?)`, id); err != nil {
				return storeError("insert admin", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// userCredentials loads the profile with its salt and stored hash.
func (d *Database) userCredentials(email string) (*UserProfile, string, string, error) {
	var (
		u          UserProfile
		salt, hash string
	)
	err := d.userByEmailStmt.QueryRow(email).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &salt, &hash, &u.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", "", ErrUserNotFound
	}
	if err != nil {
		return nil, "", "", storeError("load credentials", err)
	}
	return &u, salt, hash, nil
}

// HasAdmin reports whether any administrator account exists.
func (d *Database) HasAdmin() (bool, error) {
	var exists bool
	if err := d.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM admins)`).Scan(&exists); err != nil {
		return false, storeError("check admins", err)
	}
	return exists, nil
}

// GetUser fetches a single user profile.
func (d *Database) GetUser(id int64) (*UserProfile, error) {
	var u UserProfile
	err := d.db.QueryRow(`SELECT u.user_id, u.email, u.firstname, u.lastname,
            EXISTS(SELECT 1 FROM admins a WHERE a.user_id = u.user_id)
        FROM users u WHERE u.user_id = ?`, id).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storeError("get user", err)
	}
	return &u, nil
}

// ListUsers returns all users ordered by id.
func (d *Database) ListUsers() ([]*UserProfile, error) {
	rows, err := d.db.Query(`SELECT u.user_id, u.email, u.firstname, u.lastname,
            EXISTS(SELECT 1 FROM admins a WHERE a.user_id = u.user_id)
        FROM users u ORDER BY u.user_id`)
	if err != nil {
		return nil, storeError("list users", err)
	}
	defer rows.Close()

	var users []*UserProfile
	for rows.Next() {
		var u UserProfile
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.IsAdmin); err != nil {
			return nil, storeError("list users", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list users", err)
	}
	return users, nil
}

// UpdateName changes a user's first and last name.
func (d *Database) UpdateName(id int64, firstName, lastName string) error {
	res, err := d.db.Exec(`UPDATE users SET firstname=?, lastname=? WHERE user_id=?`, firstName, lastName, id)
	if err != nil {
		return storeError("update name", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeError("update name", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Directory operations
// ---------------------------------------------------------------------------

// Register validates req and creates the account. Nothing is written unless
// every check passes.
func (lm *LibraryManager) Register(req Registration) (int64, error) {
	return lm.register(req, false)
}

// CreateAdministrator registers the first administrator. It refuses once an
// administrator exists.
func (lm *LibraryManager) CreateAdministrator(req Registration) (int64, error) {
	hasAdmin, err := lm.db.HasAdmin()
	if err != nil {
		return 0, err
	}
	if hasAdmin {
		return 0, ErrAdminExists
	}
	return lm.register(req, true)
}

// NeedsSetup reports whether the first administrator still has to be
// created.
func (lm *LibraryManager) NeedsSetup() (bool, error) {
	hasAdmin, err := lm.db.HasAdmin()
	return !hasAdmin, err
}

func (lm *LibraryManager) register(req Registration, admin bool) (int64, error) {
	email := NormalizeEmail(req.Email)
	if err := ValidateEmail(email); err != nil {
		return 0, err
	}
	firstName, lastName := strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName)
	if err := ValidateName(firstName); err != nil {
		return 0, err
	}
	if err := ValidateName(lastName); err != nil {
		return 0, err
	}
	if err := lm.CheckPassword(req.Password); err != nil {
		return 0, err
	}
	if req.Password != req.Confirm {
		return 0, ErrPasswordMismatch
	}

	taken, err := lm.db.EmailExists(email)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, ErrEmailTaken
	}

	salt, err := credentials.GenerateSalt(lm.saltLength)
	if err != nil {
		return 0, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := credentials.HashPassword(req.Password, salt, lm.bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := lm.db.insertUser(newUser{
		email:     email,
		firstName: firstName,
		lastName:  lastName,
		salt:      salt,
		hash:      hash,
		admin:     admin,
	})
	if err != nil {
		lm.log.Warn("registration failed", zap.Error(err))
		return 0, err
	}
	lm.log.Info("user registered", zap.Int64("user_id", id), zap.Bool("admin", admin))
	return id, nil
}

// CheckPassword applies the strength policy and the bcrypt length limit
// for the configured salt length.
func (lm *LibraryManager) CheckPassword(password string) error {
	if err := credentials.CheckStrength(password); err != nil {
		return validationError(err)
	}
	if limit := credentials.MaxHashInput - lm.saltLength; len(password) > limit {
		return validationError(fmt.Errorf("password must be at most %d bytes: %w", limit, credentials.ErrPasswordTooLong))
	}
	return nil
}

// Authenticate checks email and password. Every failure other than a store
// error is ErrInvalidCredentials, and unknown emails cost a bcrypt
// comparison just like wrong passwords.
func (lm *LibraryManager) Authenticate(email, password string) (*UserProfile, error) {
	user, salt, hash, err := lm.db.userCredentials(NormalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		credentials.VerifyHash(password, lm.dummyHash())
		lm.log.Info("login failed")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		lm.log.Error("login lookup failed", zap.Error(err))
		return nil, err
	}
	if !credentials.VerifyHash(password+salt, hash) {
		lm.log.Info("login failed", zap.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	lm.log.Info("login succeeded", zap.Int64("user_id", user.ID), zap.Bool("admin", user.IsAdmin))
	return user, nil
}

// dummyHash is compared against for unknown emails.
func (lm *LibraryManager) dummyHash() string {
	lm.dummyOnce.Do(func() {
		salt, err := credentials.GenerateSalt(lm.saltLength)
		if err != nil {
			return
		}
		lm.dummy, _ = credentials.HashPassword("unused-password", salt, lm.bcryptCost)
	})
	return lm.dummy
}

// EmailRegistered reports whether email, in any case, already has an
// account.
func (lm *LibraryManager) EmailRegistered(email string) (bool, error) {
	return lm.db.EmailExists(NormalizeEmail(email))
}

func (lm *LibraryManager) GetUser(id int64) (*UserProfile, error) { return lm.db.GetUser(id) }
func (lm *LibraryManager) ListUsers() ([]*UserProfile, error)     { return lm.db.ListUsers() }

// UpdateName validates and stores new names for the user.
func (lm *LibraryManager) UpdateName(id int64, firstName, lastName string) error {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if err := ValidateName(firstName); err != nil {
		return err
	}
	if err := ValidateName(lastName); err != nil {
		return err
	}
	if err := lm.db.UpdateName(id, firstName, lastName); err != nil {
		return err
	}
	lm.log.Info("user renamed", zap.Int64("user_id", id))
	return nil
}
