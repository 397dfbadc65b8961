package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrUsernameTaken is returned when a username collides with another user
var ErrUsernameTaken = errors.New("username already taken")

// CreateUser inserts a new user
func (db *DB) CreateUser(user *User) error {
	_, err := db.Exec("INSERT INTO users (id, username) VALUES (?, ?)", user.ID, user.Username)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	return err
}

// GetUserByID retrieves a user by id. Returns sql.ErrNoRows when missing.
func (db *DB) GetUserByID(id string) (*User, error) {
	var u User
	err := db.QueryRow("SELECT id, username, photo FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Username, &u.PhotoURL)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername retrieves a user by exact username. Returns sql.ErrNoRows when missing.
func (db *DB) GetUserByUsername(username string) (*User, error) {
	var u User
	err := db.QueryRow("SELECT id, username, photo FROM users WHERE username = ?", username).
		Scan(&u.ID, &u.Username, &u.PhotoURL)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetUsername renames a user. A UNIQUE violation comes back as ErrUsernameTaken.
func (db *DB) SetUsername(userID, username string) error {
	_, err := db.Exec("UPDATE users SET username = ? WHERE id = ?", username, userID)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	return err
}

// SetUserPhoto stores the public URL of the user's photo
func (db *DB) SetUserPhoto(userID, photoURL string) error {
	_, err := db.Exec("UPDATE users SET photo = ? WHERE id = ?", photoURL, userID)
	return err
}

// ListUsers returns users ordered by name, optionally filtered by name prefix
func (db *DB) ListUsers(prefix string) ([]User, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if prefix == "" {
		rows, err = db.Query("SELECT id, username, photo FROM users ORDER BY username")
	} else {
		rows, err = db.Query(
			`SELECT id, username, photo FROM users WHERE username LIKE ? ESCAPE '\' ORDER BY username`,
			escapeLike(prefix)+"%",
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.PhotoURL); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ReferencedPhotos returns every photo URL still referenced by a user or conversation
func (db *DB) ReferencedPhotos() (map[string]bool, error) {
	rows, err := db.Query(`
		SELECT photo FROM users WHERE photo IS NOT NULL
		UNION
		SELECT photo FROM conversations WHERE photo IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("list referenced photos: %w", err)
	}
	defer rows.Close()

	refs := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		refs[url] = true
	}
	return refs, rows.Err()
}

func escapeLike(s string) string {
	r := make([]rune, 0, len(s))
	for _, c := range s {
		if c == '%' || c == '_' || c == '\\' {
			r = append(r, '\\')
		}
		r = append(r, c)
	}
	return string(r)
}
