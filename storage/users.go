package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"

	"todoboard/domain"
)

// ErrDuplicateUsername is returned when registering an already-taken name.
var ErrDuplicateUsername = errors.New("username already exists")

const usersSchema = `CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
)`

// UserStore persists accounts for the auth service.
type UserStore struct {
	db *sql.DB
}

// OpenUserStore opens (creating if necessary) the account database at path.
func OpenUserStore(path string) (*UserStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(usersSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &UserStore{db: db}, nil
}

func (s *UserStore) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new account and returns it with its assigned id.
// Duplicate usernames yield ErrDuplicateUsername.
func (s *UserStore) CreateUser(ctx context.Context, username, passwordHash, email string) (domain.User, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, email, created_at) VALUES (?, ?, ?, ?)`,
		username, passwordHash, email, now)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return domain.User{}, ErrDuplicateUsername
		}
		return domain.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{ID: id, Username: username, PasswordHash: passwordHash, Email: email, CreatedAt: now}, nil
}

// FindUser returns the account with the given username, or domain.ErrNotFound.
func (s *UserStore) FindUser(ctx context.Context, username string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, email, created_at FROM users WHERE username = ?`, username)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}
