package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrUserExists is returned when a username is already taken.
	ErrUserExists = errors.New("user already exists")
)

// User represents a registered account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // bcrypt of the plaintext password
	PasswordMD5  string // hex md5 digest, the credential the game client sends
	CreatedAt    time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser stores a new user with both credential forms.
	CreateUser(ctx context.Context, username, passwordHash, passwordMD5 string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// ValidateUser returns the id of the user whose username and md5
	// digest both match, or ErrNotFound.
	ValidateUser(ctx context.Context, username, passwordMD5 string) (int64, error)

	// ListUsers returns every user, newest first.
	ListUsers(ctx context.Context) ([]*User, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore

	// Close closes the underlying database connection.
	Close() error
}
