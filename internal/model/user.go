package model

import (
	"errors"
	"time"
)

// User represents a user account.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"` // "-" hides from JSON output
	IsActive     bool      `db:"is_active" json:"is_active"`
	IsStaff      bool      `db:"is_staff" json:"-"`
	IsSuperuser  bool      `db:"is_superuser" json:"-"`
	IsVerified   bool      `db:"is_verified" json:"is_verified"`
	DateJoined   time.Time `db:"date_joined" json:"date_joined"`
}

// RegisterRequest represents the data needed to register a new user.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the data needed to log in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries the authenticated user plus both tokens. The handler
// decides transport: access token in the body, refresh token in an
// http-only cookie.
type LoginResult struct {
	User         *User
	AccessToken  string
	RefreshToken string
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when the email is already registered
	ErrEmailExists = errors.New("email already exists")

	// ErrUsernameExists is returned when the username is already taken
	ErrUsernameExists = errors.New("username already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotVerified is returned when a correct credential pair is
	// presented for an account that has not confirmed its email
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrAccountDisabled is returned when a correct credential pair is
	// presented for a deactivated account
	ErrAccountDisabled = errors.New("account disabled")

	// ErrValidation marks malformed or conflicting input
	ErrValidation = errors.New("validation error")
)
