package model

import (
	"errors"
	"time"
)

// RefreshToken is a server-side session record. The raw token string is
// never stored; lookups go through its SHA-256 hash.
type RefreshToken struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	TokenHash string    `db:"token_hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}

// IsExpired returns true if the token has expired.
func (t *RefreshToken) IsExpired() bool {
	return !time.Now().Before(t.ExpiresAt)
}

// TokenPair is returned after a successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"-"` // travels only as an http-only cookie
	ExpiresIn    int    `json:"expires_in"`
}

var (
	// ErrUnauthenticated covers every access/refresh token failure. No
	// subtype leaks out of the token service except for verification
	// tokens, which have their own pair below.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrTokenExpired and ErrTokenInvalid are exposed only by the email
	// verification flow, where the caller legitimately needs to know
	// whether to re-send the link.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Token API error codes (used in HTTP responses)
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)
