package model

import "errors"

// PasswordReset is a single-use reset request. The row is deleted the
// moment a reset succeeds; a consumed token can never succeed again.
type PasswordReset struct {
	ID    string `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
	Token string `db:"token" json:"-"`
}

// ForgotRequest is the request body for POST /auth/forgot.
type ForgotRequest struct {
	Email string `json:"email"`
}

// ResetRequest is the request body for POST /auth/reset-password.
type ResetRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// ErrResetNotFound is returned when no unconsumed reset request matches
// the presented token.
var ErrResetNotFound = errors.New("reset request not found")
