package model

import (
	"errors"
	"time"
)

// Profile is the public face of a user, created when the email is
// verified. Followers live in the follows table and are mutated only
// through the follow toggle.
type Profile struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	NickName  string    `db:"nick_name" json:"nick_name"`
	AvatarURL *string   `db:"avatar_url" json:"avatar_url"`
	AvatarKey *string   `db:"avatar_key" json:"-"`
	Bio       string    `db:"bio" json:"bio"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DefaultNickName is assigned to the profile created on verification.
const DefaultNickName = "anonymous"

// UpdateProfileRequest is the request body for profile updates.
type UpdateProfileRequest struct {
	NickName *string `json:"nick_name"`
	Bio      *string `json:"bio"`
}

// ProfileSummary is the lightweight profile shape used in lists.
type ProfileSummary struct {
	ID        string  `db:"id" json:"id"`
	UserID    string  `db:"user_id" json:"user_id"`
	NickName  string  `db:"nick_name" json:"nick_name"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url"`
}

// Toggle outcome states.
const (
	ToggleFollowed   = "follow"
	ToggleUnfollowed = "unfollow"
	ToggleLiked      = "like"
	ToggleUnliked    = "unlike"
	ToggleRejected   = "rejected"
)

// FollowToggle is the structured result of a follow toggle. Rejected is
// a business outcome, not an error: a self-follow attempt reports
// State=ToggleRejected with no state change and still answers 200.
type FollowToggle struct {
	State    string `json:"result"`
	Actor    string `json:"actor"`
	Target   string `json:"target"`
	Rejected bool   `json:"-"`
}

// ProfileListResponse is the paginated profile list response.
type ProfileListResponse struct {
	Profiles   []ProfileSummary `json:"profiles"`
	NextCursor *string          `json:"next_cursor,omitempty"`
	HasMore    bool             `json:"has_more"`
}

var (
	// ErrProfileNotFound is returned when a profile cannot be found
	ErrProfileNotFound = errors.New("profile not found")
)
