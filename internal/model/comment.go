package model

import (
	"errors"
	"time"
)

// Comment represents a comment on a post.
type Comment struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"post"`
	UserID    string    `db:"user_id" json:"commented_by"`
	Body      string    `db:"body" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"commented_at"`

	Author *ProfileSummary `json:"profile,omitempty"` // Joined field
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	PostID string `json:"post"`
	Body   string `json:"comment"`
}

// UpdateCommentRequest is the request body for updating a comment.
type UpdateCommentRequest struct {
	Body string `json:"comment"`
}

// MaxCommentLength bounds comment bodies.
const MaxCommentLength = 2200

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not the owner of this comment")
	ErrCommentRequired = errors.New("comment body is required")
	ErrCommentTooLong  = errors.New("comment body too long")
)
