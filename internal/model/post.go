package model

import (
	"errors"
	"time"
)

// Post represents a user's post. A post with ParentID set is a share;
// its displayed body is the parent's body.
type Post struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Body      string    `db:"body" json:"-"`
	ParentID  *string   `db:"parent_id" json:"parent_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Joined fields (not in posts table)
	DisplayBody  string          `json:"post"`
	IsShared     bool            `json:"is_shared"`
	IsLiked      bool            `json:"is_liked"`
	LikeCount    int             `db:"like_count" json:"count_likes"`
	CommentCount int             `db:"comment_count" json:"count_comments"`
	Tags         []Tag           `json:"tags"`
	Author       *ProfileSummary `json:"profile,omitempty"`
	Parent       *Post           `json:"parent,omitempty"`
}

// Resolve fills the derived display fields. For shares the parent's body
// is surfaced as the displayed body.
func (p *Post) Resolve() {
	p.IsShared = p.ParentID != nil
	if p.IsShared && p.Parent != nil {
		p.DisplayBody = p.Parent.Body
		p.Parent.DisplayBody = p.Parent.Body
	} else {
		p.DisplayBody = p.Body
	}
}

// Tag is a hashtag extracted from post bodies. Names are case-sensitive
// and globally unique.
type Tag struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CreatePostRequest is the request body for creating or updating a post.
type CreatePostRequest struct {
	Body string `json:"post"`
}

// LikeToggle is the structured result of a like toggle.
type LikeToggle struct {
	State string `json:"result"`
	Post  string `json:"post"`
	Actor string `json:"actor"`
}

// PostListResponse is the paginated post list response.
type PostListResponse struct {
	Posts      []Post  `json:"posts"`
	NextCursor *string `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
}

// MaxPostBodyLength bounds post bodies.
const MaxPostBodyLength = 2200

// Post errors
var (
	ErrPostNotFound   = errors.New("post not found")
	ErrNotPostOwner   = errors.New("not the owner of this post")
	ErrBodyRequired   = errors.New("post body is required")
	ErrBodyTooLong    = errors.New("post body too long")
	ErrTagNotFound    = errors.New("tag not found")
	ErrNotShareParent = errors.New("post is not a share")
)
