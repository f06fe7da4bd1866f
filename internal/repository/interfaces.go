package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"waypost/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// MarkVerified flips is_verified inside the given transaction and
	// reports whether this call performed the transition.
	MarkVerified(ctx context.Context, tx *sqlx.Tx, userID string) (bool, error)
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	// DeleteByTokenHash removes every matching record and returns the
	// number deleted. Deleting an absent token is not an error.
	DeleteByTokenHash(ctx context.Context, tokenHash string) (int64, error)
	DeleteAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type ResetRepository interface {
	Create(ctx context.Context, reset *model.PasswordReset) error
	// Consume atomically deletes the request row and returns its email.
	// Exactly one of any number of concurrent consumers wins; the rest
	// get model.ErrResetNotFound.
	Consume(ctx context.Context, token string) (string, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, profile *model.Profile) error
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	Update(ctx context.Context, userID string, nickName, bio *string) (*model.Profile, error)
	SetAvatar(ctx context.Context, userID, avatarURL, avatarKey string) error

	// LockByUserID takes a row lock on the profile owned by userID,
	// serializing concurrent follow toggles against the same target.
	LockByUserID(ctx context.Context, tx *sqlx.Tx, userID string) error
	FollowExists(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) (bool, error)
	InsertFollow(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) error
	DeleteFollow(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) error

	GetFollowers(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error)
	GetFollowing(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error)
	GetFolloweeIDs(ctx context.Context, userID string) ([]string, error)
	GetSummariesByUserIDs(ctx context.Context, userIDs []string) (map[string]model.ProfileSummary, error)
}

type PostRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, userID, body string, parentID *string) (*model.Post, error)
	UpdateBody(ctx context.Context, tx *sqlx.Tx, postID, userID, body string) error
	Delete(ctx context.Context, postID, userID string) error
	GetByID(ctx context.Context, postID string) (*model.Post, error)
	GetAuthorID(ctx context.Context, postID string) (string, error)

	ListByUser(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error)
	ListByAuthors(ctx context.Context, userIDs []string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error)
	ListByTag(ctx context.Context, tagID string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error)
	ListLikedBy(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error)
	SearchBody(ctx context.Context, query string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error)

	// Tag association. ReplaceTags swaps the post's tag set wholesale,
	// preserving the given order.
	GetTagByName(ctx context.Context, tx *sqlx.Tx, name string) (*model.Tag, error)
	CreateTag(ctx context.Context, tx *sqlx.Tx, name string) (*model.Tag, error)
	ReplaceTags(ctx context.Context, tx *sqlx.Tx, postID string, tagIDs []string) error
	GetTagsForPosts(ctx context.Context, postIDs []string) (map[string][]model.Tag, error)

	// Like toggle plumbing. Lock serializes concurrent toggles on one post.
	Lock(ctx context.Context, tx *sqlx.Tx, postID string) error
	LikeExists(ctx context.Context, tx *sqlx.Tx, postID, userID string) (bool, error)
	InsertLike(ctx context.Context, tx *sqlx.Tx, postID, userID string) error
	DeleteLike(ctx context.Context, tx *sqlx.Tx, postID, userID string) error
	GetLikerIDs(ctx context.Context, postID string) ([]string, error)
	CheckLikes(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	Update(ctx context.Context, commentID, userID, body string) (*model.Comment, error)
	Delete(ctx context.Context, commentID, userID string) error
	GetByID(ctx context.Context, commentID string) (*model.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]model.Comment, error)
}

type RoadmapRepository interface {
	Create(ctx context.Context, roadmap *model.Roadmap) error
	Update(ctx context.Context, roadmap *model.Roadmap) error
	Delete(ctx context.Context, roadmapID, userID string) error
	GetByID(ctx context.Context, roadmapID string) (*model.Roadmap, error)
	ListByUser(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.Roadmap, *time.Time, error)
	ListByAuthors(ctx context.Context, userIDs []string, cursor *time.Time, limit int) ([]model.Roadmap, *time.Time, error)
	Search(ctx context.Context, query string, cursor *time.Time, limit int) ([]model.Roadmap, *time.Time, error)

	CreateStep(ctx context.Context, step *model.Step) error
	UpdateStep(ctx context.Context, step *model.Step) error
	DeleteStep(ctx context.Context, stepID string) error
	GetStep(ctx context.Context, stepID string) (*model.Step, error)
	ListSteps(ctx context.Context, roadmapID string) ([]model.Step, error)
	NextStepOrder(ctx context.Context, roadmapID string) (int, error)
	// SwapStepOrder exchanges the positions of two steps atomically.
	SwapStepOrder(ctx context.Context, stepID, otherStepID string) error

	CreateLookback(ctx context.Context, lookback *model.Lookback) error
	UpdateLookback(ctx context.Context, lookback *model.Lookback) error
	DeleteLookback(ctx context.Context, lookbackID string) error
	GetLookback(ctx context.Context, lookbackID string) (*model.Lookback, error)
	ListLookbacks(ctx context.Context, stepID string) ([]model.Lookback, error)
}
