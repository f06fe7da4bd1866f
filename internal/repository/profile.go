package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"waypost/internal/model"
)

type profileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a repository for profiles and the follow graph
func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create inserts the profile inside the caller's transaction. It runs in
// the same transaction as the verification flip so a profile is created
// exactly once per user.
func (r *profileRepository) Create(ctx context.Context, tx *sqlx.Tx, p *model.Profile) error {
	query := `
		INSERT INTO profiles (user_id, nick_name, bio)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := tx.QueryRowxContext(ctx, query, p.UserID, p.NickName, p.Bio).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	query := `
		SELECT id, user_id, nick_name, avatar_url, avatar_key, bio, created_at
		FROM profiles
		WHERE user_id = $1
	`
	var p model.Profile
	err := r.db.GetContext(ctx, &p, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

func (r *profileRepository) Update(ctx context.Context, userID string, nickName, bio *string) (*model.Profile, error) {
	query := `
		UPDATE profiles
		SET nick_name = COALESCE($2, nick_name), bio = COALESCE($3, bio)
		WHERE user_id = $1
		RETURNING id, user_id, nick_name, avatar_url, avatar_key, bio, created_at
	`
	var p model.Profile
	err := r.db.GetContext(ctx, &p, query, userID, nickName, bio)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &p, nil
}

func (r *profileRepository) SetAvatar(ctx context.Context, userID, avatarURL, avatarKey string) error {
	query := `UPDATE profiles SET avatar_url = $2, avatar_key = $3 WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, avatarURL, avatarKey)
	if err != nil {
		return fmt.Errorf("failed to set avatar: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrProfileNotFound
	}
	return nil
}

// LockByUserID takes a FOR UPDATE lock on the target's profile row. Every
// follow toggle against the same target queues behind this lock, so the
// read-check-write sequence below cannot interleave.
func (r *profileRepository) LockByUserID(ctx context.Context, tx *sqlx.Tx, userID string) error {
	var id string
	err := tx.GetContext(ctx, &id, `SELECT id FROM profiles WHERE user_id = $1 FOR UPDATE`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ErrProfileNotFound
		}
		return fmt.Errorf("failed to lock profile: %w", err)
	}
	return nil
}

// FollowExists reports whether the follow edge exists. A nil tx reads
// from the pool; toggles pass their transaction so the check sits
// behind the target's row lock.
func (r *profileRepository) FollowExists(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`

	var q sqlx.QueryerContext = r.db
	if tx != nil {
		q = tx
	}

	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

func (r *profileRepository) InsertFollow(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) error {
	query := `INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2)`

	if _, err := tx.ExecContext(ctx, query, followerID, followeeID); err != nil {
		return fmt.Errorf("failed to insert follow: %w", err)
	}
	return nil
}

func (r *profileRepository) DeleteFollow(ctx context.Context, tx *sqlx.Tx, followerID, followeeID string) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`

	if _, err := tx.ExecContext(ctx, query, followerID, followeeID); err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return nil
}

// GetFollowers retrieves profiles of users who follow the specified user
// with cursor-based pagination.
//
// Cursor semantics (shared with GetFollowing and the post listings):
//   - cursor == nil: start from the latest rows
//   - cursor != nil: rows created strictly before the cursor timestamp
//   - always fetch limit+1; an extra row means more pages exist and the
//     last returned row's timestamp becomes the next cursor
func (r *profileRepository) GetFollowers(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT p.id, p.user_id, p.nick_name, p.avatar_url, f.created_at
			FROM follows f
			JOIN profiles p ON p.user_id = f.follower_id
			WHERE f.followee_id = $1
			ORDER BY f.created_at DESC
			LIMIT $2
		`
		args = []interface{}{userID, limit + 1}
	} else {
		query = `
			SELECT p.id, p.user_id, p.nick_name, p.avatar_url, f.created_at
			FROM follows f
			JOIN profiles p ON p.user_id = f.follower_id
			WHERE f.followee_id = $1 AND f.created_at < $2
			ORDER BY f.created_at DESC
			LIMIT $3
		`
		args = []interface{}{userID, cursor, limit + 1}
	}

	return r.selectSummariesWithCursor(ctx, query, args, limit)
}

// GetFollowing retrieves profiles the specified user follows. See
// GetFollowers for the cursor pagination contract.
func (r *profileRepository) GetFollowing(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.ProfileSummary, *time.Time, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT p.id, p.user_id, p.nick_name, p.avatar_url, f.created_at
			FROM follows f
			JOIN profiles p ON p.user_id = f.followee_id
			WHERE f.follower_id = $1
			ORDER BY f.created_at DESC
			LIMIT $2
		`
		args = []interface{}{userID, limit + 1}
	} else {
		query = `
			SELECT p.id, p.user_id, p.nick_name, p.avatar_url, f.created_at
			FROM follows f
			JOIN profiles p ON p.user_id = f.followee_id
			WHERE f.follower_id = $1 AND f.created_at < $2
			ORDER BY f.created_at DESC
			LIMIT $3
		`
		args = []interface{}{userID, cursor, limit + 1}
	}

	return r.selectSummariesWithCursor(ctx, query, args, limit)
}

func (r *profileRepository) selectSummariesWithCursor(ctx context.Context, query string, args []interface{}, limit int) ([]model.ProfileSummary, *time.Time, error) {
	type summaryWithTime struct {
		model.ProfileSummary
		CreatedAt time.Time `db:"created_at"`
	}

	var results []summaryWithTime
	err := r.db.SelectContext(ctx, &results, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	var nextCursor *time.Time
	if len(results) > limit {
		results = results[:limit]
		nextCursor = &results[len(results)-1].CreatedAt
	}

	var summaries []model.ProfileSummary
	for _, result := range results {
		summaries = append(summaries, result.ProfileSummary)
	}

	return summaries, nextCursor, nil
}

func (r *profileRepository) GetFolloweeIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT followee_id FROM follows WHERE follower_id = $1`, userID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get followee ids: %w", err)
	}
	return ids, nil
}

// GetSummariesByUserIDs batch-loads profile summaries for post/comment
// enrichment. One query with ANY($1), not N+1.
func (r *profileRepository) GetSummariesByUserIDs(ctx context.Context, userIDs []string) (map[string]model.ProfileSummary, error) {
	result := make(map[string]model.ProfileSummary)
	if len(userIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, user_id, nick_name, avatar_url
		FROM profiles
		WHERE user_id = ANY($1)
	`
	var summaries []model.ProfileSummary
	err := r.db.SelectContext(ctx, &summaries, query, pq.Array(userIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get profile summaries: %w", err)
	}

	for _, s := range summaries {
		result[s.UserID] = s
	}
	return result, nil
}
