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

type postRepository struct {
	db *sqlx.DB
}

// NewPostRepository creates a repository for posts, tags and likes
func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// postColumns is the shared projection for post reads. Like and comment
// counts are correlated subqueries; both sets are small per post.
const postColumns = `
	p.id, p.user_id, p.body, p.parent_id, p.created_at,
	(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id) AS like_count,
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count
`

func (r *postRepository) Create(ctx context.Context, tx *sqlx.Tx, userID, body string, parentID *string) (*model.Post, error) {
	query := `
		INSERT INTO posts (user_id, body, parent_id)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, body, parent_id, created_at
	`
	var post model.Post
	err := tx.GetContext(ctx, &post, query, userID, body, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}
	return &post, nil
}

// UpdateBody rewrites the body, verifying ownership in the same statement.
func (r *postRepository) UpdateBody(ctx context.Context, tx *sqlx.Tx, postID, userID, body string) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE posts SET body = $3 WHERE id = $1 AND user_id = $2`, postID, userID, body)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, postID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM posts WHERE id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`

	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

func (r *postRepository) GetAuthorID(ctx context.Context, postID string) (string, error) {
	var authorID string
	err := r.db.GetContext(ctx, &authorID, `SELECT user_id FROM posts WHERE id = $1`, postID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", model.ErrPostNotFound
		}
		return "", fmt.Errorf("failed to get post author: %w", err)
	}
	return authorID, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error) {
	return r.listWithCursor(ctx, `p.user_id = $1`, []interface{}{userID}, cursor, limit)
}

func (r *postRepository) ListByAuthors(ctx context.Context, userIDs []string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error) {
	if len(userIDs) == 0 {
		return nil, nil, nil
	}
	return r.listWithCursor(ctx, `p.user_id = ANY($1)`, []interface{}{pq.Array(userIDs)}, cursor, limit)
}

func (r *postRepository) ListByTag(ctx context.Context, tagID string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error) {
	cond := `p.id IN (SELECT post_id FROM post_tags WHERE tag_id = $1)`
	return r.listWithCursor(ctx, cond, []interface{}{tagID}, cursor, limit)
}

func (r *postRepository) ListLikedBy(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error) {
	cond := `p.id IN (SELECT post_id FROM post_likes WHERE user_id = $1)`
	return r.listWithCursor(ctx, cond, []interface{}{userID}, cursor, limit)
}

func (r *postRepository) SearchBody(ctx context.Context, query string, cursor *time.Time, limit int) ([]model.Post, *time.Time, error) {
	// Substring match, case-sensitive like the tag names.
	cond := `p.body LIKE '%' || $1 || '%'`
	return r.listWithCursor(ctx, cond, []interface{}{query}, cursor, limit)
}

// listWithCursor runs the shared cursor pagination: fetch limit+1 rows
// newest first, trim, and surface the last row's timestamp when a further
// page exists. See profileRepository.GetFollowers for the full contract.
func (r *postRepository) listWithCursor(ctx context.Context, cond string, args []interface{}, cursor *time.Time, limit int) ([]model.Post, *time.Time, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE ` + cond
	if cursor != nil {
		query += fmt.Sprintf(` AND p.created_at < $%d`, len(args)+1)
		args = append(args, cursor)
	}
	query += fmt.Sprintf(` ORDER BY p.created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit+1)

	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list posts: %w", err)
	}

	var nextCursor *time.Time
	if len(posts) > limit {
		posts = posts[:limit]
		nextCursor = &posts[len(posts)-1].CreatedAt
	}
	return posts, nextCursor, nil
}

// GetTagByName resolves a tag. A nil tx reads from the pool; the tag
// writers pass their transaction.
func (r *postRepository) GetTagByName(ctx context.Context, tx *sqlx.Tx, name string) (*model.Tag, error) {
	var q sqlx.QueryerContext = r.db
	if tx != nil {
		q = tx
	}

	var tag model.Tag
	err := sqlx.GetContext(ctx, q, &tag, `SELECT id, name FROM tags WHERE name = $1`, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

func (r *postRepository) CreateTag(ctx context.Context, tx *sqlx.Tx, name string) (*model.Tag, error) {
	// Concurrent creators of the same name race on the unique index; the
	// loser falls back to the winner's row.
	query := `
		INSERT INTO tags (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`
	var tag model.Tag
	err := tx.GetContext(ctx, &tag, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return &tag, nil
}

// ReplaceTags swaps the post's tag association wholesale, keeping the
// given order as position.
func (r *postRepository) ReplaceTags(ctx context.Context, tx *sqlx.Tx, postID string, tagIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("failed to clear post tags: %w", err)
	}

	for i, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id, position) VALUES ($1, $2, $3)`,
			postID, tagID, i)
		if err != nil {
			return fmt.Errorf("failed to insert post tag: %w", err)
		}
	}
	return nil
}

func (r *postRepository) GetTagsForPosts(ctx context.Context, postIDs []string) (map[string][]model.Tag, error) {
	result := make(map[string][]model.Tag)
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT pt.post_id, t.id, t.name
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1)
		ORDER BY pt.position
	`
	rows, err := r.db.QueryxContext(ctx, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get tags for posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID string
		var tag model.Tag
		if err := rows.Scan(&postID, &tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		result[postID] = append(result[postID], tag)
	}
	return result, rows.Err()
}

// Lock takes a FOR UPDATE lock on the post row, serializing concurrent
// like toggles on the same post.
func (r *postRepository) Lock(ctx context.Context, tx *sqlx.Tx, postID string) error {
	var id string
	err := tx.GetContext(ctx, &id, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, postID)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ErrPostNotFound
		}
		return fmt.Errorf("failed to lock post: %w", err)
	}
	return nil
}

func (r *postRepository) LikeExists(ctx context.Context, tx *sqlx.Tx, postID, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM post_likes WHERE post_id = $1 AND user_id = $2)`

	var exists bool
	err := tx.GetContext(ctx, &exists, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check like existence: %w", err)
	}
	return exists, nil
}

func (r *postRepository) InsertLike(ctx context.Context, tx *sqlx.Tx, postID, userID string) error {
	query := `INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`

	if _, err := tx.ExecContext(ctx, query, postID, userID); err != nil {
		return fmt.Errorf("failed to insert like: %w", err)
	}
	return nil
}

func (r *postRepository) DeleteLike(ctx context.Context, tx *sqlx.Tx, postID, userID string) error {
	query := `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`

	if _, err := tx.ExecContext(ctx, query, postID, userID); err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return nil
}

func (r *postRepository) GetLikerIDs(ctx context.Context, postID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`SELECT user_id FROM post_likes WHERE post_id = $1 ORDER BY created_at DESC`, postID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get likers: %w", err)
	}
	return ids, nil
}

// CheckLikes batch-checks which of the posts the user has liked.
func (r *postRepository) CheckLikes(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `SELECT post_id FROM post_likes WHERE user_id = $1 AND post_id = ANY($2)`
	var likedIDs []string
	err := r.db.SelectContext(ctx, &likedIDs, query, userID, pq.Array(postIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check likes: %w", err)
	}

	for _, id := range postIDs {
		result[id] = false
	}
	for _, id := range likedIDs {
		result[id] = true
	}
	return result, nil
}
