package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"waypost/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	query := `
		INSERT INTO comments (post_id, user_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, c.PostID, c.UserID, c.Body).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *commentRepository) Update(ctx context.Context, commentID, userID, body string) (*model.Comment, error) {
	query := `
		UPDATE comments SET body = $3
		WHERE id = $1 AND user_id = $2
		RETURNING id, post_id, user_id, body, created_at
	`
	var c model.Comment
	err := r.db.GetContext(ctx, &c, query, commentID, userID, body)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return &c, nil
}

func (r *commentRepository) Delete(ctx context.Context, commentID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM comments WHERE id = $1 AND user_id = $2`, commentID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrCommentNotFound
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, commentID string) (*model.Comment, error) {
	query := `SELECT id, post_id, user_id, body, created_at FROM comments WHERE id = $1`

	var c model.Comment
	err := r.db.GetContext(ctx, &c, query, commentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &c, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	query := `
		SELECT id, post_id, user_id, body, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at
	`
	var comments []model.Comment
	err := r.db.SelectContext(ctx, &comments, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
