package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"waypost/internal/model"
)

type resetRepository struct {
	db *sqlx.DB
}

// NewResetRepository creates a new password reset repository
func NewResetRepository(db *sqlx.DB) ResetRepository {
	return &resetRepository{db: db}
}

func (r *resetRepository) Create(ctx context.Context, reset *model.PasswordReset) error {
	query := `
		INSERT INTO password_resets (email, token)
		VALUES ($1, $2)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query, reset.Email, reset.Token).Scan(&reset.ID)
	if err != nil {
		return fmt.Errorf("failed to create password reset: %w", err)
	}
	return nil
}

// Consume deletes the request and returns its email in one statement, so
// two concurrent confirmations with the same token resolve to exactly one
// winner. The loser sees no row and gets ErrResetNotFound.
func (r *resetRepository) Consume(ctx context.Context, token string) (string, error) {
	query := `DELETE FROM password_resets WHERE token = $1 RETURNING email`

	var email string
	err := r.db.QueryRowxContext(ctx, query, token).Scan(&email)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", model.ErrResetNotFound
		}
		return "", fmt.Errorf("failed to consume password reset: %w", err)
	}
	return email, nil
}
