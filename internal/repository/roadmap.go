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

type roadmapRepository struct {
	db *sqlx.DB
}

// NewRoadmapRepository creates a repository for roadmaps, steps and lookbacks
func NewRoadmapRepository(db *sqlx.DB) RoadmapRepository {
	return &roadmapRepository{db: db}
}

func (r *roadmapRepository) Create(ctx context.Context, m *model.Roadmap) error {
	query := `
		INSERT INTO roadmaps (user_id, title, overview, is_public)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, m.UserID, m.Title, m.Overview, m.IsPublic).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create roadmap: %w", err)
	}
	return nil
}

func (r *roadmapRepository) Update(ctx context.Context, m *model.Roadmap) error {
	query := `
		UPDATE roadmaps
		SET title = $3, overview = $4, is_public = $5, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, m.ID, m.UserID, m.Title, m.Overview, m.IsPublic).
		Scan(&m.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ErrRoadmapNotFound
		}
		return fmt.Errorf("failed to update roadmap: %w", err)
	}
	return nil
}

func (r *roadmapRepository) Delete(ctx context.Context, roadmapID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM roadmaps WHERE id = $1 AND user_id = $2`, roadmapID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete roadmap: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrRoadmapNotFound
	}
	return nil
}

func (r *roadmapRepository) GetByID(ctx context.Context, roadmapID string) (*model.Roadmap, error) {
	query := `
		SELECT id, user_id, title, overview, is_public, created_at, updated_at
		FROM roadmaps
		WHERE id = $1
	`
	var m model.Roadmap
	err := r.db.GetContext(ctx, &m, query, roadmapID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrRoadmapNotFound
		}
		return nil, fmt.Errorf("failed to get roadmap: %w", err)
	}
	return &m, nil
}

func (r *roadmapRepository) ListByUser(ctx context.Context, userID string, cursor *time.Time, limit int) ([]model.Roadmap, *time.Time, error) {
	return r.listWithCursor(ctx, `user_id = $1`, []interface{}{userID}, cursor, limit)
}

func (r *roadmapRepository) ListByAuthors(ctx context.Context, userIDs []string, cursor *time.Time, limit int) ([]model.Roadmap, *time.Time, error) {
	if len(userIDs) == 0 {
		return nil, nil, nil
	}
	return r.listWithCursor(ctx, `user_id = ANY($1)`, []interface{}{pq.Array(userIDs)}, cursor, limit)
}

func (r *roadmapRepository) Search(ctx context.Context, query string, cursor *time.Time, limit int) ([]model.Roadmap, *time.Time, error) {
	cond := `(title LIKE '%' || $1 || '%' OR overview LIKE '%' || $1 || '%')`
	return r.listWithCursor(ctx, cond, []interface{}{query}, cursor, limit)
}

func (r *roadmapRepository) listWithCursor(ctx context.Context, cond string, args []interface{}, cursor *time.Time, limit int) ([]model.Roadmap, *time.Time, error) {
	query := `
		SELECT id, user_id, title, overview, is_public, created_at, updated_at
		FROM roadmaps
		WHERE ` + cond
	if cursor != nil {
		query += fmt.Sprintf(` AND created_at < $%d`, len(args)+1)
		args = append(args, cursor)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit+1)

	var roadmaps []model.Roadmap
	err := r.db.SelectContext(ctx, &roadmaps, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list roadmaps: %w", err)
	}

	var nextCursor *time.Time
	if len(roadmaps) > limit {
		roadmaps = roadmaps[:limit]
		nextCursor = &roadmaps[len(roadmaps)-1].CreatedAt
	}
	return roadmaps, nextCursor, nil
}

func (r *roadmapRepository) CreateStep(ctx context.Context, s *model.Step) error {
	query := `
		INSERT INTO steps (roadmap_id, to_learn, is_completed, ord)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, s.RoadmapID, s.ToLearn, s.IsCompleted, s.Order).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create step: %w", err)
	}
	return nil
}

func (r *roadmapRepository) UpdateStep(ctx context.Context, s *model.Step) error {
	query := `
		UPDATE steps
		SET to_learn = $2, is_completed = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, s.ID, s.ToLearn, s.IsCompleted).Scan(&s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ErrStepNotFound
		}
		return fmt.Errorf("failed to update step: %w", err)
	}
	return nil
}

func (r *roadmapRepository) DeleteStep(ctx context.Context, stepID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM steps WHERE id = $1`, stepID)
	if err != nil {
		return fmt.Errorf("failed to delete step: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrStepNotFound
	}
	return nil
}

func (r *roadmapRepository) GetStep(ctx context.Context, stepID string) (*model.Step, error) {
	query := `
		SELECT id, roadmap_id, to_learn, is_completed, ord, created_at, updated_at
		FROM steps
		WHERE id = $1
	`
	var s model.Step
	err := r.db.GetContext(ctx, &s, query, stepID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrStepNotFound
		}
		return nil, fmt.Errorf("failed to get step: %w", err)
	}
	return &s, nil
}

func (r *roadmapRepository) ListSteps(ctx context.Context, roadmapID string) ([]model.Step, error) {
	query := `
		SELECT id, roadmap_id, to_learn, is_completed, ord, created_at, updated_at
		FROM steps
		WHERE roadmap_id = $1
		ORDER BY ord
	`
	var steps []model.Step
	err := r.db.SelectContext(ctx, &steps, query, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	return steps, nil
}

func (r *roadmapRepository) NextStepOrder(ctx context.Context, roadmapID string) (int, error) {
	var next int
	err := r.db.GetContext(ctx, &next,
		`SELECT COALESCE(MAX(ord), 0) + 1 FROM steps WHERE roadmap_id = $1`, roadmapID)
	if err != nil {
		return 0, fmt.Errorf("failed to get next step order: %w", err)
	}
	return next, nil
}

// SwapStepOrder exchanges the ord values of two steps in one transaction.
// Rows are locked in a stable order to avoid deadlock between two
// concurrent swaps touching the same steps.
func (r *roadmapRepository) SwapStepOrder(ctx context.Context, stepID, otherStepID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	type stepRow struct {
		ID        string `db:"id"`
		RoadmapID string `db:"roadmap_id"`
		Ord       int    `db:"ord"`
	}
	var locked []stepRow
	err = tx.SelectContext(ctx, &locked, `
		SELECT id, roadmap_id, ord FROM steps
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, pq.Array([]string{stepID, otherStepID}))
	if err != nil {
		return fmt.Errorf("failed to lock steps: %w", err)
	}
	if len(locked) != 2 {
		return model.ErrStepNotFound
	}
	if locked[0].RoadmapID != locked[1].RoadmapID {
		return model.ErrStepsNotSiblings
	}

	for i := range locked {
		other := locked[1-i]
		_, err = tx.ExecContext(ctx,
			`UPDATE steps SET ord = $2, updated_at = NOW() WHERE id = $1`,
			locked[i].ID, other.Ord)
		if err != nil {
			return fmt.Errorf("failed to reorder step: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *roadmapRepository) CreateLookback(ctx context.Context, l *model.Lookback) error {
	query := `
		INSERT INTO lookbacks (step_id, learned)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, l.StepID, l.Learned).
		Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lookback: %w", err)
	}
	return nil
}

func (r *roadmapRepository) UpdateLookback(ctx context.Context, l *model.Lookback) error {
	query := `
		UPDATE lookbacks SET learned = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, l.ID, l.Learned).Scan(&l.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ErrLookbackNotFound
		}
		return fmt.Errorf("failed to update lookback: %w", err)
	}
	return nil
}

func (r *roadmapRepository) DeleteLookback(ctx context.Context, lookbackID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lookbacks WHERE id = $1`, lookbackID)
	if err != nil {
		return fmt.Errorf("failed to delete lookback: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrLookbackNotFound
	}
	return nil
}

func (r *roadmapRepository) GetLookback(ctx context.Context, lookbackID string) (*model.Lookback, error) {
	query := `
		SELECT id, step_id, learned, created_at, updated_at
		FROM lookbacks
		WHERE id = $1
	`
	var l model.Lookback
	err := r.db.GetContext(ctx, &l, query, lookbackID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrLookbackNotFound
		}
		return nil, fmt.Errorf("failed to get lookback: %w", err)
	}
	return &l, nil
}

func (r *roadmapRepository) ListLookbacks(ctx context.Context, stepID string) ([]model.Lookback, error) {
	query := `
		SELECT id, step_id, learned, created_at, updated_at
		FROM lookbacks
		WHERE step_id = $1
		ORDER BY created_at
	`
	var lookbacks []model.Lookback
	err := r.db.SelectContext(ctx, &lookbacks, query, stepID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lookbacks: %w", err)
	}
	return lookbacks, nil
}
