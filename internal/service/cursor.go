package service

import (
	"fmt"
	"time"

	"waypost/internal/model"
)

// DefaultPageSize bounds list endpoints when the client sends no limit.
const DefaultPageSize = 20

// MaxPageSize caps the client-supplied limit.
const MaxPageSize = 100

// clampLimit normalizes a client-supplied page size.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// parseCursor decodes an opaque list cursor. Cursors are the created_at
// timestamp of the last row of the previous page.
func parseCursor(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: bad cursor", model.ErrValidation)
	}
	return &t, nil
}

// encodeCursor renders the next-page cursor, nil when there is no next
// page.
func encodeCursor(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339Nano)
	return &s
}
