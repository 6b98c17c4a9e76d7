package sqlite

import (
	"context"
	"fmt"
	"time"
)

// ResponseRepository tallies saved responses per image.
type ResponseRepository struct {
	db *DB
}

// NewResponseRepository creates a new ResponseRepository
func NewResponseRepository(db *DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Increment adds one response for imageName.
func (r *ResponseRepository) Increment(ctx context.Context, imageName string) error {
	query := `
		INSERT INTO image_responses (image_name, response_count, last_response)
		VALUES (?, 1, ?)
		ON CONFLICT(image_name) DO UPDATE SET
			response_count = response_count + 1,
			last_response = excluded.last_response
	`
	if _, err := r.db.ExecContext(ctx, query, imageName, time.Now()); err != nil {
		return fmt.Errorf("failed to increment response count: %w", err)
	}
	return nil
}

// Counts returns the response count of every image that has at least one.
func (r *ResponseRepository) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT image_name, response_count FROM image_responses`)
	if err != nil {
		return nil, fmt.Errorf("failed to list response counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan response count: %w", err)
		}
		counts[name] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating response rows: %w", err)
	}
	return counts, nil
}
