// Package history provides optional PostgreSQL recording of stage runs.
// File persistence stays authoritative; the database is an audit sink the
// engine writes to when DATABASE_URL is configured, and skips otherwise.
package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/publish-agent/internal/types"
)

// Recorder wraps a PostgreSQL connection pool
type Recorder struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*Recorder, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Recorder{pool: pool}, nil
}

// Close closes the connection pool
func (r *Recorder) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// RecordStageRun appends a stage run outcome to the stage_runs table.
func (r *Recorder) RecordStageRun(ctx context.Context, itemID string, stage types.StageConfig, result types.StageResult) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO stage_runs (content_item_id, stage_id, stage_kind, status, message, published_url, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		itemID, stage.ID, string(stage.Kind), string(result.Status), result.Message, result.PublishedURL, result.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to record stage run: %w", err)
	}
	return nil
}

// RecordPipelineSave appends a pipeline edit event, for auditing which
// pipeline version stage runs were executed against.
func (r *Recorder) RecordPipelineSave(ctx context.Context, p *types.Pipeline) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO pipeline_saves (pipeline_id, name, stage_count, saved_at)
		 VALUES ($1, $2, $3, NOW())`,
		p.ID, p.Name, len(p.Stages),
	)
	if err != nil {
		return fmt.Errorf("failed to record pipeline save: %w", err)
	}
	return nil
}
