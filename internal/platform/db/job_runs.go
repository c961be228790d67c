package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// JobRunStore records background job runs in job_runs.
type JobRunStore struct {
	pool *pgxpool.Pool
}

func NewJobRunStore(pool *pgxpool.Pool) *JobRunStore {
	return &JobRunStore{pool: pool}
}

func (s *JobRunStore) StartRun(ctx context.Context, jobType string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1, 'running')
    RETURNING id::text
  `, jobType).Scan(&id)
	return id, err
}

func (s *JobRunStore) FinishRun(ctx context.Context, id, status string, details []byte) error {
	_, err := s.pool.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, details, id)
	return err
}
