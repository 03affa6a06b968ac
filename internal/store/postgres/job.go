package postgres

import (
	"context"

	"layerplane/internal/store"
)

const jobColumns = `id, publish_id, batch_id, trigger_interval, state, message, created, launched, finished`

// CreateJob inserts a new job row and returns the generated id.
func (s *Store) CreateJob(ctx context.Context, tx store.DBTransaction, job *store.Job) (int64, error) {
	query := `
		INSERT INTO jobs (publish_id, batch_id, trigger_interval, state, message, created)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := s.getExecutor(tx).QueryRowContext(ctx, query,
		job.PublishID,
		job.BatchID,
		job.Interval,
		job.State,
		job.Message,
		job.Created,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetInFlightJob returns the newest unfinished job of a publish.
func (s *Store) GetInFlightJob(ctx context.Context, publishID int64) (*store.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE publish_id = $1 AND finished IS NULL ORDER BY id DESC LIMIT 1`
	return s.getJob(ctx, query, publishID)
}

// GetLatestPublishedJob returns the newest job of a publish that was launched and has finished.
func (s *Store) GetLatestPublishedJob(ctx context.Context, publishID int64) (*store.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE publish_id = $1 AND launched IS NOT NULL AND finished IS NOT NULL ORDER BY id DESC LIMIT 1`
	return s.getJob(ctx, query, publishID)
}

func (s *Store) getJob(ctx context.Context, query string, args ...any) (*store.Job, error) {
	var job store.Job
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&job.ID, &job.PublishID, &job.BatchID, &job.Interval, &job.State,
		&job.Message, &job.Created, &job.Launched, &job.Finished,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &job, nil
}

// CountInFlightJobs returns the number of jobs that have not finished.
func (s *Store) CountInFlightJobs(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM jobs WHERE finished IS NULL`).Scan(&count)
	return count, err
}
