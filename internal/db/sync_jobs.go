package db

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "github.com/devpulse/devpulse/internal/errors"
	"github.com/devpulse/devpulse/internal/models"
)

// CreateSyncJob inserts a new IN_PROGRESS job for the user. A partial unique
// index on sync_jobs(user_id) WHERE status = 'IN_PROGRESS' rejects a second
// concurrent run, surfaced as a SyncInProgressError.
func (s *PostgresStore) CreateSyncJob(ctx context.Context, userID int64) (*models.SyncJob, error) {
	job := &models.SyncJob{
		UserID: userID,
		Status: models.SyncJobInProgress,
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sync_jobs (user_id, status)
		VALUES ($1, 'IN_PROGRESS')
		RETURNING id, started_at`,
		userID,
	).Scan(&job.ID, &job.StartedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewSyncInProgressError(userID)
		}
		return nil, fmt.Errorf("failed to create sync job: %w", err)
	}

	return job, nil
}

// UpdateSyncJobProgress persists the running repo counters on a job. Only
// non-terminal jobs are touched; a terminal job is immutable.
func (s *PostgresStore) UpdateSyncJobProgress(ctx context.Context, jobID int64, totalRepos, processedRepos int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sync_jobs
		SET total_repos = $2, processed_repos = $3
		WHERE id = $1 AND status = 'IN_PROGRESS'`,
		jobID, totalRepos, processedRepos)
	if err != nil {
		return fmt.Errorf("failed to update sync job progress: %w", err)
	}
	return nil
}

// CompleteSyncJob transitions a job to COMPLETED and stamps completed_at.
func (s *PostgresStore) CompleteSyncJob(ctx context.Context, jobID int64, totalCommits int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sync_jobs
		SET status = 'COMPLETED', total_commits = $2, completed_at = NOW()
		WHERE id = $1 AND status = 'IN_PROGRESS'`,
		jobID, totalCommits)
	if err != nil {
		return fmt.Errorf("failed to complete sync job: %w", err)
	}

	return requireJobTransition(res, jobID)
}

// FailSyncJob transitions a job to FAILED with the captured error message.
func (s *PostgresStore) FailSyncJob(ctx context.Context, jobID int64, message string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sync_jobs
		SET status = 'FAILED', error_message = $2, completed_at = NOW()
		WHERE id = $1 AND status = 'IN_PROGRESS'`,
		jobID, message)
	if err != nil {
		return fmt.Errorf("failed to mark sync job failed: %w", err)
	}

	return requireJobTransition(res, jobID)
}

func requireJobTransition(res sql.Result, jobID int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("sync job %d is not in progress", jobID)
	}
	return nil
}

// GetSyncJob retrieves a sync job by ID
func (s *PostgresStore) GetSyncJob(ctx context.Context, jobID int64) (*models.SyncJob, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, status, total_repos, processed_repos, total_commits,
		       COALESCE(error_message, ''), started_at, completed_at
		FROM sync_jobs
		WHERE id = $1`, jobID)

	job, err := scanSyncJob(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("sync job not found: %d", jobID), err)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get sync job: %w", err)
	}

	return job, nil
}

// ListSyncJobs retrieves the most recent sync jobs for a user
func (s *PostgresStore) ListSyncJobs(ctx context.Context, userID int64, limit int) ([]*models.SyncJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, status, total_repos, processed_repos, total_commits,
		       COALESCE(error_message, ''), started_at, completed_at
		FROM sync_jobs
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.SyncJob
	for rows.Next() {
		job, err := scanSyncJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync jobs: %w", err)
	}

	return jobs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSyncJob(row rowScanner) (*models.SyncJob, error) {
	var job models.SyncJob
	var completedAt sql.NullTime
	err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.Status,
		&job.TotalRepos,
		&job.ProcessedRepos,
		&job.TotalCommits,
		&job.ErrorMessage,
		&job.StartedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	return &job, nil
}
