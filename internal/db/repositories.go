package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/devpulse/devpulse/internal/models"
)

// UpsertRepository creates the repository or updates its mutable fields,
// keyed by the stable GitHub ID. Returns the internal ID.
func (s *PostgresStore) UpsertRepository(ctx context.Context, repo *models.Repository) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO repositories (
			user_id, github_id, name, full_name, description, language,
			stars_count, forks_count, is_private, is_fork, is_archived,
			default_branch, last_synced_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW()
		) ON CONFLICT (github_id) DO UPDATE SET
			name = EXCLUDED.name,
			full_name = EXCLUDED.full_name,
			description = EXCLUDED.description,
			language = EXCLUDED.language,
			stars_count = EXCLUDED.stars_count,
			forks_count = EXCLUDED.forks_count,
			is_private = EXCLUDED.is_private,
			is_fork = EXCLUDED.is_fork,
			is_archived = EXCLUDED.is_archived,
			default_branch = EXCLUDED.default_branch,
			last_synced_at = NOW(),
			updated_at = NOW()
		RETURNING id`,
		repo.UserID,
		repo.GitHubID,
		repo.Name,
		repo.FullName,
		repo.Description,
		repo.Language,
		repo.StarsCount,
		repo.ForksCount,
		repo.IsPrivate,
		repo.IsFork,
		repo.IsArchived,
		repo.DefaultBranch,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert repository %s: %w", repo.FullName, err)
	}

	return id, nil
}

// ListRepositories retrieves all repositories for a user
func (s *PostgresStore) ListRepositories(ctx context.Context, userID int64) ([]*models.Repository, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, github_id, name, full_name, description, language,
		       stars_count, forks_count, is_private, is_fork, is_archived,
		       default_branch, COALESCE(last_synced_at, 'epoch'::timestamptz),
		       created_at, updated_at
		FROM repositories
		WHERE user_id = $1
		ORDER BY full_name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query repositories: %w", err)
	}
	defer rows.Close()

	var repos []*models.Repository
	for rows.Next() {
		var r models.Repository
		if err := rows.Scan(
			&r.ID,
			&r.UserID,
			&r.GitHubID,
			&r.Name,
			&r.FullName,
			&r.Description,
			&r.Language,
			&r.StarsCount,
			&r.ForksCount,
			&r.IsPrivate,
			&r.IsFork,
			&r.IsArchived,
			&r.DefaultBranch,
			&r.LastSyncedAt,
			&r.CreatedAt,
			&r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan repository: %w", err)
		}
		repos = append(repos, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repositories: %w", err)
	}

	return repos, nil
}

// GetLastCommitDate returns the author date of the most recently dated
// persisted commit for the repository, or nil when none exist.
func (s *PostgresStore) GetLastCommitDate(ctx context.Context, repoID int64) (*time.Time, error) {
	var last sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(author_date) FROM commits WHERE repository_id = $1`,
		repoID,
	).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("failed to get last commit date: %w", err)
	}

	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

// GetCommitCount returns the number of persisted commits for the repository
func (s *PostgresStore) GetCommitCount(ctx context.Context, repoID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM commits WHERE repository_id = $1`,
		repoID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count commits: %w", err)
	}
	return count, nil
}
