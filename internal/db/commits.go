package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/devpulse/devpulse/internal/models"
)

// BatchInsertCommits performs a single set-insert with skip-on-duplicate
// semantics and returns the number of rows actually written. Rows silently
// dropped by ON CONFLICT DO NOTHING are already-persisted commits.
func (s *PostgresStore) BatchInsertCommits(ctx context.Context, repoID int64, commits []*models.ProcessedCommit) (int64, error) {
	if len(commits) == 0 {
		return 0, nil
	}

	const cols = 9
	placeholders := make([]string, 0, len(commits))
	args := make([]interface{}, 0, len(commits)*cols)
	for i, c := range commits {
		base := i * cols
		placeholders = append(placeholders, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		args = append(args,
			repoID, c.SHA, c.Message, c.AuthorName, c.AuthorEmail,
			c.AuthorDate, c.Additions, c.Deletions, c.FilesChanged)
	}

	query := `
		INSERT INTO commits (
			repository_id, sha, message, author_name, author_email,
			author_date, additions, deletions, files_changed
		) VALUES ` + strings.Join(placeholders, ", ") + `
		ON CONFLICT (repository_id, sha) DO NOTHING`

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to batch insert commits: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return inserted, nil
}

// InsertCommit inserts a single commit, returning ErrDuplicateCommit when the
// (repository_id, sha) pair is already persisted.
func (s *PostgresStore) InsertCommit(ctx context.Context, repoID int64, commit *models.ProcessedCommit) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO commits (
			repository_id, sha, message, author_name, author_email,
			author_date, additions, deletions, files_changed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		repoID,
		commit.SHA,
		commit.Message,
		commit.AuthorName,
		commit.AuthorEmail,
		commit.AuthorDate,
		commit.Additions,
		commit.Deletions,
		commit.FilesChanged)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCommit
		}
		return fmt.Errorf("failed to insert commit %s: %w", commit.SHA, err)
	}

	return nil
}

// UpdateCommitStats updates only the statistics fields of an already
// persisted commit. Used when enrichment data arrives after the insert.
func (s *PostgresStore) UpdateCommitStats(ctx context.Context, repoID int64, stats *models.CommitStats) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE commits
		SET additions = $3, deletions = $4, files_changed = $5, updated_at = NOW()
		WHERE repository_id = $1 AND sha = $2`,
		repoID, stats.SHA, stats.Additions, stats.Deletions, stats.FilesChanged)
	if err != nil {
		return fmt.Errorf("failed to update stats for commit %s: %w", stats.SHA, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("commit %s not found for repository %d", stats.SHA, repoID)
	}

	return nil
}

// GetCommitsWithPagination retrieves commits with pagination and date filtering
func (s *PostgresStore) GetCommitsWithPagination(ctx context.Context, repoID int64, limit, offset int, since, until *time.Time) ([]*models.Commit, int64, error) {
	baseQuery := `
		SELECT id, repository_id, sha, message, author_name, author_email,
		       author_date, additions, deletions, files_changed, created_at, updated_at
		FROM commits
		WHERE repository_id = $1`

	args := []interface{}{repoID}
	argCount := 1

	if since != nil {
		argCount++
		baseQuery += fmt.Sprintf(" AND author_date >= $%d", argCount)
		args = append(args, *since)
	}

	if until != nil {
		argCount++
		baseQuery += fmt.Sprintf(" AND author_date <= $%d", argCount)
		args = append(args, *until)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS count_query", baseQuery)
	var total int64
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %w", err)
	}

	baseQuery += fmt.Sprintf(" ORDER BY author_date DESC LIMIT $%d OFFSET $%d", argCount+1, argCount+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query commits: %w", err)
	}
	defer rows.Close()

	var commits []*models.Commit
	for rows.Next() {
		var c models.Commit
		if err := rows.Scan(
			&c.ID,
			&c.RepositoryID,
			&c.SHA,
			&c.Message,
			&c.AuthorName,
			&c.AuthorEmail,
			&c.AuthorDate,
			&c.Additions,
			&c.Deletions,
			&c.FilesChanged,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan commit: %w", err)
		}
		commits = append(commits, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating commits: %w", err)
	}

	return commits, total, nil
}
