package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/devpulse/devpulse/internal/models"
)

// GetUserCommitCount returns the total number of persisted commits across all
// of the user's repositories.
func (s *PostgresStore) GetUserCommitCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM commits c
		JOIN repositories r ON r.id = c.repository_id
		WHERE r.user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count user commits: %w", err)
	}
	return count, nil
}

// GetUserCommitDays returns the distinct calendar days on which the user
// authored commits, most recent first.
func (s *PostgresStore) GetUserCommitDays(ctx context.Context, userID int64) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT date_trunc('day', c.author_date) AS day
		FROM commits c
		JOIN repositories r ON r.id = c.repository_id
		WHERE r.user_id = $1
		ORDER BY day DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query commit days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan commit day: %w", err)
		}
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commit days: %w", err)
	}

	return days, nil
}

// GetUserLanguageStats returns the per-language commit breakdown across the
// user's repositories, by repository primary language.
func (s *PostgresStore) GetUserLanguageStats(ctx context.Context, userID int64) ([]models.LanguageStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.language, COUNT(c.id) AS commit_count, COUNT(DISTINCT r.id) AS repo_count
		FROM repositories r
		LEFT JOIN commits c ON c.repository_id = r.id
		WHERE r.user_id = $1 AND r.language <> ''
		GROUP BY r.language
		ORDER BY commit_count DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query language stats: %w", err)
	}
	defer rows.Close()

	var stats []models.LanguageStat
	for rows.Next() {
		var ls models.LanguageStat
		if err := rows.Scan(&ls.Language, &ls.Commits, &ls.Repos); err != nil {
			return nil, fmt.Errorf("failed to scan language stat: %w", err)
		}
		stats = append(stats, ls)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating language stats: %w", err)
	}

	return stats, nil
}

// UpsertUserStats stores the recomputed analytics row for a user as JSON.
func (s *PostgresStore) UpsertUserStats(ctx context.Context, stats *models.UserStats) error {
	if stats == nil {
		return fmt.Errorf("stats cannot be nil")
	}

	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal user stats: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_stats (user_id, stats_json, computed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			stats_json = EXCLUDED.stats_json,
			computed_at = NOW()`,
		stats.UserID, statsJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert user stats: %w", err)
	}

	return nil
}

// GetUserStats retrieves the latest analytics row for a user, or nil if the
// user has never been recomputed.
func (s *PostgresStore) GetUserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	var statsJSON []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT stats_json FROM user_stats WHERE user_id = $1`,
		userID,
	).Scan(&statsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	var stats models.UserStats
	if err := json.Unmarshal(statsJSON, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user stats: %w", err)
	}

	return &stats, nil
}
