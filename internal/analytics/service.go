package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devpulse/devpulse/internal/db"
	"github.com/devpulse/devpulse/internal/models"
)

// Service recomputes derived per-user analytics from persisted commits. The
// output is always reproducible, so a failed refresh only leaves stats stale
// until the next successful sync.
type Service struct {
	store  db.Store
	logger *logrus.Logger
}

// NewService creates a new analytics service
func NewService(store db.Store, logger *logrus.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// RefreshUserStats recomputes and stores the user's aggregate stats: commit
// totals, daily streaks, and the per-language breakdown.
func (s *Service) RefreshUserStats(ctx context.Context, userID int64) error {
	logger := s.logger.WithField("user_id", userID)
	logger.Info("Refreshing user stats")

	totalCommits, err := s.store.GetUserCommitCount(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to count commits: %w", err)
	}

	repos, err := s.store.ListRepositories(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}

	days, err := s.store.GetUserCommitDays(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get commit days: %w", err)
	}

	languages, err := s.store.GetUserLanguageStats(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get language stats: %w", err)
	}

	current, longest := computeStreaks(days, time.Now().UTC())

	stats := &models.UserStats{
		UserID:        userID,
		TotalCommits:  int(totalCommits),
		TotalRepos:    len(repos),
		CurrentStreak: current,
		LongestStreak: longest,
		Languages:     languages,
		ComputedAt:    time.Now().UTC(),
	}

	if err := s.store.UpsertUserStats(ctx, stats); err != nil {
		return fmt.Errorf("failed to store user stats: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"total_commits":  stats.TotalCommits,
		"current_streak": stats.CurrentStreak,
		"longest_streak": stats.LongestStreak,
	}).Info("User stats refreshed")

	return nil
}

// GetUserStats returns the latest stored stats for a user, or nil when none
// have been computed yet.
func (s *Service) GetUserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	return s.store.GetUserStats(ctx, userID)
}

// computeStreaks derives the current and longest run of consecutive commit
// days. Days must be distinct calendar days sorted most recent first. The
// current streak counts back from today or yesterday; a gap before that
// means the streak is zero.
func computeStreaks(days []time.Time, now time.Time) (current, longest int) {
	if len(days) == 0 {
		return 0, 0
	}

	today := now.Truncate(24 * time.Hour)

	runLength := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		gap := days[i-1].Sub(days[i])
		if gap == 24*time.Hour {
			runLength++
		} else {
			runLength = 1
		}
		if runLength > longest {
			longest = runLength
		}
	}

	head := days[0].Truncate(24 * time.Hour)
	if today.Sub(head) > 24*time.Hour {
		return 0, longest
	}

	current = 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) != 24*time.Hour {
			break
		}
		current++
	}

	return current, longest
}
