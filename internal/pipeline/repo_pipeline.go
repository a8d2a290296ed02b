package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devpulse/devpulse/internal/db"
	"github.com/devpulse/devpulse/internal/models"
)

// RepoPipeline idempotently persists repository records and answers the
// incremental-sync anchor queries.
type RepoPipeline struct {
	store  db.Store
	logger *logrus.Logger
}

// NewRepoPipeline creates a new repository pipeline
func NewRepoPipeline(store db.Store, logger *logrus.Logger) *RepoPipeline {
	return &RepoPipeline{
		store:  store,
		logger: logger,
	}
}

// UpsertRepositories upserts each repository for the user and returns a map
// of GitHub ID to internal ID. A per-repository failure is logged and the
// repository excluded from the map; it does not abort the batch.
func (p *RepoPipeline) UpsertRepositories(ctx context.Context, userID int64, repos []*models.Repository) map[int64]int64 {
	ids := make(map[int64]int64, len(repos))
	for _, repo := range repos {
		repo.UserID = userID
		id, err := p.store.UpsertRepository(ctx, repo)
		if err != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"user_id":   userID,
				"full_name": repo.FullName,
			}).Error("Failed to upsert repository")
			continue
		}
		ids[repo.GitHubID] = id
	}
	return ids
}

// GetLastCommitDate returns the anchor for incremental sync: the author date
// of the newest persisted commit, or nil when the repository has none. A
// lookup failure also returns nil, degrading that repository to a full fetch;
// insert-time deduplication still protects correctness.
func (p *RepoPipeline) GetLastCommitDate(ctx context.Context, repoID int64) *time.Time {
	last, err := p.store.GetLastCommitDate(ctx, repoID)
	if err != nil {
		p.logger.WithError(err).WithField("repository_id", repoID).
			Warn("Failed to get last commit date, falling back to full fetch")
		return nil
	}
	return last
}

// GetCommitCount returns the persisted commit count for diagnostics; a
// failure degrades to zero.
func (p *RepoPipeline) GetCommitCount(ctx context.Context, repoID int64) int64 {
	count, err := p.store.GetCommitCount(ctx, repoID)
	if err != nil {
		p.logger.WithError(err).WithField("repository_id", repoID).
			Warn("Failed to get commit count")
		return 0
	}
	return count
}
