package pipeline

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/devpulse/devpulse/internal/config"
	"github.com/devpulse/devpulse/internal/db"
	"github.com/devpulse/devpulse/internal/models"
)

var shaPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// BatchResult reports the outcome of one batch persistence call.
type BatchResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// CommitPipeline is the sole gate between fetched commit data and durable
// storage: it validates, optionally enriches, and batch-persists commits.
// An instance belongs to a single sync run and is not safe for concurrent
// use; its metrics are process-local diagnostics, never a source of truth.
type CommitPipeline struct {
	store   db.Store
	config  *config.SyncConfig
	logger  *logrus.Logger
	metrics models.PipelineMetrics
}

// NewCommitPipeline creates a new commit pipeline
func NewCommitPipeline(store db.Store, cfg *config.SyncConfig, logger *logrus.Logger) *CommitPipeline {
	if cfg == nil {
		cfg = config.DefaultSyncConfig()
	}
	return &CommitPipeline{
		store:  store,
		config: cfg,
		logger: logger,
	}
}

// ValidateCommit checks that a fetched commit is persistable: a 40-character
// hex SHA, a non-empty message after trimming, and a valid author date.
func (p *CommitPipeline) ValidateCommit(commit *models.ProcessedCommit) error {
	if commit == nil {
		return errors.New("commit cannot be nil")
	}
	if !shaPattern.MatchString(strings.ToLower(commit.SHA)) {
		return errors.New("sha must be 40 hexadecimal characters")
	}
	if strings.TrimSpace(commit.Message) == "" {
		return errors.New("message cannot be empty")
	}
	if commit.AuthorDate.IsZero() {
		return errors.New("author date is not a valid timestamp")
	}
	return nil
}

// ValidateBatch returns the valid subset of the input. Invalid commits are
// dropped with a logged reason and never reach enrichment or insertion.
func (p *CommitPipeline) ValidateBatch(commits []*models.ProcessedCommit) []*models.ProcessedCommit {
	valid := make([]*models.ProcessedCommit, 0, len(commits))
	for _, commit := range commits {
		if err := p.ValidateCommit(commit); err != nil {
			p.metrics.Failed++
			sha := ""
			if commit != nil {
				sha = commit.SHA
			}
			p.logger.WithFields(logrus.Fields{
				"sha":    sha,
				"reason": err.Error(),
			}).Warn("Dropping invalid commit")
			continue
		}
		p.metrics.Validated++
		valid = append(valid, commit)
	}
	return valid
}

// EnrichCommit merges size statistics into a validated commit. A missing
// lookup entry keeps the commit's zero defaults; enrichment is additive and
// never required for a commit to be stored.
func (p *CommitPipeline) EnrichCommit(commit *models.ProcessedCommit, stats map[string]*models.CommitStats) {
	st, ok := stats[commit.SHA]
	if !ok || st == nil {
		return
	}
	commit.Additions = st.Additions
	commit.Deletions = st.Deletions
	commit.FilesChanged = st.FilesChanged
	p.metrics.Enriched++
}

// EnrichBatch applies EnrichCommit to every commit in the batch.
func (p *CommitPipeline) EnrichBatch(commits []*models.ProcessedCommit, stats map[string]*models.CommitStats) {
	if len(stats) == 0 {
		return
	}
	for _, commit := range commits {
		p.EnrichCommit(commit, stats)
	}
}

// BatchInsertCommits persists commits in chunks. Each chunk is attempted as a
// single set-insert with skip-on-duplicate semantics; if the set-insert
// itself fails, the chunk falls back to row-by-row insertion where a
// duplicate counts as a skip and any other failure is logged and counted
// without aborting the rest of the chunk. The returned error is non-nil only
// for context cancellation.
func (p *CommitPipeline) BatchInsertCommits(ctx context.Context, repoID int64, commits []*models.ProcessedCommit) (BatchResult, error) {
	var result BatchResult

	chunkSize := p.config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 500
	}

	for start := 0; start < len(commits); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		end := start + chunkSize
		if end > len(commits) {
			end = len(commits)
		}
		chunk := commits[start:end]

		inserted, err := p.store.BatchInsertCommits(ctx, repoID, chunk)
		if err == nil {
			result.Inserted += int(inserted)
			result.Skipped += len(chunk) - int(inserted)
			continue
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		p.logger.WithError(err).WithFields(logrus.Fields{
			"repository_id": repoID,
			"chunk_size":    len(chunk),
		}).Warn("Set-insert failed, falling back to row-by-row insertion")

		for _, commit := range chunk {
			if err := p.store.InsertCommit(ctx, repoID, commit); err != nil {
				if errors.Is(err, db.ErrDuplicateCommit) {
					result.Skipped++
					continue
				}
				if ctx.Err() != nil {
					return result, ctx.Err()
				}
				result.Errors++
				p.logger.WithError(err).WithFields(logrus.Fields{
					"repository_id": repoID,
					"sha":           commit.SHA,
				}).Error("Failed to insert commit")
				continue
			}
			result.Inserted++
		}
	}

	p.metrics.Inserted += result.Inserted
	p.metrics.Skipped += result.Skipped

	return result, nil
}

// UpdateCommitStats backfills statistics on already-persisted commits.
// Per-row failures are logged and counted but do not stop the loop.
func (p *CommitPipeline) UpdateCommitStats(ctx context.Context, repoID int64, stats map[string]*models.CommitStats) (updated, failed int) {
	for sha, st := range stats {
		if st == nil {
			continue
		}
		if err := p.store.UpdateCommitStats(ctx, repoID, st); err != nil {
			failed++
			p.logger.WithError(err).WithFields(logrus.Fields{
				"repository_id": repoID,
				"sha":           sha,
			}).Warn("Failed to backfill commit stats")
			continue
		}
		updated++
	}
	return updated, failed
}

// Metrics returns a snapshot of the pipeline's running counters.
func (p *CommitPipeline) Metrics() models.PipelineMetrics {
	return p.metrics
}

// ResetMetrics zeroes all counters.
func (p *CommitPipeline) ResetMetrics() {
	p.metrics = models.PipelineMetrics{}
}
