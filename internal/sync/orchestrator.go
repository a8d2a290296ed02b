package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devpulse/devpulse/internal/config"
	"github.com/devpulse/devpulse/internal/db"
	"github.com/devpulse/devpulse/internal/models"
	"github.com/devpulse/devpulse/internal/pipeline"
)

// Fetcher is the GitHub API collaborator the orchestrator drives. It owns
// pagination, rate-limit tracking, and retries.
type Fetcher interface {
	FetchAllRepositories(ctx context.Context, includeForks, includeArchived bool) ([]*models.Repository, error)
	FetchAllCommits(ctx context.Context, owner, name string, since *time.Time, maxCommits int) ([]*models.ProcessedCommit, error)
	FetchCommitStats(ctx context.Context, owner, name, sha string) (*models.CommitStats, error)
	Metrics() models.FetchMetrics
}

// Refresher recomputes derived analytics after a successful sync. Its
// failure never fails the sync; commit data is already durable.
type Refresher interface {
	RefreshUserStats(ctx context.Context, userID int64) error
}

// ProgressFunc is invoked synchronously at each phase transition.
type ProgressFunc func(models.SyncProgress)

// Options configure one sync run.
type Options struct {
	// FullSync ignores the incremental anchor and refetches from the beginning.
	FullSync bool
	// IncludeForks and IncludeArchived widen the repository listing.
	IncludeForks    bool
	IncludeArchived bool
	// MaxCommitsPerRepo caps commits fetched per repository; 0 is unlimited.
	MaxCommitsPerRepo int
	// FetchStats toggles the per-commit statistics phase.
	FetchStats bool
	// OnProgress receives a progress event at every phase transition.
	OnProgress ProgressFunc
}

// DefaultOptions derives run options from the sync configuration.
func DefaultOptions(cfg *config.SyncConfig) Options {
	return Options{
		IncludeForks:      cfg.IncludeForks,
		IncludeArchived:   cfg.IncludeArchived,
		MaxCommitsPerRepo: cfg.MaxCommitsPerRepo,
		FetchStats:        cfg.FetchCommitStats,
	}
}

// Result is the structured outcome of a sync run. Success is true only if
// the full phase sequence completed; partial per-repository failures do not
// by themselves flip it to false.
type Result struct {
	Success               bool                   `json:"success"`
	JobID                 int64                  `json:"job_id"`
	RepositoriesProcessed int                    `json:"repositories_processed"`
	CommitsInserted       int                    `json:"commits_inserted"`
	CommitsSkipped        int                    `json:"commits_skipped"`
	Errors                int                    `json:"errors"`
	ErrorMessage          string                 `json:"error_message,omitempty"`
	Duration              time.Duration          `json:"duration"`
	Metrics               models.PipelineMetrics `json:"metrics"`
	FetchMetrics          models.FetchMetrics    `json:"fetch_metrics"`
}

// Orchestrator sequences the sync phases: init, repositories, per-repository
// commits and stats, analytics, complete. It holds no per-run mutable state;
// each Sync call owns an independent run accumulator.
type Orchestrator struct {
	store     db.Store
	fetcher   Fetcher
	refresher Refresher
	config    *config.SyncConfig
	logger    *logrus.Logger
}

// NewOrchestrator creates a new sync orchestrator
func NewOrchestrator(store db.Store, fetcher Fetcher, refresher Refresher, cfg *config.SyncConfig, logger *logrus.Logger) *Orchestrator {
	if cfg == nil {
		cfg = config.DefaultSyncConfig()
	}
	return &Orchestrator{
		store:     store,
		fetcher:   fetcher,
		refresher: refresher,
		config:    cfg,
		logger:    logger,
	}
}

// run is the accumulator for a single sync invocation. Threading it through
// the phases keeps the orchestrator itself free of shared mutable state.
type run struct {
	userID   int64
	opts     Options
	job      *models.SyncJob
	commits  *pipeline.CommitPipeline
	repos    *pipeline.RepoPipeline
	started  time.Time
	inserted int
	skipped  int
	errors   int
	total    int
	done     int
}

// Sync executes one sync run for the user. The returned error is non-nil
// only when no job record could be created (for example a concurrent sync is
// already running); every failure after init is captured on the job record
// and reported through the result.
func (o *Orchestrator) Sync(ctx context.Context, userID int64, opts Options) (*Result, error) {
	logger := o.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"full_sync": opts.FullSync,
	})
	logger.Info("Starting sync run")

	r := &run{
		userID:  userID,
		opts:    opts,
		commits: pipeline.NewCommitPipeline(o.store, o.config, o.logger),
		repos:   pipeline.NewRepoPipeline(o.store, o.logger),
		started: time.Now(),
	}
	r.commits.ResetMetrics()

	job, err := o.store.CreateSyncJob(ctx, userID)
	if err != nil {
		logger.WithError(err).Error("Failed to create sync job")
		return nil, err
	}
	r.job = job
	logger = logger.WithField("job_id", job.ID)

	o.emit(r, models.SyncProgress{
		Phase:      models.PhaseInit,
		Message:    "Sync job created",
		Percentage: 0,
	})

	if err := o.runPhases(ctx, r, logger); err != nil {
		return o.fail(ctx, r, logger, err), nil
	}

	result := o.result(r, true, "")
	logger.WithFields(logrus.Fields{
		"repos_processed":  result.RepositoriesProcessed,
		"commits_inserted": result.CommitsInserted,
		"commits_skipped":  result.CommitsSkipped,
		"duration":         result.Duration,
	}).Info("Sync run completed")

	return result, nil
}

// runPhases executes phases 2 through 7. Any returned error is fatal to the
// run and transitions the job to FAILED.
func (o *Orchestrator) runPhases(ctx context.Context, r *run, logger *logrus.Entry) error {
	// Phase: repositories
	o.emit(r, models.SyncProgress{
		Phase:      models.PhaseRepositories,
		Message:    "Fetching repositories",
		Percentage: 5,
	})

	remoteRepos, err := o.fetcher.FetchAllRepositories(ctx, r.opts.IncludeForks, r.opts.IncludeArchived)
	if err != nil {
		return fmt.Errorf("failed to fetch repositories: %w", err)
	}

	ids := r.repos.UpsertRepositories(ctx, r.userID, remoteRepos)
	r.total = len(remoteRepos)

	if err := o.store.UpdateSyncJobProgress(ctx, r.job.ID, r.total, 0); err != nil {
		logger.WithError(err).Warn("Failed to persist repository total on job")
	}
	logger.WithField("total_repos", r.total).Info("Repositories upserted")

	// Phase: commits (and stats) per repository, sequential, in discovery order
	for _, repo := range remoteRepos {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sync cancelled: %w", err)
		}

		if err := o.syncRepository(ctx, r, repo, ids, logger); err != nil {
			return err
		}

		r.done++
		if err := o.store.UpdateSyncJobProgress(ctx, r.job.ID, r.total, r.done); err != nil {
			logger.WithError(err).Warn("Failed to persist repository progress on job")
		}
	}

	// Phase: analytics. A refresh failure is logged only; the commit data is
	// already durable and correct.
	o.emit(r, models.SyncProgress{
		Phase:          models.PhaseAnalytics,
		ReposProcessed: r.done,
		TotalRepos:     r.total,
		Message:        "Recomputing analytics",
		Percentage:     95,
	})
	if err := o.refresher.RefreshUserStats(ctx, r.userID); err != nil {
		logger.WithError(err).Error("Analytics refresh failed, continuing")
	}

	// Phase: complete
	totalCommits := r.inserted + r.skipped
	if err := o.store.CompleteSyncJob(ctx, r.job.ID, totalCommits); err != nil {
		return fmt.Errorf("failed to complete sync job: %w", err)
	}

	metrics := r.commits.Metrics()
	o.emit(r, models.SyncProgress{
		Phase:            models.PhaseComplete,
		ReposProcessed:   r.done,
		TotalRepos:       r.total,
		CommitsProcessed: totalCommits,
		TotalCommits:     totalCommits,
		Message:          fmt.Sprintf("Sync complete: %d inserted, %d skipped", r.inserted, r.skipped),
		Percentage:       100,
		Metrics:          &metrics,
	})

	return nil
}

// syncRepository runs the commits and stats phases for one repository.
// Repository-level failures are absorbed here; only cancellation and storage
// level failures propagate.
func (o *Orchestrator) syncRepository(ctx context.Context, r *run, repo *models.Repository, ids map[int64]int64, logger *logrus.Entry) error {
	repoLogger := logger.WithField("repository", repo.FullName)

	o.emit(r, models.SyncProgress{
		Phase:          models.PhaseCommits,
		CurrentRepo:    repo.FullName,
		ReposProcessed: r.done,
		TotalRepos:     r.total,
		Message:        fmt.Sprintf("Syncing %s", repo.FullName),
		Percentage:     o.repoPercentage(r),
	})

	repoID, ok := ids[repo.GitHubID]
	if !ok {
		repoLogger.Warn("Repository was not upserted, skipping")
		return nil
	}

	var since *time.Time
	if !r.opts.FullSync {
		since = r.repos.GetLastCommitDate(ctx, repoID)
	}

	fetched, err := o.fetcher.FetchAllCommits(ctx, repo.Owner(), repo.Name, since, r.opts.MaxCommitsPerRepo)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("sync cancelled: %w", ctx.Err())
		}
		repoLogger.WithError(err).Error("Failed to fetch commits, skipping repository")
		return nil
	}

	if len(fetched) == 0 {
		repoLogger.Debug("No new commits")
		return nil
	}

	valid := r.commits.ValidateBatch(fetched)
	if len(valid) == 0 {
		repoLogger.Warn("No valid commits in fetched batch")
		return nil
	}

	if r.opts.FetchStats {
		o.emit(r, models.SyncProgress{
			Phase:          models.PhaseStats,
			CurrentRepo:    repo.FullName,
			ReposProcessed: r.done,
			TotalRepos:     r.total,
			Message:        fmt.Sprintf("Fetching commit stats for %s", repo.FullName),
			Percentage:     o.repoPercentage(r),
		})
		stats := o.fetchStats(ctx, repo, valid, repoLogger)
		r.commits.EnrichBatch(valid, stats)
	}

	result, err := r.commits.BatchInsertCommits(ctx, repoID, valid)
	if err != nil {
		return fmt.Errorf("sync cancelled: %w", err)
	}

	r.inserted += result.Inserted
	r.skipped += result.Skipped
	r.errors += result.Errors

	repoLogger.WithFields(logrus.Fields{
		"fetched":  len(fetched),
		"valid":    len(valid),
		"inserted": result.Inserted,
		"skipped":  result.Skipped,
		"errors":   result.Errors,
	}).Info("Repository synced")

	return nil
}

// fetchStats fetches per-commit statistics bounded by the configured API
// call budget. Per-commit failures leave that commit unenriched.
func (o *Orchestrator) fetchStats(ctx context.Context, repo *models.Repository, commits []*models.ProcessedCommit, logger *logrus.Entry) map[string]*models.CommitStats {
	budget := o.config.StatBudgetPerRepo
	if budget <= 0 || budget > len(commits) {
		budget = len(commits)
	}

	stats := make(map[string]*models.CommitStats, budget)
	for _, commit := range commits[:budget] {
		if ctx.Err() != nil {
			break
		}
		st, err := o.fetcher.FetchCommitStats(ctx, repo.Owner(), repo.Name, commit.SHA)
		if err != nil {
			logger.WithError(err).WithField("sha", commit.SHA).Warn("Failed to fetch commit stats")
			continue
		}
		stats[commit.SHA] = st
	}
	return stats
}

// fail transitions the job to FAILED and builds the failure result. The job
// update uses a detached context so a cancelled run is never left
// IN_PROGRESS.
func (o *Orchestrator) fail(ctx context.Context, r *run, logger *logrus.Entry, cause error) *Result {
	logger.WithError(cause).Error("Sync run failed")

	failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := o.store.FailSyncJob(failCtx, r.job.ID, cause.Error()); err != nil {
		logger.WithError(err).Error("Failed to mark sync job failed")
	}

	metrics := r.commits.Metrics()
	o.emit(r, models.SyncProgress{
		Phase:          models.PhaseError,
		ReposProcessed: r.done,
		TotalRepos:     r.total,
		Message:        "Sync failed",
		Percentage:     0,
		Metrics:        &metrics,
		Error:          cause.Error(),
	})

	return o.result(r, false, cause.Error())
}

func (o *Orchestrator) result(r *run, success bool, errMsg string) *Result {
	return &Result{
		Success:               success,
		JobID:                 r.job.ID,
		RepositoriesProcessed: r.done,
		CommitsInserted:       r.inserted,
		CommitsSkipped:        r.skipped,
		Errors:                r.errors,
		ErrorMessage:          errMsg,
		Duration:              time.Since(r.started),
		Metrics:               r.commits.Metrics(),
		FetchMetrics:          o.fetcher.Metrics(),
	}
}

// repoPercentage maps repository progress onto the 10-90% band.
func (o *Orchestrator) repoPercentage(r *run) float64 {
	if r.total == 0 {
		return 10
	}
	return 10 + 80*float64(r.done)/float64(r.total)
}

func (o *Orchestrator) emit(r *run, progress models.SyncProgress) {
	if r.opts.OnProgress == nil {
		return
	}
	r.opts.OnProgress(progress)
}
