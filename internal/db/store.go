package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/devpulse/devpulse/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrDuplicateCommit is returned by InsertCommit when the (repository_id, sha)
// pair already exists. The pipeline treats it as a benign skip, never as a
// failure.
var ErrDuplicateCommit = errors.New("commit already exists")

// Store defines the interface for database operations
type Store interface {
	// Sync job operations
	CreateSyncJob(ctx context.Context, userID int64) (*models.SyncJob, error)
	UpdateSyncJobProgress(ctx context.Context, jobID int64, totalRepos, processedRepos int) error
	CompleteSyncJob(ctx context.Context, jobID int64, totalCommits int) error
	FailSyncJob(ctx context.Context, jobID int64, message string) error
	GetSyncJob(ctx context.Context, jobID int64) (*models.SyncJob, error)
	ListSyncJobs(ctx context.Context, userID int64, limit int) ([]*models.SyncJob, error)

	// Repository operations
	UpsertRepository(ctx context.Context, repo *models.Repository) (int64, error)
	ListRepositories(ctx context.Context, userID int64) ([]*models.Repository, error)
	GetLastCommitDate(ctx context.Context, repoID int64) (*time.Time, error)
	GetCommitCount(ctx context.Context, repoID int64) (int64, error)

	// Commit operations
	BatchInsertCommits(ctx context.Context, repoID int64, commits []*models.ProcessedCommit) (int64, error)
	InsertCommit(ctx context.Context, repoID int64, commit *models.ProcessedCommit) error
	UpdateCommitStats(ctx context.Context, repoID int64, stats *models.CommitStats) error
	GetCommitsWithPagination(ctx context.Context, repoID int64, limit, offset int, since, until *time.Time) ([]*models.Commit, int64, error)

	// Analytics operations
	GetUserCommitCount(ctx context.Context, userID int64) (int64, error)
	GetUserCommitDays(ctx context.Context, userID int64) ([]time.Time, error)
	GetUserLanguageStats(ctx context.Context, userID int64) ([]models.LanguageStat, error)
	UpsertUserStats(ctx context.Context, stats *models.UserStats) error
	GetUserStats(ctx context.Context, userID int64) (*models.UserStats, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Migrate() error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// isUniqueViolation classifies a Postgres unique-constraint violation. All
// duplicate-key detection lives here so callers branch on typed results
// instead of inspecting opaque driver errors.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
