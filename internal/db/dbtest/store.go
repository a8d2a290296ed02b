// Package dbtest provides a testify mock of db.Store shared by the pipeline,
// orchestrator, and API tests.
package dbtest

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/devpulse/devpulse/internal/models"
)

// MockStore implements db.Store for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateSyncJob(ctx context.Context, userID int64) (*models.SyncJob, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncJob), args.Error(1)
}

func (m *MockStore) UpdateSyncJobProgress(ctx context.Context, jobID int64, totalRepos, processedRepos int) error {
	args := m.Called(ctx, jobID, totalRepos, processedRepos)
	return args.Error(0)
}

func (m *MockStore) CompleteSyncJob(ctx context.Context, jobID int64, totalCommits int) error {
	args := m.Called(ctx, jobID, totalCommits)
	return args.Error(0)
}

func (m *MockStore) FailSyncJob(ctx context.Context, jobID int64, message string) error {
	args := m.Called(ctx, jobID, message)
	return args.Error(0)
}

func (m *MockStore) GetSyncJob(ctx context.Context, jobID int64) (*models.SyncJob, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncJob), args.Error(1)
}

func (m *MockStore) ListSyncJobs(ctx context.Context, userID int64, limit int) ([]*models.SyncJob, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SyncJob), args.Error(1)
}

func (m *MockStore) UpsertRepository(ctx context.Context, repo *models.Repository) (int64, error) {
	args := m.Called(ctx, repo)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListRepositories(ctx context.Context, userID int64) ([]*models.Repository, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Repository), args.Error(1)
}

func (m *MockStore) GetLastCommitDate(ctx context.Context, repoID int64) (*time.Time, error) {
	args := m.Called(ctx, repoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockStore) GetCommitCount(ctx context.Context, repoID int64) (int64, error) {
	args := m.Called(ctx, repoID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) BatchInsertCommits(ctx context.Context, repoID int64, commits []*models.ProcessedCommit) (int64, error) {
	args := m.Called(ctx, repoID, commits)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) InsertCommit(ctx context.Context, repoID int64, commit *models.ProcessedCommit) error {
	args := m.Called(ctx, repoID, commit)
	return args.Error(0)
}

func (m *MockStore) UpdateCommitStats(ctx context.Context, repoID int64, stats *models.CommitStats) error {
	args := m.Called(ctx, repoID, stats)
	return args.Error(0)
}

func (m *MockStore) GetCommitsWithPagination(ctx context.Context, repoID int64, limit, offset int, since, until *time.Time) ([]*models.Commit, int64, error) {
	args := m.Called(ctx, repoID, limit, offset, since, until)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Commit), args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) GetUserCommitCount(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) GetUserCommitDays(ctx context.Context, userID int64) ([]time.Time, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockStore) GetUserLanguageStats(ctx context.Context, userID int64) ([]models.LanguageStat, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LanguageStat), args.Error(1)
}

func (m *MockStore) UpsertUserStats(ctx context.Context, stats *models.UserStats) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

func (m *MockStore) GetUserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStats), args.Error(1)
}
