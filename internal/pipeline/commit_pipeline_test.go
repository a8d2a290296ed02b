package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devpulse/devpulse/internal/config"
	"github.com/devpulse/devpulse/internal/db"
	"github.com/devpulse/devpulse/internal/db/dbtest"
	"github.com/devpulse/devpulse/internal/models"
)

var _ db.Store = (*dbtest.MockStore)(nil)

const testRepoID = int64(42)

func newTestCommitPipeline(store db.Store, chunkSize int) *CommitPipeline {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	cfg := config.DefaultSyncConfig()
	if chunkSize > 0 {
		cfg.ChunkSize = chunkSize
	}
	return NewCommitPipeline(store, cfg, logger)
}

func makeCommit(c byte, message string) *models.ProcessedCommit {
	return &models.ProcessedCommit{
		SHA:         strings.Repeat(string(c), 40),
		Message:     message,
		AuthorName:  "Test Author",
		AuthorEmail: "test@example.com",
		AuthorDate:  time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestValidateCommit(t *testing.T) {
	p := newTestCommitPipeline(&dbtest.MockStore{}, 0)

	tests := []struct {
		name    string
		commit  *models.ProcessedCommit
		wantErr bool
	}{
		{
			name:   "valid commit",
			commit: makeCommit('a', "fix"),
		},
		{
			name: "short sha",
			commit: &models.ProcessedCommit{
				SHA:        "bad",
				Message:    "x",
				AuthorDate: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "non-hex sha",
			commit: &models.ProcessedCommit{
				SHA:        strings.Repeat("z", 40),
				Message:    "x",
				AuthorDate: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "uppercase hex sha is accepted",
			commit: &models.ProcessedCommit{
				SHA:        strings.Repeat("A", 40),
				Message:    "x",
				AuthorDate: time.Now(),
			},
		},
		{
			name: "whitespace-only message",
			commit: &models.ProcessedCommit{
				SHA:        strings.Repeat("a", 40),
				Message:    "   \n\t",
				AuthorDate: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "zero author date",
			commit: &models.ProcessedCommit{
				SHA:     strings.Repeat("a", 40),
				Message: "x",
			},
			wantErr: true,
		},
		{
			name:    "nil commit",
			commit:  nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ValidateCommit(tt.commit)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBatch(t *testing.T) {
	p := newTestCommitPipeline(&dbtest.MockStore{}, 0)

	input := []*models.ProcessedCommit{
		makeCommit('a', "fix"),
		{SHA: "bad", Message: "x", AuthorDate: time.Now()},
		makeCommit('b', "feat"),
		{SHA: strings.Repeat("c", 40), Message: "", AuthorDate: time.Now()},
	}

	valid := p.ValidateBatch(input)

	require.Len(t, valid, 2)
	assert.Equal(t, strings.Repeat("a", 40), valid[0].SHA)
	assert.Equal(t, strings.Repeat("b", 40), valid[1].SHA)

	metrics := p.Metrics()
	assert.Equal(t, 2, metrics.Validated)
	assert.Equal(t, 2, metrics.Failed)
	assert.Equal(t, len(input), metrics.Validated+metrics.Failed)
}

func TestValidateBatchExampleScenario(t *testing.T) {
	store := &dbtest.MockStore{}
	p := newTestCommitPipeline(store, 0)

	input := []*models.ProcessedCommit{
		makeCommit('a', "fix"),
		{SHA: "bad", Message: "x", AuthorDate: time.Now()},
	}

	valid := p.ValidateBatch(input)
	require.Len(t, valid, 1)
	assert.Equal(t, strings.Repeat("a", 40), valid[0].SHA)

	store.On("BatchInsertCommits", mock.Anything, testRepoID, valid).Return(int64(1), nil)

	result, err := p.BatchInsertCommits(context.Background(), testRepoID, valid)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Inserted: 1, Skipped: 0, Errors: 0}, result)
}

func TestEnrichCommit(t *testing.T) {
	p := newTestCommitPipeline(&dbtest.MockStore{}, 0)

	commit := makeCommit('a', "fix")
	stats := map[string]*models.CommitStats{
		commit.SHA: {SHA: commit.SHA, Additions: 10, Deletions: 3, FilesChanged: 2},
	}

	p.EnrichCommit(commit, stats)

	assert.Equal(t, 10, commit.Additions)
	assert.Equal(t, 3, commit.Deletions)
	assert.Equal(t, 2, commit.FilesChanged)
	assert.Equal(t, 1, p.Metrics().Enriched)
}

func TestEnrichCommitMissingStatsKeepsDefaults(t *testing.T) {
	p := newTestCommitPipeline(&dbtest.MockStore{}, 0)

	commit := makeCommit('a', "fix")
	p.EnrichCommit(commit, map[string]*models.CommitStats{})

	assert.Zero(t, commit.Additions)
	assert.Zero(t, commit.Deletions)
	assert.Zero(t, commit.FilesChanged)
	assert.Zero(t, p.Metrics().Enriched)
}

func TestBatchInsertCommitsSetInsert(t *testing.T) {
	store := &dbtest.MockStore{}
	p := newTestCommitPipeline(store, 0)

	commits := make([]*models.ProcessedCommit, 10)
	for i := range commits {
		commits[i] = makeCommit(byte('0'+i), "fix")
	}

	// One of the ten is already persisted; the set-insert writes nine rows.
	store.On("BatchInsertCommits", mock.Anything, testRepoID, commits).Return(int64(9), nil)

	result, err := p.BatchInsertCommits(context.Background(), testRepoID, commits)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Inserted: 9, Skipped: 1, Errors: 0}, result)

	metrics := p.Metrics()
	assert.Equal(t, 9, metrics.Inserted)
	assert.Equal(t, 1, metrics.Skipped)
}

func TestBatchInsertCommitsFallbackEquivalence(t *testing.T) {
	store := &dbtest.MockStore{}
	p := newTestCommitPipeline(store, 0)

	commits := make([]*models.ProcessedCommit, 10)
	for i := range commits {
		commits[i] = makeCommit(byte('0'+i), "fix")
	}

	store.On("BatchInsertCommits", mock.Anything, testRepoID, commits).
		Return(int64(0), errors.New("driver: bad connection"))
	for i, commit := range commits {
		if i == 3 {
			store.On("InsertCommit", mock.Anything, testRepoID, commit).Return(db.ErrDuplicateCommit)
			continue
		}
		store.On("InsertCommit", mock.Anything, testRepoID, commit).Return(nil)
	}

	result, err := p.BatchInsertCommits(context.Background(), testRepoID, commits)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Inserted: 9, Skipped: 1, Errors: 0}, result)
}

func TestBatchInsertCommitsFallbackRowError(t *testing.T) {
	store := &dbtest.MockStore{}
	p := newTestCommitPipeline(store, 0)

	commits := []*models.ProcessedCommit{
		makeCommit('a', "fix"),
		makeCommit('b', "feat"),
		makeCommit('c', "chore"),
	}

	store.On("BatchInsertCommits", mock.Anything, testRepoID, commits).
		Return(int64(0), errors.New("driver: bad connection"))
	store.On("InsertCommit", mock.Anything, testRepoID, commits[0]).Return(nil)
	store.On("InsertCommit", mock.Anything, testRepoID, commits[1]).Return(errors.New("constraint violation"))
	store.On("InsertCommit", mock.Anything, testRepoID, commits[2]).Return(nil)

	result, err := p.BatchInsertCommits(context.Background(), testRepoID, commits)
	require.NoError(t, err)

	// The failed row does not abort the remaining rows in the chunk.
	assert.Equal(t, BatchResult{Inserted: 2, Skipped: 0, Errors: 1}, result)
}

func TestBatchInsertCommitsChunking(t *testing.T) {
	store := &dbtest.MockStore{}
	p := newTestCommitPipeline(store, 2)

	commits := make([]*models.ProcessedCommit, 5)
	for i := range commits {
		commits[i] = makeCommit(byte('0'+i), "fix")
	}

	store.On("BatchInsertCommits", mock.Anything, testRepoID, commits[0:2]).Return(int64(2), nil)
	store.On("BatchInsertCommits", mock.Anything, testRepoID, commits[2:4]).Return(int64(2), nil)
	store.On("BatchInsertCommits", mock.Anything, testRepoID, commits[4:5]).Return(int64(1), nil)

	result, err := p.BatchInsertCommits(context.Background(), testRepoID, commits)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Inserted: 5, Skipped: 0, Errors: 0}, result)
	store.AssertNumberOfCalls(t, "BatchInsertCommits", 3)
}

func TestBatchInsertCommitsCancelledBetweenChunks(t *testing.T) {
	store := &dbtest.MockStore{}
	p := newTestCommitPipeline(store, 2)

	commits := make([]*models.ProcessedCommit, 4)
	for i := range commits {
		commits[i] = makeCommit(byte('0'+i), "fix")
	}

	ctx, cancel := context.WithCancel(context.Background())
	store.On("BatchInsertCommits", mock.Anything, testRepoID, commits[0:2]).
		Run(func(args mock.Arguments) { cancel() }).
		Return(int64(2), nil)

	result, err := p.BatchInsertCommits(ctx, testRepoID, commits)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, result.Inserted)
	store.AssertNumberOfCalls(t, "BatchInsertCommits", 1)
}

func TestUpdateCommitStats(t *testing.T) {
	store := &dbtest.MockStore{}
	p := newTestCommitPipeline(store, 0)

	good := &models.CommitStats{SHA: strings.Repeat("a", 40), Additions: 5}
	bad := &models.CommitStats{SHA: strings.Repeat("b", 40), Additions: 7}

	store.On("UpdateCommitStats", mock.Anything, testRepoID, good).Return(nil)
	store.On("UpdateCommitStats", mock.Anything, testRepoID, bad).Return(errors.New("not found"))

	updated, failed := p.UpdateCommitStats(context.Background(), testRepoID, map[string]*models.CommitStats{
		good.SHA: good,
		bad.SHA:  bad,
	})

	assert.Equal(t, 1, updated)
	assert.Equal(t, 1, failed)
}

func TestResetMetrics(t *testing.T) {
	p := newTestCommitPipeline(&dbtest.MockStore{}, 0)

	p.ValidateBatch([]*models.ProcessedCommit{
		makeCommit('a', "fix"),
		{SHA: "bad"},
	})
	require.NotZero(t, p.Metrics().Validated)
	require.NotZero(t, p.Metrics().Failed)

	p.ResetMetrics()
	assert.Equal(t, models.PipelineMetrics{}, p.Metrics())
}
