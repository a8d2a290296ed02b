package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewInternalError("failed to reach database", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "INTERNAL")
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, err.Timestamp.IsZero())
}

func TestTypePredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", NewNotFoundError("missing", nil), IsNotFound, true},
		{"invalid input", NewValidationError("bad sha", nil), IsInvalidInput, true},
		{"rate limit", New(ErrRateLimit, "slow down", nil), IsRateLimit, true},
		{"conflict", New(ErrConflict, "already exists", nil), IsConflict, true},
		{"wrong type", NewNotFoundError("missing", nil), IsConflict, false},
		{"plain error", stderrors.New("whatever"), IsNotFound, false},
		{"nil", nil, IsNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	inner := NewNotFoundError("repository missing", nil)
	wrapped := fmt.Errorf("sync failed: %w", inner)

	assert.True(t, IsNotFound(wrapped))
}

func TestSyncInProgressError(t *testing.T) {
	err := NewSyncInProgressError(7)

	require.True(t, IsSyncInProgress(err))
	assert.Contains(t, err.Error(), "user 7")

	wrapped := fmt.Errorf("cannot start: %w", err)
	assert.True(t, IsSyncInProgress(wrapped))
	assert.False(t, IsSyncInProgress(stderrors.New("other")))
}
