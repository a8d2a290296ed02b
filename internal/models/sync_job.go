package models

import "time"

// SyncJobStatus is the lifecycle state of a sync job. Transitions are
// one-way: IN_PROGRESS may move to COMPLETED or FAILED, never back.
type SyncJobStatus string

const (
	SyncJobInProgress SyncJobStatus = "IN_PROGRESS"
	SyncJobCompleted  SyncJobStatus = "COMPLETED"
	SyncJobFailed     SyncJobStatus = "FAILED"
)

// SyncJob is the durable record of one sync invocation. It is the source of
// truth for what happened; the progress callback is the live view of what is
// happening now.
type SyncJob struct {
	ID             int64         `json:"id"`
	UserID         int64         `json:"user_id"`
	Status         SyncJobStatus `json:"status"`
	TotalRepos     int           `json:"total_repos"`
	ProcessedRepos int           `json:"processed_repos"`
	TotalCommits   int           `json:"total_commits"`
	ErrorMessage   string        `json:"error_message,omitempty"`
	StartedAt      time.Time     `json:"started_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
}

// IsTerminal reports whether the job has reached a final status.
func (j *SyncJob) IsTerminal() bool {
	return j.Status == SyncJobCompleted || j.Status == SyncJobFailed
}
