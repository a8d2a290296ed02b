package models

// SyncPhase identifies where a sync run currently is in its phase sequence.
type SyncPhase string

const (
	PhaseInit         SyncPhase = "init"
	PhaseRepositories SyncPhase = "repositories"
	PhaseCommits      SyncPhase = "commits"
	PhaseStats        SyncPhase = "stats"
	PhaseAnalytics    SyncPhase = "analytics"
	PhaseComplete     SyncPhase = "complete"
	PhaseError        SyncPhase = "error"
)

// SyncProgress is the payload delivered to the caller's progress callback at
// every phase transition.
type SyncProgress struct {
	Phase            SyncPhase        `json:"phase"`
	CurrentRepo      string           `json:"current_repo,omitempty"`
	ReposProcessed   int              `json:"repos_processed"`
	TotalRepos       int              `json:"total_repos"`
	CommitsProcessed int              `json:"commits_processed"`
	TotalCommits     int              `json:"total_commits"`
	Message          string           `json:"message"`
	Percentage       float64          `json:"percentage"`
	Metrics          *PipelineMetrics `json:"metrics,omitempty"`
	Error            string           `json:"error,omitempty"`
}
