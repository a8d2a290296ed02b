package config

// SyncConfig holds synchronization configuration
type SyncConfig struct {
	// ChunkSize bounds the number of rows in a single set-insert.
	ChunkSize int
	// MaxCommitsPerRepo caps the commits fetched per repository; 0 is unlimited.
	MaxCommitsPerRepo int
	// StatBudgetPerRepo caps per-commit stat API calls per repository.
	StatBudgetPerRepo int
	// FetchCommitStats toggles the stats phase.
	FetchCommitStats bool
	// IncludeForks and IncludeArchived widen the repository listing.
	IncludeForks    bool
	IncludeArchived bool
}

// DefaultSyncConfig returns the default sync configuration
func DefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		ChunkSize:         500,
		MaxCommitsPerRepo: 0,
		StatBudgetPerRepo: 100,
		FetchCommitStats:  true,
		IncludeForks:      false,
		IncludeArchived:   false,
	}
}
