package models

import "time"

// Commit is a persisted commit row. Uniqueness is enforced by the storage
// layer on (repository_id, sha); re-inserting an existing commit is a no-op.
type Commit struct {
	ID           int64     `json:"-"`
	RepositoryID int64     `json:"-"`
	SHA          string    `json:"sha"`
	Message      string    `json:"message"`
	AuthorName   string    `json:"author_name"`
	AuthorEmail  string    `json:"author_email"`
	AuthorDate   time.Time `json:"author_date"`
	Additions    int       `json:"additions"`
	Deletions    int       `json:"deletions"`
	FilesChanged int       `json:"files_changed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProcessedCommit is a fetched commit that has passed validation but has not
// been persisted yet. Stats are zero until enrichment merges them in; absent
// stats are an explicit documented default, not an error.
type ProcessedCommit struct {
	SHA          string    `json:"sha"`
	Message      string    `json:"message"`
	AuthorName   string    `json:"author_name"`
	AuthorEmail  string    `json:"author_email"`
	AuthorDate   time.Time `json:"author_date"`
	Additions    int       `json:"additions"`
	Deletions    int       `json:"deletions"`
	FilesChanged int       `json:"files_changed"`
}

// CommitStats holds per-commit size statistics fetched separately from the
// commit list (the stats endpoint is the expensive, rate-limited call).
type CommitStats struct {
	SHA          string `json:"sha"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	FilesChanged int    `json:"files_changed"`
}
