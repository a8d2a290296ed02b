package models

import "time"

// Repository is a persisted repository row, keyed by the stable GitHub ID.
// Repositories are upserted on every sync and never deleted by the sync engine.
type Repository struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"-"`
	GitHubID      int64     `json:"github_id"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description"`
	Language      string    `json:"language"`
	StarsCount    int       `json:"stars_count"`
	ForksCount    int       `json:"forks_count"`
	IsPrivate     bool      `json:"is_private"`
	IsFork        bool      `json:"is_fork"`
	IsArchived    bool      `json:"is_archived"`
	DefaultBranch string    `json:"default_branch"`
	LastSyncedAt  time.Time `json:"last_synced_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Owner returns the owner half of the full name ("owner/repo"), falling back
// to an empty string when the full name is malformed.
func (r *Repository) Owner() string {
	for i := 0; i < len(r.FullName); i++ {
		if r.FullName[i] == '/' {
			return r.FullName[:i]
		}
	}
	return ""
}
