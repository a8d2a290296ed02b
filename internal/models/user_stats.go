package models

import "time"

// LanguageStat is one entry in a user's per-language commit breakdown.
type LanguageStat struct {
	Language string `json:"language"`
	Commits  int    `json:"commits"`
	Repos    int    `json:"repos"`
}

// UserStats is the derived analytics row recomputed after each successful
// sync. It is always reproducible from the commits table.
type UserStats struct {
	UserID        int64          `json:"user_id"`
	TotalCommits  int            `json:"total_commits"`
	TotalRepos    int            `json:"total_repos"`
	CurrentStreak int            `json:"current_streak"`
	LongestStreak int            `json:"longest_streak"`
	Languages     []LanguageStat `json:"languages"`
	ComputedAt    time.Time      `json:"computed_at"`
}
