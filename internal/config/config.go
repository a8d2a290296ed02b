package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port               string
	DBConnectionString string
	GitHubToken        string
	Sync               *SyncConfig
	GitHub             *GitHubConfig
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DBConnectionString: getEnv("DB_CONNECTION_STRING", ""),
		GitHubToken:        getEnv("GITHUB_TOKEN", ""),
		Sync:               DefaultSyncConfig(),
		GitHub:             DefaultGitHubConfig(),
	}

	if v, err := strconv.Atoi(getEnv("SYNC_MAX_COMMITS_PER_REPO", "0")); err == nil && v > 0 {
		cfg.Sync.MaxCommitsPerRepo = v
	}
	if v, err := strconv.Atoi(getEnv("SYNC_STAT_BUDGET_PER_REPO", "0")); err == nil && v > 0 {
		cfg.Sync.StatBudgetPerRepo = v
	}
	if v, err := strconv.ParseBool(getEnv("SYNC_FETCH_COMMIT_STATS", "true")); err == nil {
		cfg.Sync.FetchCommitStats = v
	}

	cfg.GitHub.Token = cfg.GitHubToken

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
