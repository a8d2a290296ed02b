package models

// PipelineMetrics are process-local counters for one commit pipeline
// instance. They exist for progress reporting and post-run diagnostics and
// are never persisted.
type PipelineMetrics struct {
	Validated int `json:"validated"`
	Failed    int `json:"failed"`
	Enriched  int `json:"enriched"`
	Inserted  int `json:"inserted"`
	Skipped   int `json:"skipped"`
}

// FetchMetrics is a point-in-time snapshot of the GitHub client's request
// accounting.
type FetchMetrics struct {
	RequestCount       int `json:"request_count"`
	RateLimitRemaining int `json:"rate_limit_remaining"`
}
