package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/devpulse/devpulse/internal/config"
	"github.com/devpulse/devpulse/internal/models"
)

const perPage = 100

// RateLimitInfo holds information about GitHub API rate limits
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetTime time.Time
}

// Client fetches repositories, commits, and per-commit statistics for the
// authenticated user from the GitHub API.
type Client struct {
	client  *http.Client
	baseURL string
	logger  *logrus.Logger

	mu            sync.Mutex
	rateLimitInfo RateLimitInfo
	requestCount  int

	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// ClientOption allows configuring the client
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL, used by tests
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithRetryConfig configures retry behavior
func WithRetryConfig(maxRetries int, initialBackoff, maxBackoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.initialBackoff = initialBackoff
		c.maxBackoff = maxBackoff
	}
}

// NewClient creates a new GitHub client with the given configuration
func NewClient(cfg *config.GitHubConfig, logger *logrus.Logger, opts ...ClientOption) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Token},
	)
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = 120 * time.Second

	client := &Client{
		client:         httpClient,
		baseURL:        cfg.APIBaseURL,
		logger:         logger,
		maxRetries:     cfg.RateLimit.MaxRetries,
		initialBackoff: cfg.RateLimit.InitialBackoff,
		maxBackoff:     cfg.RateLimit.MaxBackoff,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Metrics returns a point-in-time snapshot of the client's request accounting.
func (c *Client) Metrics() models.FetchMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.FetchMetrics{
		RequestCount:       c.requestCount,
		RateLimitRemaining: c.rateLimitInfo.Remaining,
	}
}

// updateRateLimitInfo updates the rate limit information from response headers
func (c *Client) updateRateLimitInfo(resp *http.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requestCount++
	if limit := resp.Header.Get("X-RateLimit-Limit"); limit != "" {
		c.rateLimitInfo.Limit, _ = strconv.Atoi(limit)
	}
	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
		c.rateLimitInfo.Remaining, _ = strconv.Atoi(remaining)
	}
	if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
		if resetTime, err := strconv.ParseInt(reset, 10, 64); err == nil {
			c.rateLimitInfo.ResetTime = time.Unix(resetTime, 0)
		}
	}
}

// doRequestWithBackoff performs a GET with exponential backoff, decoding the
// body into result when non-nil.
func (c *Client) doRequestWithBackoff(ctx context.Context, reqURL string, result interface{}) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/vnd.github+json")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = NewGitHubError(0, "request failed", err)
			c.logger.WithError(err).Warnf("Request attempt %d failed", attempt+1)
			if !c.sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = c.nextBackoff(backoff)
			continue
		}

		c.updateRateLimitInfo(resp)

		if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0") {
			resp.Body.Close()
			wait := c.retryAfter(resp)
			c.logger.WithField("wait", wait).Warn("Rate limit exceeded, waiting before retry")
			if !c.sleep(ctx, wait) {
				return ctx.Err()
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = NewGitHubError(resp.StatusCode, "failed to read response body", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = NewGitHubError(resp.StatusCode, string(body), nil)
			if resp.StatusCode >= 500 {
				if !c.sleep(ctx, backoff) {
					return ctx.Err()
				}
				backoff = c.nextBackoff(backoff)
				continue
			}
			return lastErr
		}

		if result != nil {
			if err := json.Unmarshal(body, result); err != nil {
				return NewGitHubError(resp.StatusCode, "failed to decode response", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) nextBackoff(backoff time.Duration) time.Duration {
	return time.Duration(math.Min(float64(backoff*2), float64(c.maxBackoff)))
}

func (c *Client) retryAfter(resp *http.Response) time.Duration {
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.ParseInt(retryAfter, 10, 64); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	c.mu.Lock()
	reset := c.rateLimitInfo.ResetTime
	c.mu.Unlock()
	if wait := time.Until(reset); wait > 0 {
		return wait
	}
	return c.initialBackoff
}

func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// FetchAllRepositories lists every repository the authenticated user owns,
// optionally including forks and archived repositories.
func (c *Client) FetchAllRepositories(ctx context.Context, includeForks, includeArchived bool) ([]*models.Repository, error) {
	var repos []*models.Repository

	for page := 1; ; page++ {
		reqURL := fmt.Sprintf("%s/user/repos?type=owner&sort=pushed&per_page=%d&page=%d",
			c.baseURL, perPage, page)

		var pageRepos []repoResponse
		if err := c.doRequestWithBackoff(ctx, reqURL, &pageRepos); err != nil {
			return nil, fmt.Errorf("failed to list repositories (page %d): %w", page, err)
		}

		for _, rr := range pageRepos {
			if rr.Fork && !includeForks {
				continue
			}
			if rr.Archived && !includeArchived {
				continue
			}
			repos = append(repos, convertRepo(rr))
		}

		if len(pageRepos) < perPage {
			break
		}
	}

	return repos, nil
}

// FetchAllCommits lists commits for a repository, newest first as GitHub
// returns them. When since is non-nil only commits authored strictly after it
// are requested; maxCommits caps the result when positive.
func (c *Client) FetchAllCommits(ctx context.Context, owner, name string, since *time.Time, maxCommits int) ([]*models.ProcessedCommit, error) {
	if owner == "" {
		return nil, NewValidationError("owner", "cannot be empty")
	}
	if name == "" {
		return nil, NewValidationError("name", "cannot be empty")
	}

	var commits []*models.ProcessedCommit

	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("per_page", strconv.Itoa(perPage))
		query.Set("page", strconv.Itoa(page))
		if since != nil {
			// The API's since filter is inclusive; the strictly-after cut is
			// applied client side below.
			query.Set("since", since.UTC().Format(time.RFC3339))
		}
		reqURL := fmt.Sprintf("%s/repos/%s/%s/commits?%s", c.baseURL, owner, name, query.Encode())

		var pageCommits []commitResponse
		if err := c.doRequestWithBackoff(ctx, reqURL, &pageCommits); err != nil {
			return nil, fmt.Errorf("failed to list commits for %s/%s (page %d): %w", owner, name, page, err)
		}

		for _, cr := range pageCommits {
			if since != nil && !cr.Commit.Author.Date.After(*since) {
				continue
			}
			commits = append(commits, convertCommit(cr))
			if maxCommits > 0 && len(commits) >= maxCommits {
				return commits, nil
			}
		}

		if len(pageCommits) < perPage {
			break
		}
	}

	return commits, nil
}

// FetchCommitStats fetches the size statistics for one commit.
func (c *Client) FetchCommitStats(ctx context.Context, owner, name, sha string) (*models.CommitStats, error) {
	if sha == "" {
		return nil, NewValidationError("sha", "cannot be empty")
	}

	reqURL := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.baseURL, owner, name, sha)

	var detail commitDetailResponse
	if err := c.doRequestWithBackoff(ctx, reqURL, &detail); err != nil {
		return nil, fmt.Errorf("failed to fetch stats for commit %s: %w", sha, err)
	}

	return &models.CommitStats{
		SHA:          detail.SHA,
		Additions:    detail.Stats.Additions,
		Deletions:    detail.Stats.Deletions,
		FilesChanged: len(detail.Files),
	}, nil
}

func convertRepo(rr repoResponse) *models.Repository {
	repo := &models.Repository{
		GitHubID:      rr.ID,
		Name:          rr.Name,
		FullName:      rr.FullName,
		StarsCount:    rr.StargazersCount,
		ForksCount:    rr.ForksCount,
		IsPrivate:     rr.Private,
		IsFork:        rr.Fork,
		IsArchived:    rr.Archived,
		DefaultBranch: rr.DefaultBranch,
	}
	if rr.Description != nil {
		repo.Description = *rr.Description
	}
	if rr.Language != nil {
		repo.Language = *rr.Language
	}
	if repo.DefaultBranch == "" {
		repo.DefaultBranch = "main"
	}
	return repo
}

func convertCommit(cr commitResponse) *models.ProcessedCommit {
	return &models.ProcessedCommit{
		SHA:         cr.SHA,
		Message:     cr.Commit.Message,
		AuthorName:  cr.Commit.Author.Name,
		AuthorEmail: cr.Commit.Author.Email,
		AuthorDate:  cr.Commit.Author.Date,
	}
}
