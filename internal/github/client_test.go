package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpulse/devpulse/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	cfg := config.DefaultGitHubConfig()
	cfg.Token = "test-token"

	client := NewClient(cfg, logger,
		WithBaseURL(server.URL),
		WithRetryConfig(3, time.Millisecond, 10*time.Millisecond),
	)
	return client, server
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func makeRepoPage(start, count int) []repoResponse {
	page := make([]repoResponse, count)
	for i := 0; i < count; i++ {
		page[i] = repoResponse{
			ID:            int64(start + i),
			Name:          fmt.Sprintf("repo%d", start+i),
			FullName:      fmt.Sprintf("octocat/repo%d", start+i),
			DefaultBranch: "main",
		}
	}
	return page
}

func makeCommitResponse(sha string, date time.Time) commitResponse {
	var cr commitResponse
	cr.SHA = sha
	cr.Commit.Message = "commit " + sha[:7]
	cr.Commit.Author.Name = "Octo Cat"
	cr.Commit.Author.Email = "octo@example.com"
	cr.Commit.Author.Date = date
	return cr
}

func TestFetchAllRepositoriesPagination(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/repos", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "owner", r.URL.Query().Get("type"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			writeJSON(t, w, makeRepoPage(0, perPage))
		case 2:
			writeJSON(t, w, makeRepoPage(perPage, 30))
		default:
			t.Errorf("unexpected page %d", page)
		}
	})

	repos, err := client.FetchAllRepositories(context.Background(), false, false)
	require.NoError(t, err)
	assert.Len(t, repos, perPage+30)
	assert.Equal(t, "octocat/repo0", repos[0].FullName)
	assert.Equal(t, int64(129), repos[len(repos)-1].GitHubID)
}

func TestFetchAllRepositoriesFiltersForksAndArchived(t *testing.T) {
	page := []repoResponse{
		{ID: 1, Name: "plain", FullName: "octocat/plain"},
		{ID: 2, Name: "forked", FullName: "octocat/forked", Fork: true},
		{ID: 3, Name: "frozen", FullName: "octocat/frozen", Archived: true},
	}
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, page)
	}

	client, _ := newTestClient(t, handler)
	repos, err := client.FetchAllRepositories(context.Background(), false, false)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "octocat/plain", repos[0].FullName)

	client, _ = newTestClient(t, handler)
	repos, err = client.FetchAllRepositories(context.Background(), true, true)
	require.NoError(t, err)
	assert.Len(t, repos, 3)
}

func TestFetchAllRepositoriesDefaultBranchFallback(t *testing.T) {
	desc := "demo repo"
	lang := "Go"
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []repoResponse{
			{ID: 1, Name: "legacy", FullName: "octocat/legacy", Description: &desc, Language: &lang},
		})
	})

	repos, err := client.FetchAllRepositories(context.Background(), false, false)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "main", repos[0].DefaultBranch)
	assert.Equal(t, "demo repo", repos[0].Description)
	assert.Equal(t, "Go", repos[0].Language)
}

func TestFetchAllCommitsSinceIsStrictlyAfter(t *testing.T) {
	anchor := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octocat/alpha/commits", r.URL.Path)
		assert.Equal(t, anchor.Format(time.RFC3339), r.URL.Query().Get("since"))

		writeJSON(t, w, []commitResponse{
			makeCommitResponse(strings.Repeat("a", 40), anchor.Add(time.Hour)),
			makeCommitResponse(strings.Repeat("b", 40), anchor),
			makeCommitResponse(strings.Repeat("c", 40), anchor.Add(-time.Hour)),
		})
	})

	commits, err := client.FetchAllCommits(context.Background(), "octocat", "alpha", &anchor, 0)
	require.NoError(t, err)

	// The API since filter is inclusive; the commit at the anchor must be cut.
	require.Len(t, commits, 1)
	assert.Equal(t, strings.Repeat("a", 40), commits[0].SHA)
}

func TestFetchAllCommitsMaxCommitsCap(t *testing.T) {
	base := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	var requests int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		page := make([]commitResponse, perPage)
		for i := range page {
			page[i] = makeCommitResponse(fmt.Sprintf("%040x", i), base.Add(time.Duration(i)*time.Minute))
		}
		writeJSON(t, w, page)
	})

	commits, err := client.FetchAllCommits(context.Background(), "octocat", "alpha", nil, 42)
	require.NoError(t, err)
	assert.Len(t, commits, 42)
	assert.Equal(t, 1, requests)
}

func TestFetchAllCommitsValidation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.FetchAllCommits(context.Background(), "", "alpha", nil, 0)
	assert.Error(t, err)

	_, err = client.FetchAllCommits(context.Background(), "octocat", "", nil, 0)
	assert.Error(t, err)
}

func TestFetchCommitStats(t *testing.T) {
	sha := strings.Repeat("a", 40)

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octocat/alpha/commits/"+sha, r.URL.Path)

		var detail commitDetailResponse
		detail.SHA = sha
		detail.Stats.Additions = 12
		detail.Stats.Deletions = 4
		detail.Stats.Total = 16
		detail.Files = append(detail.Files, struct {
			Filename string `json:"filename"`
		}{Filename: "main.go"}, struct {
			Filename string `json:"filename"`
		}{Filename: "main_test.go"})
		writeJSON(t, w, detail)
	})

	stats, err := client.FetchCommitStats(context.Background(), "octocat", "alpha", sha)
	require.NoError(t, err)
	assert.Equal(t, sha, stats.SHA)
	assert.Equal(t, 12, stats.Additions)
	assert.Equal(t, 4, stats.Deletions)
	assert.Equal(t, 2, stats.FilesChanged)
}

func TestMetricsTrackRateLimitHeaders(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", "4321")
		writeJSON(t, w, []repoResponse{})
	})

	_, err := client.FetchAllRepositories(context.Background(), false, false)
	require.NoError(t, err)

	metrics := client.Metrics()
	assert.Equal(t, 1, metrics.RequestCount)
	assert.Equal(t, 4321, metrics.RateLimitRemaining)
}

func TestRetriesOnServerError(t *testing.T) {
	var attempts int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(t, w, []repoResponse{{ID: 1, Name: "alpha", FullName: "octocat/alpha"}})
	})

	repos, err := client.FetchAllRepositories(context.Background(), false, false)
	require.NoError(t, err)
	assert.Len(t, repos, 1)
	assert.Equal(t, 3, attempts)
}

func TestWaitsOnRateLimitResponse(t *testing.T) {
	var attempts int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		writeJSON(t, w, []repoResponse{})
	})

	_, err := client.FetchAllRepositories(context.Background(), false, false)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var attempts int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	_, err := client.FetchAllCommits(context.Background(), "octocat", "gone", nil, 0)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var ghErr *GitHubError
	require.ErrorAs(t, err, &ghErr)
	assert.Equal(t, http.StatusNotFound, ghErr.StatusCode)
}
