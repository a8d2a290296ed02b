package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devpulse/devpulse/internal/analytics"
	"github.com/devpulse/devpulse/internal/config"
	"github.com/devpulse/devpulse/internal/db"
	"github.com/devpulse/devpulse/internal/models"
	syncengine "github.com/devpulse/devpulse/internal/sync"
)

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error string `json:"error"`
}

// SyncRequest is the body of a sync trigger request
type SyncRequest struct {
	FullSync          bool `json:"full_sync"`
	IncludeForks      bool `json:"include_forks"`
	IncludeArchived   bool `json:"include_archived"`
	MaxCommitsPerRepo int  `json:"max_commits_per_repo"`
	FetchStats        *bool `json:"fetch_stats"`
}

type Handler struct {
	store        db.Store
	orchestrator *syncengine.Orchestrator
	analytics    *analytics.Service
	config       *config.SyncConfig
	logger       *logrus.Logger
}

func NewHandler(store db.Store, orchestrator *syncengine.Orchestrator, analyticsSvc *analytics.Service, cfg *config.SyncConfig, logger *logrus.Logger) *Handler {
	return &Handler{
		store:        store,
		orchestrator: orchestrator,
		analytics:    analyticsSvc,
		config:       cfg,
		logger:       logger,
	}
}

// TriggerSync starts a sync run for a user
// @Summary Trigger a sync
// @Description Starts a background sync run for the user. Rejected when one is already running.
// @Tags sync
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body SyncRequest false "Sync options"
// @Success 202 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /users/{id}/sync [post]
func (h *Handler) TriggerSync(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	jobs, err := h.store.ListSyncJobs(c.Request.Context(), userID, 1)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check latest sync job")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to check sync status"})
		return
	}
	if len(jobs) > 0 && jobs[0].Status == models.SyncJobInProgress {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "sync already in progress"})
		return
	}

	opts := syncengine.DefaultOptions(h.config)
	opts.FullSync = req.FullSync
	opts.IncludeForks = req.IncludeForks || opts.IncludeForks
	opts.IncludeArchived = req.IncludeArchived || opts.IncludeArchived
	if req.MaxCommitsPerRepo > 0 {
		opts.MaxCommitsPerRepo = req.MaxCommitsPerRepo
	}
	if req.FetchStats != nil {
		opts.FetchStats = *req.FetchStats
	}

	// The run outlives the request; the job row is the durable view of it.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := h.orchestrator.Sync(ctx, userID, opts); err != nil {
			h.logger.WithError(err).WithField("user_id", userID).Error("Sync run could not start")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

// GetSyncJob returns one sync job
// @Summary Get a sync job
// @Tags sync
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} models.SyncJob
// @Failure 404 {object} ErrorResponse
// @Router /sync-jobs/{id} [get]
func (h *Handler) GetSyncJob(c *gin.Context) {
	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid job id"})
		return
	}

	job, err := h.store.GetSyncJob(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "sync job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListSyncJobs returns recent sync jobs for a user
// @Summary List sync jobs
// @Tags sync
// @Produce json
// @Param id path int true "User ID"
// @Param limit query int false "Number of jobs to return" default(20)
// @Success 200 {array} models.SyncJob
// @Failure 500 {object} ErrorResponse
// @Router /users/{id}/sync-jobs [get]
func (h *Handler) ListSyncJobs(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	limit := getIntQueryParam(c, "limit", 20)

	jobs, err := h.store.ListSyncJobs(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list sync jobs")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list sync jobs"})
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// ListRepositories returns the user's synced repositories
// @Summary List repositories
// @Tags repositories
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.Repository
// @Failure 500 {object} ErrorResponse
// @Router /users/{id}/repositories [get]
func (h *Handler) ListRepositories(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	repos, err := h.store.ListRepositories(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list repositories")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list repositories"})
		return
	}

	c.JSON(http.StatusOK, repos)
}

// GetRepositoryCommits returns persisted commits with pagination
// @Summary List commits
// @Tags repositories
// @Produce json
// @Param id path int true "Repository ID"
// @Param limit query int false "Number of commits to return" default(50)
// @Param offset query int false "Number of commits to skip" default(0)
// @Param since query string false "Filter commits since this date (RFC3339)"
// @Param until query string false "Filter commits until this date (RFC3339)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /repositories/{id}/commits [get]
func (h *Handler) GetRepositoryCommits(c *gin.Context) {
	repoID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid repository id"})
		return
	}

	limit := getIntQueryParam(c, "limit", 50)
	offset := getIntQueryParam(c, "offset", 0)

	since, err := getTimeQueryParam(c, "since")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid since parameter (use RFC3339 format)"})
		return
	}
	until, err := getTimeQueryParam(c, "until")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid until parameter (use RFC3339 format)"})
		return
	}

	commits, total, err := h.store.GetCommitsWithPagination(c.Request.Context(), repoID, limit, offset, since, until)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get commits")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to get commits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"commits": commits,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetUserStats returns the latest recomputed analytics for a user
// @Summary Get user stats
// @Tags analytics
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserStats
// @Failure 404 {object} ErrorResponse
// @Router /users/{id}/stats [get]
func (h *Handler) GetUserStats(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	stats, err := h.analytics.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get user stats")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to get user stats"})
		return
	}
	if stats == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no stats computed yet"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Health reports service liveness
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getIntQueryParam(c *gin.Context, param string, defaultValue int) int {
	value := c.Query(param)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getTimeQueryParam(c *gin.Context, param string) (*time.Time, error) {
	value := c.Query(param)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
