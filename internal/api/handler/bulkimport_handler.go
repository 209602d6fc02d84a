package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mira/lyrichase/internal/service"
)

// BulkImportHandler exposes the bulk import job surface: submission
// plus the polling endpoints the admin UI uses to track a run.
type BulkImportHandler struct {
	manager *service.Manager
}

// NewBulkImportHandler creates a new bulk import handler.
func NewBulkImportHandler(manager *service.Manager) *BulkImportHandler {
	return &BulkImportHandler{manager: manager}
}

// BulkImportRequest is the submission payload.
type BulkImportRequest struct {
	Source            string `json:"source" binding:"required"`
	Language          string `json:"language"`
	Count             int    `json:"count"`
	ChallengesPerSong int    `json:"challenges_per_song"`
	YearFrom          int    `json:"year_from"`
	YearTo            int    `json:"year_to"`
	SearchQuery       string `json:"search_query"`
}

// StartBulkImport handles POST /api/v1/admin/bulk-import.
// Validation failures are the only errors returned here; everything
// that happens during execution surfaces through the job snapshot.
func (h *BulkImportHandler) StartBulkImport(c *gin.Context) {
	var req BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ChallengesPerSong == 0 {
		req.ChallengesPerSong = 1
	}

	job, err := h.manager.Submit(c.Request.Context(), service.JobRequest{
		Source:            req.Source,
		Language:          req.Language,
		Count:             req.Count,
		ChallengesPerSong: req.ChallengesPerSong,
		YearFrom:          req.YearFrom,
		YearTo:            req.YearTo,
		SearchQuery:       req.SearchQuery,
	})
	if err != nil {
		var cfgErr *service.ConfigError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": cfgErr.Error(), "field": cfgErr.Field})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, job)
}

// ListJobs handles GET /api/v1/admin/bulk-import/jobs.
func (h *BulkImportHandler) ListJobs(c *gin.Context) {
	jobs, err := h.manager.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// GetJob handles GET /api/v1/admin/bulk-import/jobs/:id. Polling
// always succeeds with a snapshot unless the id is unknown.
func (h *BulkImportHandler) GetJob(c *gin.Context) {
	job, err := h.manager.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}
