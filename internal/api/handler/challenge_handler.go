package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mira/lyrichase/internal/domain"
	"github.com/mira/lyrichase/internal/repository"
	"gorm.io/gorm"
)

const previewMaxLen = 120

// ChallengeHandler manages hand-curated line-range challenges.
type ChallengeHandler struct {
	challenges *repository.ChallengeRepository
	songs      *repository.SongRepository
}

// NewChallengeHandler creates a new challenge handler.
func NewChallengeHandler(challenges *repository.ChallengeRepository, songs *repository.SongRepository) *ChallengeHandler {
	return &ChallengeHandler{challenges: challenges, songs: songs}
}

// ChallengeCreateRequest is the manual challenge payload.
type ChallengeCreateRequest struct {
	SongID    string `json:"song_id" binding:"required"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// CreateChallenge handles POST /api/v1/admin/challenges.
func (h *ChallengeHandler) CreateChallenge(c *gin.Context) {
	var req ChallengeCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.StartLine < 0 || req.StartLine > req.EndLine {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_line must be non-negative and not exceed end_line"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.songs.GetByID(ctx, req.SongID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Song not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	lines, err := h.songs.GetLyricRange(ctx, req.SongID, req.StartLine, req.EndLine)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Line range is outside the song's lyrics"})
		return
	}

	exists, err := h.challenges.ExistsByRange(ctx, req.SongID, req.StartLine, req.EndLine)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Challenge already exists for this range"})
		return
	}

	challenge := &domain.Challenge{
		ID:        uuid.NewString(),
		SongID:    req.SongID,
		StartLine: req.StartLine,
		EndLine:   req.EndLine,
		IsActive:  true,
	}
	if err := h.challenges.Create(ctx, challenge); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, challenge)
}

// ListChallenges handles GET /api/v1/admin/challenges. Each entry
// carries a short lyric preview for review in the admin UI.
func (h *ChallengeHandler) ListChallenges(c *gin.Context) {
	ctx := c.Request.Context()
	challenges, err := h.challenges.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	results := make([]gin.H, 0, len(challenges))
	for _, ch := range challenges {
		lines, err := h.songs.GetLyricRange(ctx, ch.SongID, ch.StartLine, ch.EndLine)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		results = append(results, gin.H{
			"id":         ch.ID,
			"song_id":    ch.SongID,
			"start_line": ch.StartLine,
			"end_line":   ch.EndLine,
			"is_active":  ch.IsActive,
			"preview":    buildPreview(lines),
			"created_at": ch.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"challenges": results})
}

// ChallengeUpdateRequest carries a partial challenge update; nil fields
// are left unchanged.
type ChallengeUpdateRequest struct {
	StartLine *int  `json:"start_line"`
	EndLine   *int  `json:"end_line"`
	IsActive  *bool `json:"is_active"`
}

// UpdateChallenge handles PUT /api/v1/admin/challenges/:id.
func (h *ChallengeHandler) UpdateChallenge(c *gin.Context) {
	var req ChallengeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	challenge, err := h.challenges.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Challenge not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.StartLine != nil {
		challenge.StartLine = *req.StartLine
	}
	if req.EndLine != nil {
		challenge.EndLine = *req.EndLine
	}
	if req.IsActive != nil {
		challenge.IsActive = *req.IsActive
	}
	if challenge.StartLine < 0 || challenge.StartLine > challenge.EndLine {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_line must be non-negative and not exceed end_line"})
		return
	}

	if err := h.challenges.Update(ctx, challenge); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, challenge)
}

// DeleteChallenge handles DELETE /api/v1/admin/challenges/:id.
func (h *ChallengeHandler) DeleteChallenge(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.challenges.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Challenge not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.challenges.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func buildPreview(lines []domain.LyricLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, l.Text)
	}
	preview := strings.Join(parts, " / ")
	if len(preview) > previewMaxLen {
		preview = preview[:previewMaxLen] + "..."
	}
	return preview
}
