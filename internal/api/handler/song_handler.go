package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mira/lyrichase/internal/repository"
	"github.com/mira/lyrichase/internal/service"
	"github.com/mira/lyrichase/internal/source"
	"gorm.io/gorm"
)

// SongHandler exposes manual song curation: catalog search, single
// imports, listing, lyrics, and deletion.
type SongHandler struct {
	sources  map[string]source.CatalogSource
	importer *service.Importer
	songs    *repository.SongRepository
}

// NewSongHandler creates a new song handler.
func NewSongHandler(sources map[string]source.CatalogSource, importer *service.Importer, songs *repository.SongRepository) *SongHandler {
	return &SongHandler{sources: sources, importer: importer, songs: songs}
}

// SearchSongs handles POST /api/v1/admin/songs/search. The query is
// passed straight through to the catalog's own ranking.
func (h *SongHandler) SearchSongs(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	src := c.DefaultQuery("source", "ytmusic")
	cat, ok := h.sources[src]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown source: " + src})
		return
	}

	candidates, err := cat.Search(c.Request.Context(), source.Filters{Query: q}, 10)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	results := make([]gin.H, 0, len(candidates))
	for _, cand := range candidates {
		results = append(results, gin.H{
			"video_id":      cand.VideoID,
			"title":         cand.Title,
			"artist":        cand.Artist,
			"album":         cand.Album,
			"thumbnail_url": cand.ThumbnailURL,
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// SongImportRequest is the single import payload.
type SongImportRequest struct {
	VideoID  string `json:"video_id" binding:"required"`
	Source   string `json:"source"`
	Language string `json:"language"`
}

// ImportSong handles POST /api/v1/admin/songs/import.
func (h *SongHandler) ImportSong(c *gin.Context) {
	var req SongImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Source == "" {
		req.Source = "ytmusic"
	}
	cat, ok := h.sources[req.Source]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown source: " + req.Source})
		return
	}

	song, lines, err := h.importer.Import(c.Request.Context(), cat, source.Candidate{VideoID: req.VideoID}, req.Language)
	switch {
	case errors.Is(err, service.ErrDuplicateSong):
		c.JSON(http.StatusConflict, gin.H{"error": "Song already imported"})
		return
	case errors.Is(err, source.ErrNoLyrics), errors.Is(err, service.ErrLyricsTooShort):
		c.JSON(http.StatusNotFound, gin.H{"error": "No usable lyrics for this song"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          song.ID,
		"title":       song.Title,
		"artist":      song.Artist,
		"lyric_count": len(lines),
	})
}

// ListSongs handles GET /api/v1/admin/songs.
func (h *SongHandler) ListSongs(c *gin.Context) {
	songs, err := h.songs.List(c.Request.Context(), c.Query("language"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, songs)
}

// GetSongLyrics handles GET /api/v1/admin/songs/:id/lyrics.
func (h *SongHandler) GetSongLyrics(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.songs.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Song not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	lines, err := h.songs.GetLyrics(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lines)
}

// SetSongLanguage handles PUT /api/v1/admin/songs/:id/language. The
// language comes as a query parameter so curators can correct a
// misdetected tag without resubmitting the song.
func (h *SongHandler) SetSongLanguage(c *gin.Context) {
	id := c.Param("id")
	language := c.Query("language")
	if len(language) < 2 || len(language) > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "language must be 2 to 10 characters"})
		return
	}

	if _, err := h.songs.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Song not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.songs.SetLanguage(c.Request.Context(), id, language); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "language": strings.ToLower(language)})
}

// DeleteSong handles DELETE /api/v1/admin/songs/:id.
func (h *SongHandler) DeleteSong(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.songs.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Song not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.songs.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
