package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mira/lyrichase/internal/config"
	"github.com/mira/lyrichase/internal/domain"
	"github.com/mira/lyrichase/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) (*repository.SongRepository, *repository.ChallengeRepository) {
	t.Helper()
	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:          "sqlite",
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxIdleConns:    1,
		MaxOpenConns:    1,
		ConnMaxLifetime: time.Hour,
		AutoMigrate:     true,
	})
	require.NoError(t, err)
	return repository.NewSongRepository(db), repository.NewChallengeRepository(db)
}

func seedSong(t *testing.T, songs *repository.SongRepository) *domain.Song {
	t.Helper()
	song := &domain.Song{
		ID:       uuid.NewString(),
		Title:    "Seeded Song",
		Artist:   "Seeded Artist",
		VideoID:  uuid.NewString(),
		Language: "en",
	}
	lines := []string{
		"first line of the seeded song",
		"second line with different words",
		"third line keeps on going",
		"fourth line almost at the end",
		"fifth line wrapping things up",
		"sixth line to close it out",
	}
	require.NoError(t, songs.CreateWithLyrics(t.Context(), song, lines))
	return song
}

func curationRouter(songs *repository.SongRepository, challenges *repository.ChallengeRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	sh := NewSongHandler(nil, nil, songs)
	ch := NewChallengeHandler(challenges, songs)
	r.PUT("/songs/:id/language", sh.SetSongLanguage)
	r.POST("/challenges", ch.CreateChallenge)
	r.PUT("/challenges/:id", ch.UpdateChallenge)
	return r
}

func TestSetSongLanguage(t *testing.T) {
	songs, challenges := newTestRepos(t)
	song := seedSong(t, songs)
	r := curationRouter(songs, challenges)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/songs/"+song.ID+"/language?language=ES", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "es", resp["language"])

	updated, err := songs.GetByID(t.Context(), song.ID)
	require.NoError(t, err)
	assert.Equal(t, "es", updated.Language)
}

func TestSetSongLanguageValidation(t *testing.T) {
	songs, challenges := newTestRepos(t)
	song := seedSong(t, songs)
	r := curationRouter(songs, challenges)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/songs/"+song.ID+"/language?language=x", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/songs/"+uuid.NewString()+"/language?language=en", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateChallenge(t *testing.T) {
	songs, challenges := newTestRepos(t)
	song := seedSong(t, songs)
	r := curationRouter(songs, challenges)

	challenge := &domain.Challenge{
		ID:        uuid.NewString(),
		SongID:    song.ID,
		StartLine: 1,
		EndLine:   3,
		IsActive:  true,
	}
	require.NoError(t, challenges.Create(t.Context(), challenge))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/challenges/"+challenge.ID,
		strings.NewReader(`{"end_line": 4, "is_active": false}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	updated, err := challenges.GetByID(t.Context(), challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.StartLine)
	assert.Equal(t, 4, updated.EndLine)
	assert.False(t, updated.IsActive)
}

func TestUpdateChallengeInvertedRange(t *testing.T) {
	songs, challenges := newTestRepos(t)
	song := seedSong(t, songs)
	r := curationRouter(songs, challenges)

	challenge := &domain.Challenge{
		ID:        uuid.NewString(),
		SongID:    song.ID,
		StartLine: 1,
		EndLine:   3,
		IsActive:  true,
	}
	require.NoError(t, challenges.Create(t.Context(), challenge))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/challenges/"+challenge.ID,
		strings.NewReader(`{"start_line": 5}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Rejected update must not persist
	unchanged, err := challenges.GetByID(t.Context(), challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unchanged.StartLine)
}

func TestUpdateChallengeNotFound(t *testing.T) {
	songs, challenges := newTestRepos(t)
	r := curationRouter(songs, challenges)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/challenges/"+uuid.NewString(),
		strings.NewReader(`{"is_active": false}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
