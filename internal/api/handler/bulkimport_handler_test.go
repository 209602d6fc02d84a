package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mira/lyrichase/internal/domain"
	"github.com/mira/lyrichase/internal/service"
	"github.com/mira/lyrichase/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memJobStore struct {
	mu   sync.Mutex
	jobs map[string]domain.BulkImportJob
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: make(map[string]domain.BulkImportJob)}
}

func (s *memJobStore) Create(_ context.Context, job *domain.BulkImportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.CreatedAt = time.Now().UTC()
	s.jobs[job.ID] = *job
	return nil
}

func (s *memJobStore) Save(_ context.Context, job *domain.BulkImportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *memJobStore) Get(_ context.Context, id string) (*domain.BulkImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &job, nil
}

func (s *memJobStore) List(_ context.Context, limit int) ([]domain.BulkImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.BulkImportJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *memJobStore) ListUnfinished(_ context.Context) ([]domain.BulkImportJob, error) {
	return nil, nil
}

type memSongStore struct{}

func (memSongStore) ExistsByVideoID(context.Context, string) (bool, error)      { return false, nil }
func (memSongStore) ExistsByTitleArtist(context.Context, string, string) (bool, error) {
	return false, nil
}
func (memSongStore) CreateWithLyrics(context.Context, *domain.Song, []string) error { return nil }

type memChallengeStore struct{}

func (memChallengeStore) ExistsByRange(context.Context, string, int, int) (bool, error) {
	return false, nil
}
func (memChallengeStore) Create(context.Context, *domain.Challenge) error { return nil }

type emptyCatalog struct{}

func (emptyCatalog) SourceID() string    { return "fake" }
func (emptyCatalog) DisplayName() string { return "Fake Catalog" }
func (emptyCatalog) Search(context.Context, source.Filters, int) ([]source.Candidate, error) {
	return nil, nil
}
func (emptyCatalog) Lookup(context.Context, string) (*source.TrackDetail, error) {
	return nil, source.ErrNoLyrics
}
func (emptyCatalog) Lyrics(context.Context, string) ([]string, error) {
	return nil, source.ErrNoLyrics
}

func testRouter(t *testing.T) (*gin.Engine, *service.Manager, *memJobStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemJobStore()
	importer := service.NewImporter(memSongStore{}, 6)
	synth := service.NewSynthesizer(memChallengeStore{})
	manager := service.NewManager(store, importer, synth, map[string]source.CatalogSource{"fake": emptyCatalog{}}, nil, &service.ManagerConfig{MaxConcurrentJobs: 1, JobListLimit: 20})

	r := gin.New()
	h := NewBulkImportHandler(manager)
	r.POST("/bulk-import", h.StartBulkImport)
	r.GET("/bulk-import/jobs", h.ListJobs)
	r.GET("/bulk-import/jobs/:id", h.GetJob)
	return r, manager, store
}

func TestStartBulkImportValid(t *testing.T) {
	r, manager, _ := testRouter(t)

	body := `{"source": "fake", "count": 5, "language": "en"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bulk-import", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var job domain.BulkImportJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "fake", job.Source)
	assert.Equal(t, 5, job.RequestedCount)
	// Omitted challenges_per_song defaults to one
	assert.Equal(t, 1, job.ChallengesPerSong)
	assert.Equal(t, domain.JobStatusPending, job.Status)

	manager.Wait()
}

func TestStartBulkImportMissingSource(t *testing.T) {
	r, _, _ := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bulk-import", strings.NewReader(`{"count": 5}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartBulkImportBadCount(t *testing.T) {
	r, _, _ := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bulk-import", strings.NewReader(`{"source": "fake", "count": 0}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "requested_count", resp["field"])
}

func TestStartBulkImportUnknownSource(t *testing.T) {
	r, _, _ := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bulk-import", strings.NewReader(`{"source": "nope", "count": 5}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "source", resp["field"])
}

func TestGetJobNotFound(t *testing.T) {
	r, _, _ := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bulk-import/jobs/does-not-exist", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetJobSnapshot(t *testing.T) {
	r, manager, store := testRouter(t)

	job := &domain.BulkImportJob{
		ID:         "job-1",
		Source:     "fake",
		Status:     domain.JobStatusRunning,
		TotalFound: 10,
		Imported:   3,
		Skipped:    1,
	}
	job.AppendLog("Found 10 candidates")
	require.NoError(t, store.Create(context.Background(), job))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bulk-import/jobs/job-1", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got domain.BulkImportJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 10, got.TotalFound)
	assert.Equal(t, 3, got.Imported)
	require.Len(t, got.Log, 1)
	assert.Equal(t, "Found 10 candidates", got.Log[0].Message)

	manager.Wait()
}
