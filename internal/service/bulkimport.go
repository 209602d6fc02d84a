package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mira/lyrichase/internal/domain"
	"github.com/mira/lyrichase/internal/logger"
	"github.com/mira/lyrichase/internal/source"
	"gorm.io/gorm"
)

// ErrJobNotFound is returned when no job exists for the given ID.
var ErrJobNotFound = errors.New("bulk import job not found")

// Configuration bounds enforced at submission.
const (
	MinRequestedCount    = 1
	MaxRequestedCount    = 500
	MinChallengesPerSong = 1
	MaxChallengesPerSong = 5
)

// ConfigError reports which submission bound was violated. It is the
// only failure ever surfaced synchronously to a submitter.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// JobStore is the ledger persistence surface the manager needs.
type JobStore interface {
	Create(ctx context.Context, job *domain.BulkImportJob) error
	Save(ctx context.Context, job *domain.BulkImportJob) error
	Get(ctx context.Context, id string) (*domain.BulkImportJob, error)
	List(ctx context.Context, limit int) ([]domain.BulkImportJob, error)
	ListUnfinished(ctx context.Context) ([]domain.BulkImportJob, error)
}

// JobRequest carries a bulk import submission.
type JobRequest struct {
	Source            string
	Language          string
	Count             int
	ChallengesPerSong int
	YearFrom          int
	YearTo            int
	SearchQuery       string
}

func (r *JobRequest) validate() error {
	if r.Source == "" {
		return &ConfigError{Field: "source", Reason: "must not be empty"}
	}
	if r.Count < MinRequestedCount || r.Count > MaxRequestedCount {
		return &ConfigError{
			Field:  "requested_count",
			Reason: fmt.Sprintf("must be between %d and %d", MinRequestedCount, MaxRequestedCount),
		}
	}
	if r.ChallengesPerSong < MinChallengesPerSong || r.ChallengesPerSong > MaxChallengesPerSong {
		return &ConfigError{
			Field:  "challenges_per_song",
			Reason: fmt.Sprintf("must be between %d and %d", MinChallengesPerSong, MaxChallengesPerSong),
		}
	}
	if r.YearFrom > 0 && r.YearTo > 0 && r.YearFrom > r.YearTo {
		return &ConfigError{Field: "year_from", Reason: "must not exceed year_to"}
	}
	return nil
}

// ManagerConfig holds bulk import manager settings.
type ManagerConfig struct {
	// MaxConcurrentJobs bounds simultaneously running jobs. The
	// external catalog is rate limited, so this ceiling is the sole
	// cross-job throttle; jobs past it stay pending until a slot frees.
	MaxConcurrentJobs int
	// JobListLimit caps how many jobs List serves, newest first.
	JobListLimit int
}

// Manager accepts bulk import submissions, dispatches one runner per
// job, and serves ledger lookups for pollers. Each job's ledger row is
// written only by its own runner goroutine.
type Manager struct {
	jobs      JobStore
	importer  *Importer
	synth     *Synthesizer
	sources   map[string]source.CatalogSource
	slots     chan struct{}
	listLimit int
	logger    *logger.Logger
	wg        sync.WaitGroup
}

// NewManager creates a bulk import manager.
func NewManager(jobs JobStore, im *Importer, synth *Synthesizer, sources map[string]source.CatalogSource, log *logger.Logger, cfg *ManagerConfig) *Manager {
	maxJobs := cfg.MaxConcurrentJobs
	if maxJobs <= 0 {
		maxJobs = 1
	}
	listLimit := cfg.JobListLimit
	if listLimit <= 0 {
		listLimit = 20
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Manager{
		jobs:      jobs,
		importer:  im,
		synth:     synth,
		sources:   sources,
		slots:     make(chan struct{}, maxJobs),
		listLimit: listLimit,
		logger:    log,
	}
}

// Submit validates the request, creates the ledger entry with status
// pending, and dispatches a runner without blocking the caller. The
// returned snapshot is independent of the runner's working copy.
func (m *Manager) Submit(ctx context.Context, req JobRequest) (*domain.BulkImportJob, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	cat, ok := m.sources[req.Source]
	if !ok {
		return nil, &ConfigError{Field: "source", Reason: "unknown source: " + req.Source}
	}

	job := &domain.BulkImportJob{
		ID:                uuid.New().String(),
		Source:            req.Source,
		Language:          strings.ToLower(req.Language),
		RequestedCount:    req.Count,
		ChallengesPerSong: req.ChallengesPerSong,
		YearFrom:          req.YearFrom,
		YearTo:            req.YearTo,
		SearchQuery:       req.SearchQuery,
		Status:            domain.JobStatusPending,
		Log:               domain.JobLog{},
	}
	if err := m.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	// Snapshot before dispatch: once the runner starts it owns the
	// struct, and the caller must still see a consistent pending job.
	snapshot := *job
	snapshot.Log = append(domain.JobLog{}, job.Log...)

	m.wg.Add(1)
	go m.run(job, cat)

	return &snapshot, nil
}

// Get returns the current ledger snapshot for a job.
func (m *Manager) Get(ctx context.Context, id string) (*domain.BulkImportJob, error) {
	job, err := m.jobs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// List returns known jobs newest first, capped at the configured limit.
func (m *Manager) List(ctx context.Context) ([]domain.BulkImportJob, error) {
	return m.jobs.List(ctx, m.listLimit)
}

// FailStale marks jobs still pending or running as failed. Called at
// startup so jobs whose runner died with the process do not stay stuck
// in a non-terminal status forever.
func (m *Manager) FailStale(ctx context.Context) (int, error) {
	stale, err := m.jobs.ListUnfinished(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list unfinished jobs: %w", err)
	}
	failed := 0
	for i := range stale {
		job := &stale[i]
		job.Status = domain.JobStatusFailed
		job.AppendLog("ERROR: interrupted by process restart")
		if err := m.jobs.Save(ctx, job); err != nil {
			return failed, fmt.Errorf("failed to mark job %s: %w", job.ID, err)
		}
		failed++
	}
	return failed, nil
}

// Wait blocks until all dispatched runners have finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// run drives one job to a terminal status. It owns all writes to the
// job's ledger row; counter updates and log appends for a candidate
// are persisted together so pollers never see a partial step.
func (m *Manager) run(job *domain.BulkImportJob, cat source.CatalogSource) {
	defer m.wg.Done()

	// Ceiling: the job stays pending until a slot frees
	m.slots <- struct{}{}
	defer func() { <-m.slots }()

	// Detached from the submit request; external calls carry their own timeouts
	ctx := logger.SetJobID(context.Background(), job.ID)
	log := m.logger.WithFields(logger.Fields{
		logger.FieldJobID:  job.ID,
		logger.FieldSource: job.Source,
	})

	job.Status = domain.JobStatusRunning
	job.AppendLog(fmt.Sprintf("Discovering songs from %s...", cat.DisplayName()))
	if err := m.jobs.Save(ctx, job); err != nil {
		m.failOnLedger(ctx, log, job, err)
		return
	}
	log.WithField(logger.FieldCount, job.RequestedCount).Info("Bulk import started")

	candidates, err := cat.Search(ctx, source.Filters{
		Language: job.Language,
		YearFrom: job.YearFrom,
		YearTo:   job.YearTo,
		Query:    job.SearchQuery,
	}, job.RequestedCount)
	if err != nil {
		log.WithError(err).Error("Catalog search failed")
		job.Status = domain.JobStatusFailed
		job.AppendLog("ERROR: search failed: " + err.Error())
		if saveErr := m.jobs.Save(ctx, job); saveErr != nil {
			log.WithError(saveErr).Error("Failed to mark job failed")
		}
		return
	}

	job.TotalFound = len(candidates)
	job.AppendLog(fmt.Sprintf("Found %d candidates", len(candidates)))
	if err := m.jobs.Save(ctx, job); err != nil {
		m.failOnLedger(ctx, log, job, err)
		return
	}

	total := len(candidates)
	for i, cand := range candidates {
		song, lines, err := m.importer.Import(ctx, cat, cand, job.Language)
		switch {
		case errors.Is(err, ErrDuplicateSong):
			job.Skipped++
			job.AppendLog(fmt.Sprintf("[%d/%d] Skipped (exists): %s", i+1, total, cand.Title))
		case err != nil:
			job.Failed++
			job.AppendLog(fmt.Sprintf("[%d/%d] %s: %s", i+1, total, failReason(err), cand.Title))
			log.WithError(err).WithField(logger.FieldVideoID, cand.VideoID).Warn("Candidate import failed")
		default:
			created, synthErr := m.synth.Synthesize(ctx, song.ID, lines, job.ChallengesPerSong)
			if synthErr != nil {
				log.WithError(synthErr).WithField(logger.FieldVideoID, cand.VideoID).Warn("Challenge synthesis incomplete")
			}
			job.Imported++
			job.ChallengesCreated += created
			job.AppendLog(fmt.Sprintf("[%d/%d] Imported: %s (%d lines, %d challenges)", i+1, total, cand.Title, len(lines), created))
		}

		if err := m.jobs.Save(ctx, job); err != nil {
			m.failOnLedger(ctx, log, job, err)
			return
		}
	}

	job.Status = domain.JobStatusCompleted
	job.AppendLog(fmt.Sprintf("Done! Imported %d, skipped %d, failed %d, challenges %d",
		job.Imported, job.Skipped, job.Failed, job.ChallengesCreated))
	if err := m.jobs.Save(ctx, job); err != nil {
		log.WithError(err).Error("Failed to mark job completed")
		return
	}

	log.WithFields(logger.Fields{
		"total_found":        job.TotalFound,
		"imported":           job.Imported,
		"skipped":            job.Skipped,
		"failed":             job.Failed,
		"challenges_created": job.ChallengesCreated,
	}).Info("Bulk import completed")
}

// failOnLedger handles a ledger write failure: processing cannot
// continue meaningfully, so mark the job failed on a best-effort basis
// and keep whatever counters were already committed.
func (m *Manager) failOnLedger(ctx context.Context, log *logger.Logger, job *domain.BulkImportJob, err error) {
	log.WithError(err).Error("Ledger write failed, aborting job")
	job.Status = domain.JobStatusFailed
	job.AppendLog("ERROR: ledger write failed: " + err.Error())
	if saveErr := m.jobs.Save(ctx, job); saveErr != nil {
		log.WithError(saveErr).Error("Failed to mark job failed after ledger error")
	}
}

// failReason maps a per-candidate import error to a short log label.
func failReason(err error) string {
	switch {
	case errors.Is(err, source.ErrNoLyrics):
		return "No lyrics"
	case errors.Is(err, ErrLyricsTooShort):
		return "Lyrics too short"
	default:
		return "Failed"
	}
}
