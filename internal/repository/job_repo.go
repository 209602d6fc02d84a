package repository

import (
	"context"

	"github.com/mira/lyrichase/internal/domain"
	"gorm.io/gorm"
)

// JobRepository handles bulk import job ledger operations. Each job row
// is only ever written by the single runner executing that job;
// concurrent pollers read committed snapshots.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *JobRepository: repository instance bound to db.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job ledger row.
func (r *JobRepository) Create(ctx context.Context, job *domain.BulkImportJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// Save writes the full job row back in one statement so counter
// increments and log appends become visible together.
func (r *JobRepository) Save(ctx context.Context, job *domain.BulkImportJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// Get retrieves a job by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
// Returns:
//   - *domain.BulkImportJob: job record if found.
//   - error: gorm.ErrRecordNotFound if no such job, other errors on lookup failure.
func (r *JobRepository) Get(ctx context.Context, id string) (*domain.BulkImportJob, error) {
	var job domain.BulkImportJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// List retrieves jobs newest first, capped at limit.
func (r *JobRepository) List(ctx context.Context, limit int) ([]domain.BulkImportJob, error) {
	var jobs []domain.BulkImportJob
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListUnfinished retrieves jobs that have not reached a terminal status.
func (r *JobRepository) ListUnfinished(ctx context.Context) ([]domain.BulkImportJob, error) {
	var jobs []domain.BulkImportJob
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []domain.JobStatus{domain.JobStatusPending, domain.JobStatusRunning}).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
