package repository

import (
	"context"

	"github.com/mira/lyrichase/internal/domain"
	"gorm.io/gorm"
)

// ChallengeRepository handles challenge data operations.
type ChallengeRepository struct {
	db *gorm.DB
}

// NewChallengeRepository creates a new ChallengeRepository.
func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// Create inserts a new challenge record.
func (r *ChallengeRepository) Create(ctx context.Context, challenge *domain.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

// ExistsByRange checks if a challenge with the same line range already
// exists for the song.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - songID: owning song ID.
//   - start: first line number, inclusive.
//   - end: last line number, inclusive.
// Returns:
//   - bool: true if a record exists.
//   - error: non-nil if the lookup fails.
func (r *ChallengeRepository) ExistsByRange(ctx context.Context, songID string, start, end int) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Challenge{}).
		Where("song_id = ? AND start_line = ? AND end_line = ?", songID, start, end).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByID retrieves a challenge by its ID.
func (r *ChallengeRepository) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	var challenge domain.Challenge
	if err := r.db.WithContext(ctx).First(&challenge, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

// List retrieves challenges newest first.
func (r *ChallengeRepository) List(ctx context.Context) ([]domain.Challenge, error) {
	var challenges []domain.Challenge
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&challenges).Error; err != nil {
		return nil, err
	}
	return challenges, nil
}

// Update persists changes to an existing challenge row.
func (r *ChallengeRepository) Update(ctx context.Context, challenge *domain.Challenge) error {
	return r.db.WithContext(ctx).Save(challenge).Error
}

// Delete removes a challenge by ID.
func (r *ChallengeRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Challenge{}, "id = ?", id).Error
}
