package repository

import (
	"context"
	"strings"

	"github.com/mira/lyrichase/internal/domain"
	"gorm.io/gorm"
)

// SongRepository handles song and lyric line data operations.
type SongRepository struct {
	db *gorm.DB
}

// NewSongRepository creates a new SongRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *SongRepository: repository instance bound to db.
func NewSongRepository(db *gorm.DB) *SongRepository {
	return &SongRepository{db: db}
}

// ExistsByVideoID checks if a song with the given external video ID exists.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - videoID: external catalog track identifier.
// Returns:
//   - bool: true if a record exists.
//   - error: non-nil if the lookup fails.
func (r *SongRepository) ExistsByVideoID(ctx context.Context, videoID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Song{}).
		Where("video_id = ?", videoID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByTitleArtist checks whether the same song was already imported
// under a different video, matching on normalized title and artist.
func (r *SongRepository) ExistsByTitleArtist(ctx context.Context, title, artist string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Song{}).
		Where("LOWER(title) = ? AND LOWER(artist) = ?",
			strings.ToLower(strings.TrimSpace(title)),
			strings.ToLower(strings.TrimSpace(artist))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateWithLyrics persists a song and its numbered lyric lines in one transaction.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - song: song record to persist.
//   - lines: lyric lines in order; line numbers are assigned from 0.
// Returns:
//   - error: non-nil if the transaction fails.
func (r *SongRepository) CreateWithLyrics(ctx context.Context, song *domain.Song, lines []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(song).Error; err != nil {
			return err
		}
		lyrics := make([]domain.LyricLine, 0, len(lines))
		for i, text := range lines {
			lyrics = append(lyrics, domain.LyricLine{
				SongID:     song.ID,
				LineNumber: i,
				Text:       text,
			})
		}
		return tx.CreateInBatches(lyrics, 100).Error
	})
}

// GetByID retrieves a song by its ID.
func (r *SongRepository) GetByID(ctx context.Context, id string) (*domain.Song, error) {
	var song domain.Song
	if err := r.db.WithContext(ctx).First(&song, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &song, nil
}

// List retrieves songs newest first, optionally filtered by language.
func (r *SongRepository) List(ctx context.Context, language string) ([]domain.Song, error) {
	var songs []domain.Song
	query := r.db.WithContext(ctx)
	if language != "" {
		query = query.Where("language = ?", strings.ToLower(language))
	}
	if err := query.Order("created_at DESC").Find(&songs).Error; err != nil {
		return nil, err
	}
	return songs, nil
}

// GetLyrics retrieves a song's lyric lines ordered by line number.
func (r *SongRepository) GetLyrics(ctx context.Context, songID string) ([]domain.LyricLine, error) {
	var lines []domain.LyricLine
	if err := r.db.WithContext(ctx).
		Where("song_id = ?", songID).
		Order("line_number ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// GetLyricRange retrieves the lyric lines whose numbers fall inside
// [start, end], ordered by line number.
func (r *SongRepository) GetLyricRange(ctx context.Context, songID string, start, end int) ([]domain.LyricLine, error) {
	var lines []domain.LyricLine
	if err := r.db.WithContext(ctx).
		Where("song_id = ? AND line_number BETWEEN ? AND ?", songID, start, end).
		Order("line_number ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// SetLanguage updates a song's language tag.
func (r *SongRepository) SetLanguage(ctx context.Context, id, language string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Song{}).
		Where("id = ?", id).
		Update("language", strings.ToLower(language)).Error
}

// Delete removes a song and its lyric lines.
func (r *SongRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.LyricLine{}, "song_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Song{}, "id = ?", id).Error
	})
}
