package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mira/lyrichase/internal/domain"
	"github.com/mira/lyrichase/internal/source"
)

// Sentinel errors classifying per-candidate outcomes. Duplicates are
// skips, everything else a per-item failure; neither aborts a job.
var (
	ErrDuplicateSong  = errors.New("song already imported")
	ErrLyricsTooShort = errors.New("lyrics too short for a challenge")
)

// SongStore is the persistence surface the importer needs.
type SongStore interface {
	ExistsByVideoID(ctx context.Context, videoID string) (bool, error)
	ExistsByTitleArtist(ctx context.Context, title, artist string) (bool, error)
	CreateWithLyrics(ctx context.Context, song *domain.Song, lines []string) error
}

// Importer fetches a candidate's lyrics from the catalog and persists
// a song record with its numbered lines.
type Importer struct {
	songs    SongStore
	minLines int
}

// NewImporter creates an Importer. minLines guards against songs too
// short to ever support a challenge.
func NewImporter(songs SongStore, minLines int) *Importer {
	if minLines <= 0 {
		minLines = 6
	}
	return &Importer{songs: songs, minLines: minLines}
}

// Import brings one candidate into the lyrics store. It returns the
// persisted song and its lyric lines, ErrDuplicateSong when the track
// (by video ID or by normalized title+artist) already exists,
// source.ErrNoLyrics or ErrLyricsTooShort when the lyrics are unusable.
func (im *Importer) Import(ctx context.Context, cat source.CatalogSource, cand source.Candidate, languageOverride string) (*domain.Song, []string, error) {
	exists, err := im.songs.ExistsByVideoID(ctx, cand.VideoID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existence: %w", err)
	}
	if exists {
		return nil, nil, ErrDuplicateSong
	}

	detail, err := cat.Lookup(ctx, cand.VideoID)
	if err != nil {
		return nil, nil, err
	}

	// Same song may exist under a different video
	dup, err := im.songs.ExistsByTitleArtist(ctx, detail.Title, detail.Artist)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existence: %w", err)
	}
	if dup {
		return nil, nil, ErrDuplicateSong
	}

	lines, err := cat.Lyrics(ctx, cand.VideoID)
	if err != nil {
		return nil, nil, err
	}
	if len(lines) < im.minLines {
		return nil, nil, ErrLyricsTooShort
	}

	language := strings.ToLower(languageOverride)
	if language == "" {
		language = DetectLanguage(lines)
	}

	song := &domain.Song{
		ID:           uuid.New().String(),
		Title:        detail.Title,
		Artist:       detail.Artist,
		VideoID:      cand.VideoID,
		Album:        cand.Album,
		ThumbnailURL: detail.ThumbnailURL,
		Language:     language,
	}
	if song.ThumbnailURL == "" {
		song.ThumbnailURL = cand.ThumbnailURL
	}

	if err := im.songs.CreateWithLyrics(ctx, song, lines); err != nil {
		return nil, nil, fmt.Errorf("failed to persist song: %w", err)
	}
	return song, lines, nil
}
