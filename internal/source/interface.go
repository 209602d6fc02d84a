package source

import (
	"context"
	"errors"
)

// ErrNoLyrics is returned when the catalog has no retrievable lyrics for a track.
var ErrNoLyrics = errors.New("no lyrics available")

// Candidate is a catalog entry returned by search, not yet imported.
// It only lives for the duration of a single job run.
type Candidate struct {
	VideoID      string
	Title        string
	Artist       string
	Album        string
	ThumbnailURL string
	Year         int
}

// TrackDetail is the full metadata for one catalog track.
type TrackDetail struct {
	VideoID      string
	Title        string
	Artist       string
	Album        string
	ThumbnailURL string
}

// Filters narrows a catalog search. Zero values mean "no filter".
type Filters struct {
	Language string // ISO 639-1 code used to pick discovery queries
	YearFrom int
	YearTo   int
	Query    string // free-text query; overrides language discovery queries
}

// CatalogSource defines the interface for external music catalogs.
type CatalogSource interface {
	// SourceID returns the stable identifier for this source.
	SourceID() string

	// DisplayName returns a human-readable name for this source.
	DisplayName() string

	// Search produces up to count candidates matching the filters, in
	// the source's own relevance order, paginating until count is
	// reached or the source is exhausted. Transient failures are
	// retried with bounded attempts; exhausting them returns an error.
	Search(ctx context.Context, f Filters, count int) ([]Candidate, error)

	// Lookup fetches full metadata for one track.
	Lookup(ctx context.Context, videoID string) (*TrackDetail, error)

	// Lyrics fetches the track's lyric lines. Returns ErrNoLyrics when
	// the catalog has none for this track.
	Lyrics(ctx context.Context, videoID string) ([]string, error)
}
