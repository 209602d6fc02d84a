package ytmusic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mira/lyrichase/internal/logger"
	"github.com/mira/lyrichase/internal/source"
	"golang.org/x/time/rate"
)

const (
	SourceID   = "ytmusic"
	SourceName = "YouTube Music"
)

// Config holds the catalog client settings.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	PageSize          int
	MaxRetries        int
	RetryBackoff      time.Duration
	RequestsPerSecond float64
}

// Adapter implements source.CatalogSource against the YouTube Music
// web API. All requests share one rate limiter so a job never exceeds
// the source's tolerated request rate regardless of phase.
type Adapter struct {
	client   *resty.Client
	limiter  *rate.Limiter
	pageSize int
	logger   *logger.Logger
}

// NewAdapter creates a new YouTube Music catalog adapter.
func NewAdapter(cfg *Config, log *logger.Logger) *Adapter {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2.0
	}
	if log == nil {
		log = logger.GetDefault()
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(cfg.RetryBackoff).
		SetRetryMaxWaitTime(cfg.RetryBackoff * 8).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500 || r.StatusCode() == 429
		})

	// Pace every outgoing request, including retries of earlier ones
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return &Adapter{
		client:   client,
		limiter:  limiter,
		pageSize: cfg.PageSize,
		logger:   log.WithField(logger.FieldSource, SourceID),
	}
}

// SourceID returns the stable identifier for this source.
func (a *Adapter) SourceID() string {
	return SourceID
}

// DisplayName returns a human-readable name for this source.
func (a *Adapter) DisplayName() string {
	return SourceName
}

// Wire types mirroring the catalog's search payloads.
type searchHit struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name string `json:"name"`
	} `json:"album"`
	Thumbnails []struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
	Year int `json:"year"`
}

type searchResponse struct {
	Results  []searchHit `json:"results"`
	NextPage int         `json:"next_page"`
}

// Search discovers candidates by running the language's seed queries
// across the requested year range, preserving the catalog's own
// ranking within each query. Candidates are de-duplicated within the
// run by video ID and by normalized title+artist so the same song
// surfaced under different videos is only counted once.
func (a *Adapter) Search(ctx context.Context, f source.Filters, count int) ([]source.Candidate, error) {
	queries := seedQueries(f.Language)
	if f.Query != "" {
		queries = []string{f.Query}
	}

	seenIDs := make(map[string]struct{})
	seenTitles := make(map[string]struct{})
	results := make([]source.Candidate, 0, count)

	for _, year := range yearRange(f.YearFrom, f.YearTo) {
		for _, baseQuery := range queries {
			if len(results) >= count {
				return results[:count], nil
			}
			q := baseQuery
			if year > 0 {
				q = fmt.Sprintf("%s %d", baseQuery, year)
			}
			if err := a.searchQuery(ctx, q, count, seenIDs, seenTitles, &results); err != nil {
				return nil, err
			}
		}
	}

	if len(results) > count {
		results = results[:count]
	}
	return results, nil
}

// searchQuery pages through one query until the target count is met or
// the query is exhausted.
func (a *Adapter) searchQuery(ctx context.Context, q string, count int, seenIDs, seenTitles map[string]struct{}, results *[]source.Candidate) error {
	page := 1
	for {
		var resp searchResponse
		r, err := a.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"q":      q,
				"filter": "songs",
				"limit":  fmt.Sprintf("%d", a.pageSize),
				"page":   fmt.Sprintf("%d", page),
			}).
			SetResult(&resp).
			Get("/search")
		if err != nil {
			return fmt.Errorf("search %q: %w", q, err)
		}
		if r.IsError() {
			return fmt.Errorf("search %q: catalog returned %s", q, r.Status())
		}

		for _, hit := range resp.Results {
			if hit.VideoID == "" {
				continue
			}
			if _, dup := seenIDs[hit.VideoID]; dup {
				continue
			}
			seenIDs[hit.VideoID] = struct{}{}

			artist := joinArtists(hit.Artists)
			titleKey := normalizeKey(hit.Title) + "|" + normalizeKey(artist)
			if _, dup := seenTitles[titleKey]; dup {
				continue
			}
			seenTitles[titleKey] = struct{}{}

			cand := source.Candidate{
				VideoID: hit.VideoID,
				Title:   hit.Title,
				Artist:  artist,
				Album:   hit.Album.Name,
				Year:    hit.Year,
			}
			if n := len(hit.Thumbnails); n > 0 {
				cand.ThumbnailURL = hit.Thumbnails[n-1].URL
			}
			*results = append(*results, cand)
			if len(*results) >= count {
				return nil
			}
		}

		if resp.NextPage == 0 || len(resp.Results) == 0 {
			return nil
		}
		page = resp.NextPage
	}
}

type trackResponse struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Album        string `json:"album"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Lookup fetches full metadata for one track.
func (a *Adapter) Lookup(ctx context.Context, videoID string) (*source.TrackDetail, error) {
	var resp trackResponse
	r, err := a.client.R().
		SetContext(ctx).
		SetResult(&resp).
		Get("/songs/" + videoID)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", videoID, err)
	}
	if r.IsError() {
		return nil, fmt.Errorf("lookup %s: catalog returned %s", videoID, r.Status())
	}
	return &source.TrackDetail{
		VideoID:      resp.VideoID,
		Title:        resp.Title,
		Artist:       resp.Artist,
		Album:        resp.Album,
		ThumbnailURL: resp.ThumbnailURL,
	}, nil
}

type watchResponse struct {
	LyricsBrowseID string `json:"lyrics_browse_id"`
}

type lyricsResponse struct {
	Lyrics string `json:"lyrics"`
}

// Lyrics resolves a track's lyrics browse ID via its watch playlist and
// fetches the lyric text, split into non-empty lines.
func (a *Adapter) Lyrics(ctx context.Context, videoID string) ([]string, error) {
	var watch watchResponse
	r, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("video_id", videoID).
		SetResult(&watch).
		Get("/watch")
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", videoID, err)
	}
	if r.IsError() {
		return nil, fmt.Errorf("watch %s: catalog returned %s", videoID, r.Status())
	}
	if watch.LyricsBrowseID == "" {
		return nil, source.ErrNoLyrics
	}

	var lyrics lyricsResponse
	r, err = a.client.R().
		SetContext(ctx).
		SetResult(&lyrics).
		Get("/lyrics/" + watch.LyricsBrowseID)
	if err != nil {
		return nil, fmt.Errorf("lyrics %s: %w", videoID, err)
	}
	if r.IsError() {
		return nil, fmt.Errorf("lyrics %s: catalog returned %s", videoID, r.Status())
	}

	lines := splitLines(lyrics.Lyrics)
	if len(lines) == 0 {
		return nil, source.ErrNoLyrics
	}
	return lines, nil
}

func joinArtists(artists []struct {
	Name string `json:"name"`
}) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func splitLines(raw string) []string {
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
