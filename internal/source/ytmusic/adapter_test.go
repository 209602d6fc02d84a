package ytmusic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mira/lyrichase/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAdapter(t *testing.T, baseURL string) *Adapter {
	t.Helper()
	return NewAdapter(&Config{
		BaseURL:           baseURL,
		Timeout:           2 * time.Second,
		PageSize:          5,
		MaxRetries:        2,
		RetryBackoff:      10 * time.Millisecond,
		RequestsPerSecond: 1000,
	}, nil)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func searchHitJSON(videoID, title, artist string) map[string]interface{} {
	return map[string]interface{}{
		"video_id": videoID,
		"title":    title,
		"artists":  []map[string]string{{"name": artist}},
		"album":    map[string]string{"name": "Album"},
		"thumbnails": []map[string]string{
			{"url": "https://img.example/small.jpg"},
			{"url": "https://img.example/large.jpg"},
		},
	}
}

func TestSearchPaginates(t *testing.T) {
	var pagesServed int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "songs", r.URL.Query().Get("filter"))
		atomic.AddInt32(&pagesServed, 1)

		switch r.URL.Query().Get("page") {
		case "1":
			writeJSON(w, map[string]interface{}{
				"results": []map[string]interface{}{
					searchHitJSON("v1", "First", "A"),
					searchHitJSON("v2", "Second", "B"),
				},
				"next_page": 2,
			})
		case "2":
			writeJSON(w, map[string]interface{}{
				"results": []map[string]interface{}{
					searchHitJSON("v3", "Third", "C"),
				},
				"next_page": 0,
			})
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	a := testAdapter(t, srv.URL)
	got, err := a.Search(context.Background(), source.Filters{Query: "indie rock"}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&pagesServed), int32(2))

	// Source ranking preserved
	assert.Equal(t, "v1", got[0].VideoID)
	assert.Equal(t, "v2", got[1].VideoID)
	assert.Equal(t, "v3", got[2].VideoID)
	// Largest thumbnail wins
	assert.Equal(t, "https://img.example/large.jpg", got[0].ThumbnailURL)
	assert.Equal(t, "A", got[0].Artist)
}

func TestSearchDeduplicates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"results": []map[string]interface{}{
				searchHitJSON("v1", "Same Song", "Same Artist"),
				searchHitJSON("v1", "Other Title", "Other Artist"),
				searchHitJSON("v2", "  same song ", "SAME ARTIST"),
				searchHitJSON("v3", "Different", "Artist"),
			},
			"next_page": 0,
		})
	}))
	defer srv.Close()

	a := testAdapter(t, srv.URL)
	got, err := a.Search(context.Background(), source.Filters{Query: "anything"}, 10)
	require.NoError(t, err)

	// v1 repeated and v2 is the same title+artist under another video
	require.Len(t, got, 2)
	assert.Equal(t, "v1", got[0].VideoID)
	assert.Equal(t, "v3", got[1].VideoID)
}

func TestSearchStopsAtCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		results := make([]map[string]interface{}, 0, 5)
		for i := 0; i < 5; i++ {
			id := fmt.Sprintf("%s-v%d", r.URL.Query().Get("q"), i)
			results = append(results, searchHitJSON(id, "Song "+id, "Artist"))
		}
		writeJSON(w, map[string]interface{}{"results": results, "next_page": 0})
	}))
	defer srv.Close()

	a := testAdapter(t, srv.URL)
	got, err := a.Search(context.Background(), source.Filters{Language: "en"}, 7)
	require.NoError(t, err)
	assert.Len(t, got, 7)
}

func TestSearchRetriesTransientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, map[string]interface{}{
			"results":   []map[string]interface{}{searchHitJSON("v1", "Song", "Artist")},
			"next_page": 0,
		})
	}))
	defer srv.Close()

	a := testAdapter(t, srv.URL)
	got, err := a.Search(context.Background(), source.Filters{Query: "q"}, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSearchFailsAfterRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := testAdapter(t, srv.URL)
	_, err := a.Search(context.Background(), source.Filters{Query: "q"}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/songs/v1", r.URL.Path)
		writeJSON(w, map[string]string{
			"video_id":      "v1",
			"title":         "Song Title",
			"artist":        "The Artist",
			"album":         "The Album",
			"thumbnail_url": "https://img.example/cover.jpg",
		})
	}))
	defer srv.Close()

	a := testAdapter(t, srv.URL)
	detail, err := a.Lookup(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "Song Title", detail.Title)
	assert.Equal(t, "The Artist", detail.Artist)
	assert.Equal(t, "https://img.example/cover.jpg", detail.ThumbnailURL)
}

func TestLyricsTwoStep(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			require.Equal(t, "v1", r.URL.Query().Get("video_id"))
			writeJSON(w, map[string]string{"lyrics_browse_id": "MPLYt_abc"})
		case "/lyrics/MPLYt_abc":
			writeJSON(w, map[string]string{"lyrics": "line one\nline two\n\nline three\n"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	a := testAdapter(t, srv.URL)
	lines, err := a.Lyrics(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, []string{"line one", "line two", "line three"}, lines)
}

func TestLyricsMissingBrowseID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/watch", r.URL.Path)
		writeJSON(w, map[string]string{"lyrics_browse_id": ""})
	}))
	defer srv.Close()

	a := testAdapter(t, srv.URL)
	_, err := a.Lyrics(context.Background(), "v1")
	assert.ErrorIs(t, err, source.ErrNoLyrics)
}

func TestLyricsEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			writeJSON(w, map[string]string{"lyrics_browse_id": "MPLYt_abc"})
		default:
			writeJSON(w, map[string]string{"lyrics": "\n\n"})
		}
	}))
	defer srv.Close()

	a := testAdapter(t, srv.URL)
	_, err := a.Lyrics(context.Background(), "v1")
	assert.ErrorIs(t, err, source.ErrNoLyrics)
}
