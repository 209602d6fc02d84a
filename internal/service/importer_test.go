package service

import (
	"context"
	"testing"

	"github.com/mira/lyrichase/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportPersistsSong(t *testing.T) {
	songs := newFakeSongStore()
	cat := &fakeCatalog{
		candidates: []source.Candidate{{VideoID: "v1", Title: "Song", Artist: "Artist", Album: "Album"}},
		lyrics:     map[string][]string{"v1": testLyrics(1)},
	}
	im := NewImporter(songs, 6)

	song, lines, err := im.Import(context.Background(), cat, cat.candidates[0], "en")
	require.NoError(t, err)
	assert.Equal(t, "Song", song.Title)
	assert.Equal(t, "Artist", song.Artist)
	assert.Equal(t, "v1", song.VideoID)
	assert.Equal(t, "en", song.Language)
	assert.NotEmpty(t, song.ID)
	assert.Len(t, lines, 12)
	assert.Equal(t, 1, songs.created)
}

func TestImportDuplicateVideoID(t *testing.T) {
	songs := newFakeSongStore()
	songs.byVideo["v1"] = true
	cat := &fakeCatalog{candidates: []source.Candidate{{VideoID: "v1", Title: "Song", Artist: "Artist"}}}
	im := NewImporter(songs, 6)

	_, _, err := im.Import(context.Background(), cat, cat.candidates[0], "")
	assert.ErrorIs(t, err, ErrDuplicateSong)
	assert.Zero(t, songs.created)
}

func TestImportDuplicateTitleArtist(t *testing.T) {
	songs := newFakeSongStore()
	songs.byTitle["song|artist"] = true
	cat := &fakeCatalog{
		candidates: []source.Candidate{{VideoID: "v2", Title: "Song", Artist: "Artist"}},
		lyrics:     map[string][]string{"v2": testLyrics(2)},
	}
	im := NewImporter(songs, 6)

	_, _, err := im.Import(context.Background(), cat, cat.candidates[0], "")
	assert.ErrorIs(t, err, ErrDuplicateSong)
}

func TestImportNoLyrics(t *testing.T) {
	songs := newFakeSongStore()
	cat := &fakeCatalog{candidates: []source.Candidate{{VideoID: "v1", Title: "Song", Artist: "Artist"}}}
	im := NewImporter(songs, 6)

	_, _, err := im.Import(context.Background(), cat, cat.candidates[0], "")
	assert.ErrorIs(t, err, source.ErrNoLyrics)
	assert.Zero(t, songs.created)
}

func TestImportLyricsTooShort(t *testing.T) {
	songs := newFakeSongStore()
	cat := &fakeCatalog{
		candidates: []source.Candidate{{VideoID: "v1", Title: "Song", Artist: "Artist"}},
		lyrics:     map[string][]string{"v1": {"only", "three", "lines"}},
	}
	im := NewImporter(songs, 6)

	_, _, err := im.Import(context.Background(), cat, cat.candidates[0], "")
	assert.ErrorIs(t, err, ErrLyricsTooShort)
	assert.Zero(t, songs.created)
}

func TestImportDetectsLanguageWhenNotGiven(t *testing.T) {
	songs := newFakeSongStore()
	cat := &fakeCatalog{
		candidates: []source.Candidate{{VideoID: "v1", Title: "Song", Artist: "Artist"}},
		lyrics: map[string][]string{"v1": {
			"I was walking down the street on a sunny morning",
			"Thinking about the places we used to go together",
			"And every single memory keeps on coming back to me",
			"There is nothing in this world that I would rather see",
			"Than your face in the crowd on a Saturday evening",
			"Singing all the songs that we knew from the beginning",
		}},
	}
	im := NewImporter(songs, 6)

	song, _, err := im.Import(context.Background(), cat, cat.candidates[0], "")
	require.NoError(t, err)
	assert.Equal(t, "en", song.Language)
}
