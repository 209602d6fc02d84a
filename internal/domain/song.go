package domain

import "time"

// Song represents an imported track with its lyric lines.
type Song struct {
	ID           string    `gorm:"type:text;primaryKey" json:"id"`
	Title        string    `gorm:"type:text;not null" json:"title"`
	Artist       string    `gorm:"type:text;not null" json:"artist"`
	VideoID      string    `gorm:"type:text;not null;uniqueIndex:idx_songs_video_id" json:"video_id"`
	Album        string    `gorm:"type:text" json:"album,omitempty"`
	ThumbnailURL string    `gorm:"type:text" json:"thumbnail_url,omitempty"`
	Language     string    `gorm:"type:text;index" json:"language,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Lyrics []LyricLine `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the database table name for Song.
func (Song) TableName() string {
	return "songs"
}

// LyricLine is one line of a song's lyrics, ordered by LineNumber starting at 0.
type LyricLine struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	SongID     string `gorm:"type:text;not null;index" json:"-"`
	LineNumber int    `gorm:"not null" json:"line_number"`
	Text       string `gorm:"type:text;not null" json:"text"`
}

// TableName returns the database table name for LyricLine.
func (LyricLine) TableName() string {
	return "lyric_lines"
}
