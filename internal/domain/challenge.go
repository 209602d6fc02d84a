package domain

import "time"

// Challenge is a guessable contiguous range of lyric lines derived from a song.
// The [StartLine, EndLine] range is inclusive and unique per song.
type Challenge struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	SongID    string    `gorm:"type:text;not null;index:idx_challenges_range,unique" json:"song_id"`
	StartLine int       `gorm:"not null;index:idx_challenges_range,unique" json:"start_line"`
	EndLine   int       `gorm:"not null;index:idx_challenges_range,unique" json:"end_line"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Challenge.
func (Challenge) TableName() string {
	return "challenges"
}
