package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JobStatus represents the status of a bulk import job.
// Values include JobStatusPending, JobStatusRunning, JobStatusCompleted, and JobStatusFailed.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// MaxLogEntries caps the retained job log. Once the cap is reached,
// appends drop the oldest entries from the front.
const MaxLogEntries = 200

// LogEntry is a single timestamped line in a job's log.
type LogEntry struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// JobLog is an append-only, bounded sequence of log entries stored as JSON text.
type JobLog []LogEntry

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the log.
//   - error: non-nil if marshaling fails.
func (l JobLog) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (l *JobLog) Scan(value interface{}) error {
	if value == nil {
		*l = JobLog{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan JobLog")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, l)
}

// BulkImportJob is the ledger record for one bulk catalog-import run.
// Configuration fields are immutable after creation; counters only ever
// grow until the job reaches a terminal status.
type BulkImportJob struct {
	ID                string    `gorm:"type:text;primaryKey" json:"id"`
	Source            string    `gorm:"type:text;not null;index" json:"source"`
	Language          string    `gorm:"type:text" json:"language,omitempty"`
	RequestedCount    int       `gorm:"not null" json:"requested_count"`
	ChallengesPerSong int       `gorm:"default:1" json:"challenges_per_song"`
	YearFrom          int       `json:"year_from,omitempty"`
	YearTo            int       `json:"year_to,omitempty"`
	SearchQuery       string    `gorm:"type:text" json:"search_query,omitempty"`
	Status            JobStatus `gorm:"type:text;default:pending;index" json:"status"`
	TotalFound        int       `gorm:"default:0" json:"total_found"`
	Imported          int       `gorm:"default:0" json:"imported"`
	Skipped           int       `gorm:"default:0" json:"skipped"`
	Failed            int       `gorm:"default:0" json:"failed"`
	ChallengesCreated int       `gorm:"default:0" json:"challenges_created"`
	Log               JobLog    `gorm:"type:text" json:"log"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName returns the database table name for BulkImportJob.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (BulkImportJob) TableName() string {
	return "bulk_import_jobs"
}

// AppendLog appends a timestamped entry, trimming the oldest entries
// once MaxLogEntries is exceeded. Truncation only removes from the
// front so pollers always observe a prefix-extension of earlier reads.
func (j *BulkImportJob) AppendLog(msg string) {
	j.Log = append(j.Log, LogEntry{At: time.Now().UTC(), Message: msg})
	if over := len(j.Log) - MaxLogEntries; over > 0 {
		j.Log = append(JobLog{}, j.Log[over:]...)
	}
}
