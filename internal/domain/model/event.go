package model

import (
	"encoding/json"
	"time"
)

// EventLevel is the severity of a job event.
type EventLevel string

const (
	// EventLevelInfo is routine progress information.
	EventLevelInfo EventLevel = "info"
	// EventLevelWarn flags recoverable per-item trouble.
	EventLevelWarn EventLevel = "warn"
	// EventLevelError flags a job-level failure.
	EventLevelError EventLevel = "error"
)

// Valid returns true for a known event level.
func (l EventLevel) Valid() bool {
	return l == EventLevelInfo || l == EventLevelWarn || l == EventLevelError
}

// JobEvent is one append-only progress or diagnostic entry for a job.
// The id is the ordering key; consumers resume a tail from any id.
type JobEvent struct {
	ID        int64           `json:"id"         db:"id"`
	JobID     string          `json:"job_id"     db:"job_id"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	Level     EventLevel      `json:"level"      db:"level"`
	Message   string          `json:"message"    db:"message"`
	Data      json.RawMessage `json:"data"       db:"data"`
}
