package model

import (
	"encoding/json"
	"time"
)

// MutationStatus is the lifecycle of one journaled mutation attempt.
type MutationStatus string

const (
	// MutationStatusPending is set before the mail-protocol call.
	MutationStatusPending MutationStatus = "pending"
	// MutationStatusApplied is set after the call succeeds.
	MutationStatusApplied MutationStatus = "applied"
	// MutationStatusFailed is set after the call fails.
	MutationStatusFailed MutationStatus = "failed"
)

// MutationRecord is the audit-trail row for a single mutation attempt
// against one mailbox item. Rows are created before the attempt and
// updated after it; they are never deleted, and they survive the job
// that produced them.
type MutationRecord struct {
	ID        int64           `json:"id"          db:"id"`
	UID       int             `json:"email_uid"   db:"email_uid"`
	Folder    string          `json:"email_folder" db:"email_folder"`
	Action    string          `json:"action"      db:"action"`
	Params    json.RawMessage `json:"params,omitempty"    db:"params"`
	Status    MutationStatus  `json:"status"      db:"status"`
	PreState  json.RawMessage `json:"pre_state,omitempty" db:"pre_state"`
	Error     *string         `json:"error,omitempty"     db:"error"`
	CreatedAt time.Time       `json:"created_at"  db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"  db:"updated_at"`
}

// BeginMutationParams groups the fields captured before attempting a
// mutation.
type BeginMutationParams struct {
	UID      int
	Folder   string
	Action   string
	Params   json.RawMessage
	PreState json.RawMessage
}
