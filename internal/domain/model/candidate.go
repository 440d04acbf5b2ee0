package model

import (
	"encoding/json"
	"time"
)

// Confidence bucket thresholds used for display and for the auto-apply
// policy. Items at or above HighConfidence may skip explicit approval
// when a triage_apply job opts in.
const (
	HighConfidence   = 0.90
	MediumConfidence = 0.50
)

// Candidate is one proposed mutation for a single mailbox item,
// produced by a triage_preview job and awaiting a human decision.
type Candidate struct {
	ID              int64           `json:"id"               db:"id"`
	JobID           string          `json:"job_id"           db:"job_id"`
	UID             int             `json:"uid"              db:"uid"`
	Folder          string          `json:"folder"           db:"folder"`
	MessageID       *string         `json:"message_id,omitempty"   db:"message_id"`
	FromAddr        *string         `json:"from_addr,omitempty"    db:"from_addr"`
	ToAddr          *string         `json:"to_addr,omitempty"      db:"to_addr"`
	CcAddr          *string         `json:"cc_addr,omitempty"      db:"cc_addr"`
	Subject         *string         `json:"subject,omitempty"      db:"subject"`
	Date            *time.Time      `json:"date,omitempty"         db:"date"`
	BodyPreview     *string         `json:"body_preview,omitempty" db:"body_preview"`
	Category        string          `json:"category"         db:"category"`
	Confidence      float64         `json:"confidence"       db:"confidence"`
	Signals         json.RawMessage `json:"signals"          db:"signals"`
	ProposedActions []string        `json:"proposed_actions" db:"proposed_actions"`
	UserDecision    *string         `json:"user_decision,omitempty" db:"user_decision"`
	CreatedAt       time.Time       `json:"created_at"       db:"created_at"`
}

// Candidate decisions recorded by the execution job.
const (
	DecisionExecuted = "executed"
	DecisionRejected = "rejected"
)

// CandidateBuckets groups candidates by confidence for review UIs and
// the approval flow. High surfaces first; within each bucket the
// store's descending-confidence order is preserved.
type CandidateBuckets struct {
	JobID     string       `json:"job_id"`
	JobStatus JobStatus    `json:"job_status"`
	Total     int          `json:"total"`
	High      []*Candidate `json:"high_confidence"`
	Medium    []*Candidate `json:"medium_confidence"`
	Low       []*Candidate `json:"low_confidence"`
}

// BucketCandidates splits an already confidence-ordered candidate list
// into high/medium/low buckets.
func BucketCandidates(jobID string, status JobStatus, cands []*Candidate) *CandidateBuckets {
	b := &CandidateBuckets{
		JobID:     jobID,
		JobStatus: status,
		Total:     len(cands),
		High:      []*Candidate{},
		Medium:    []*Candidate{},
		Low:       []*Candidate{},
	}
	for _, c := range cands {
		switch {
		case c.Confidence >= HighConfidence:
			b.High = append(b.High, c)
		case c.Confidence >= MediumConfidence:
			b.Medium = append(b.Medium, c)
		default:
			b.Low = append(b.Low, c)
		}
	}
	return b
}

// CandidateFilter narrows a candidate listing. Zero values mean no
// filtering on that dimension.
type CandidateFilter struct {
	MinConfidence float64
	Category      string
	Limit         int
}
