package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrJobNotFound is returned when a job is not found.
	ErrJobNotFound = errors.New("job not found")
	// ErrAlreadyApproved is returned when an approval is recorded for a
	// job that already carries one. The first approval is never
	// overwritten.
	ErrAlreadyApproved = errors.New("job already approved")
	// ErrNotApprovable is returned when Approve is called on a job
	// that is neither completed nor pending.
	ErrNotApprovable = errors.New("job cannot be approved from its current status")
	// ErrCandidateNotFound is returned when a candidate id does not exist.
	ErrCandidateNotFound = errors.New("candidate not found")
	// ErrMutationNotFound is returned when a mutation journal row does not exist.
	ErrMutationNotFound = errors.New("mutation record not found")
	// ErrMessageNotFound is returned when a cached message does not exist.
	ErrMessageNotFound = errors.New("message not found")
)
