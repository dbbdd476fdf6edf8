package models

import "fmt"

// StateTransition represents one edge of the upload status graph.
type StateTransition struct {
	From UploadStatus
	To   UploadStatus
}

// validTransitions defines all valid status transitions. Transitions are
// one-directional except retry: Failed and LocalFileMissing records are
// re-submitted as Pending in a later batch.
var validTransitions = map[StateTransition]bool{
	// Upload path.
	{StatusPending, StatusStarted}:  true,
	{StatusStarted, StatusUploaded}: true,

	// Copy path goes straight from Pending, no Started.
	{StatusPending, StatusCopied}: true,

	// No-op path: a matching node already exists in (or is trashed near)
	// the target folder.
	{StatusPending, StatusAlreadyExists}: true,

	// Error terminals, reachable before or after the transfer began.
	{StatusPending, StatusLocalFileMissing}: true,
	{StatusPending, StatusFailed}:           true,
	{StatusStarted, StatusLocalFileMissing}: true,
	{StatusStarted, StatusFailed}:           true,

	// Retry: terminal failures are structurally re-submitted as Pending.
	// Started joins them so records interrupted mid-transfer resume after
	// a restart instead of staying stranded.
	{StatusStarted, StatusPending}:          true,
	{StatusFailed, StatusPending}:           true,
	{StatusLocalFileMissing, StatusPending}: true,
}

var allStatuses = []UploadStatus{
	StatusPending,
	StatusStarted,
	StatusUploaded,
	StatusCopied,
	StatusAlreadyExists,
	StatusLocalFileMissing,
	StatusFailed,
}

// ValidateTransition checks whether a status transition is valid.
func ValidateTransition(from, to UploadStatus) error {
	if !validTransitions[StateTransition{From: from, To: to}] {
		return fmt.Errorf("invalid status transition from %s to %s", from, to)
	}
	return nil
}

// IsTerminal reports whether no further processing happens for a record in
// this status within the current batch.
func IsTerminal(status UploadStatus) bool {
	switch status {
	case StatusUploaded, StatusCopied, StatusAlreadyExists, StatusLocalFileMissing, StatusFailed:
		return true
	}
	return false
}

// CanRetry reports whether a record in this status is eligible for
// re-submission in a later batch.
func CanRetry(status UploadStatus) bool {
	return status == StatusFailed || status == StatusLocalFileMissing
}

// ResumableStatuses returns the statuses a new batch picks up: records that
// never reached a terminal status (Pending, or Started when a previous run
// was interrupted mid-transfer) plus the retryable terminals.
func ResumableStatuses() []UploadStatus {
	resumable := make([]UploadStatus, 0, len(allStatuses))
	for _, s := range allStatuses {
		if !IsTerminal(s) || CanRetry(s) {
			resumable = append(resumable, s)
		}
	}
	return resumable
}
