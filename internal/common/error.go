// Package common defines shared constants and sentinel errors used across
// the camera-uploads engine. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Local-file errors surfaced by the transform stage and transfer executor.
	ErrLocalFileMissing    = errors.New("local file missing")
	ErrInsufficientStorage = errors.New("insufficient storage")

	// Cloud-side errors.
	ErrNodeAlreadyExists = errors.New("node already exists")
	ErrNameConflict      = errors.New("name conflict with different content")
	ErrOverQuota         = errors.New("storage quota exceeded")
)
