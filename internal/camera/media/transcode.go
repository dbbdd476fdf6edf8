package media

import "context"

// VideoQuality is the target quality for video transcoding.
type VideoQuality string

const (
	QualityOriginal VideoQuality = "original"
	QualityHigh     VideoQuality = "high"
	QualityMedium   VideoQuality = "medium"
	QualityLow      VideoQuality = "low"
)

// TranscodeEvent is the closed set of events a Transcoder emits: zero or
// more TranscodeProgress followed by exactly one TranscodeSuccessful or
// TranscodeFailed.
type TranscodeEvent interface {
	isTranscodeEvent()
}

// TranscodeProgress reports compression progress in percent (0–100).
type TranscodeProgress struct {
	Percent float64
}

// TranscodeSuccessful terminates a successful run; the output file is
// complete at the destination path.
type TranscodeSuccessful struct{}

// TranscodeFailed terminates a failed run. Err wraps
// common.ErrInsufficientStorage when the device ran out of space.
type TranscodeFailed struct {
	Err error
}

func (TranscodeProgress) isTranscodeEvent()   {}
func (TranscodeSuccessful) isTranscodeEvent() {}
func (TranscodeFailed) isTranscodeEvent()     {}

// Transcoder compresses a video to the target quality, writing the result
// to dst. The returned channel is closed after the terminal event.
type Transcoder interface {
	Transcode(ctx context.Context, src, dst string, quality VideoQuality) <-chan TranscodeEvent
}

// LocationStripper produces a copy of a photo with EXIF/GPS fields cleared.
type LocationStripper interface {
	StripLocation(ctx context.Context, src, dst string) error
}
