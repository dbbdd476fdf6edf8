package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/dmitrijs2005/camsync/internal/common"
)

// ExiftoolStripper removes GPS tags from a photo by invoking exiftool. The
// source file is never modified; the cleaned copy is written to dst.
type ExiftoolStripper struct {
	// Binary overrides the executable name, defaults to "exiftool".
	Binary string
}

func (s *ExiftoolStripper) StripLocation(ctx context.Context, src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("%w: %s", common.ErrLocalFileMissing, src)
	}

	bin := s.Binary
	if bin == "" {
		bin = "exiftool"
	}

	cmd := exec.CommandContext(ctx, bin, "-gps:all=", "-o", dst, src)
	if out, err := cmd.CombinedOutput(); err != nil {
		return classifyExecErr(err, out)
	}
	return nil
}

// FFmpegTranscoder compresses videos by invoking ffmpeg. It emits a single
// progress milestone when the command starts and a terminal event when it
// exits; finer-grained progress would require parsing ffmpeg's stderr.
type FFmpegTranscoder struct {
	Binary string
}

// crf per target quality; lower is better.
var qualityCRF = map[VideoQuality]string{
	QualityHigh:   "20",
	QualityMedium: "26",
	QualityLow:    "32",
}

func (t *FFmpegTranscoder) Transcode(ctx context.Context, src, dst string, quality VideoQuality) <-chan TranscodeEvent {
	ch := make(chan TranscodeEvent, 4)

	go func() {
		defer close(ch)

		if _, err := os.Stat(src); err != nil {
			ch <- TranscodeFailed{Err: fmt.Errorf("%w: %s", common.ErrLocalFileMissing, src)}
			return
		}

		crf, ok := qualityCRF[quality]
		if !ok {
			ch <- TranscodeFailed{Err: fmt.Errorf("unsupported quality %q", quality)}
			return
		}

		bin := t.Binary
		if bin == "" {
			bin = "ffmpeg"
		}

		ch <- TranscodeProgress{Percent: 0}

		cmd := exec.CommandContext(ctx, bin, "-y", "-i", src, "-c:v", "libx264", "-crf", crf, "-c:a", "copy", dst)
		if out, err := cmd.CombinedOutput(); err != nil {
			ch <- TranscodeFailed{Err: classifyExecErr(err, out)}
			return
		}

		ch <- TranscodeProgress{Percent: 100}
		ch <- TranscodeSuccessful{}
	}()

	return ch
}

// noSpaceMarkers are the messages exiftool and ffmpeg print when a write
// hits a full disk. The subprocess exits non-zero in that case, so the
// Go-side errno never carries ENOSPC and the output is the only signal.
var noSpaceMarkers = []string{
	"no space left on device",
	"disk full",
	"enospc",
}

// classifyExecErr maps a failed tool invocation onto the transfer error
// vocabulary so the retry loop can tell a full disk from a broken file.
func classifyExecErr(err error, output []byte) error {
	if errors.Is(err, syscall.ENOSPC) {
		return fmt.Errorf("%w: %s", common.ErrInsufficientStorage, err)
	}
	lower := strings.ToLower(string(output))
	for _, marker := range noSpaceMarkers {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("%w: %s", common.ErrInsufficientStorage, output)
		}
	}
	if len(output) > 0 {
		return fmt.Errorf("%s: %w", output, err)
	}
	return err
}
