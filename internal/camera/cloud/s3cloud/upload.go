package s3cloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/camsync/internal/camera/cloud"
	"github.com/dmitrijs2005/camsync/internal/common"
)

// progressReader counts bytes as the SDK consumes them and reports the
// running total.
type progressReader struct {
	r        io.Reader
	total    int64
	onChange func(transferred int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.total += int64(n)
		p.onChange(p.total)
	}
	return n, err
}

// isOverQuota reports whether a service error means the bucket or account
// ran out of quota or request budget, so the attempt is worth repeating in
// a later batch rather than being treated as a hard failure.
func isOverQuota(err error) bool {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return false
	}
	switch ae.ErrorCode() {
	case "QuotaExceeded", "SlowDown", "RequestLimitExceeded", "TooManyRequests", "ServiceUnavailable":
		return true
	}
	return false
}

// Upload puts localPath into the bucket under parent+name, streaming
// lifecycle events: one TransferStart, progress updates as the file body is
// consumed, then exactly one TransferFinish. If an object already exists
// under the target key the finish error is common.ErrNodeAlreadyExists and
// the existing node's id is reported. Quota and throttling failures emit a
// TransferTemporaryError wrapping common.ErrOverQuota before the finish.
func (c *Client) Upload(ctx context.Context, localPath string, parent cloud.NodeID, name string, fingerprint string) <-chan cloud.TransferEvent {
	events := make(chan cloud.TransferEvent, 16)

	go func() {
		defer close(events)

		finish := func(id cloud.NodeID, err error) {
			events <- cloud.TransferFinish{NodeID: id, Err: err}
		}

		f, err := os.Open(localPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				finish("", fmt.Errorf("%w: %s", common.ErrLocalFileMissing, localPath))
			} else {
				finish("", fmt.Errorf("open %s: %w", localPath, err))
			}
			return
		}
		defer f.Close()

		fi, err := f.Stat()
		if err != nil {
			finish("", fmt.Errorf("stat %s: %w", localPath, err))
			return
		}

		target := string(parent) + name

		// An object already sitting under the target key is reported as an
		// already-exists finish; the caller decides whether the existing
		// content is equivalent.
		if _, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(target),
		}); err == nil {
			finish(cloud.NodeID(target), common.ErrNodeAlreadyExists)
			return
		}

		events <- cloud.TransferStart{Tag: uuid.New().String(), TotalBytes: fi.Size()}

		body := &progressReader{r: f, onChange: func(transferred int64) {
			events <- cloud.TransferProgress{Transferred: transferred}
		}}

		_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(c.bucket),
			Key:           aws.String(target),
			Body:          body,
			ContentLength: aws.Int64(fi.Size()),
			Metadata:      map[string]string{metaFingerprint: fingerprint},
		})
		if err != nil {
			if isOverQuota(err) {
				err = fmt.Errorf("%w: %v", common.ErrOverQuota, err)
				events <- cloud.TransferTemporaryError{Err: err}
			}
			finish("", fmt.Errorf("put object %s: %w", target, err))
			return
		}

		finish(cloud.NodeID(target), nil)
	}()

	return events
}
