package cloud

import "context"

// TransferEvent is the closed set of lifecycle events an Uploader emits for
// a single file: exactly one TransferStart, zero or more TransferProgress
// and TransferTemporaryError, then exactly one TransferFinish.
type TransferEvent interface {
	isTransferEvent()
}

// TransferStart carries the transfer tag and the total byte count.
type TransferStart struct {
	Tag        string
	TotalBytes int64
}

// TransferProgress reports a monotonically non-decreasing transferred byte
// count.
type TransferProgress struct {
	Transferred int64
}

// TransferTemporaryError reports a non-terminal condition such as being
// over quota. The transfer is still running.
type TransferTemporaryError struct {
	Err error
}

// TransferFinish terminates the event stream. Err is nil on success;
// common.ErrNodeAlreadyExists signals that the remote already holds a file
// under the target name.
type TransferFinish struct {
	NodeID NodeID
	Err    error
}

func (TransferStart) isTransferEvent()          {}
func (TransferProgress) isTransferEvent()       {}
func (TransferTemporaryError) isTransferEvent() {}
func (TransferFinish) isTransferEvent()         {}

// Uploader uploads one local file into a parent folder, streaming lifecycle
// events. The returned channel is closed after TransferFinish.
type Uploader interface {
	Upload(ctx context.Context, localPath string, parent NodeID, name string, fingerprint string) <-chan TransferEvent
}
