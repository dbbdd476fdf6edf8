package engine

import (
	"github.com/dmitrijs2005/camsync/internal/camera/cloud"
	"github.com/dmitrijs2005/camsync/internal/camera/models"
)

// Event is the closed set of progress events Process emits. Consumers key
// events by RecordKey to reconstruct per-item sequences; cross-record
// ordering on the stream is unspecified.
type Event interface {
	isEvent()
	RecordKey() models.RecordKey
}

// base carries the emitting record's identity.
type base struct {
	Key models.RecordKey
}

func (b base) isEvent()                    {}
func (b base) RecordKey() models.RecordKey { return b.Key }

// ToUpload is emitted when disposition resolution decided a record needs a
// fresh upload.
type ToUpload struct {
	base
}

// CompressionProgress relays video-transcoding progress in percent.
type CompressionProgress struct {
	base
	Percent float64
}

// CompressionSucceeded reports that the transcoded temp file is complete.
type CompressionSucceeded struct {
	base
}

// CompressionFailed reports a transcoding failure. The record is not
// dropped; the upload proceeds with the original file.
type CompressionFailed struct {
	base
	Err error
}

// UploadStarted mirrors the transfer executor's start milestone.
type UploadStarted struct {
	base
	Tag        string
	TotalBytes int64
}

// UploadProgress carries the transferred byte count so far.
type UploadProgress struct {
	base
	Transferred int64
	TotalBytes  int64
}

// UploadTemporaryError relays a non-terminal transfer condition such as
// being over quota.
type UploadTemporaryError struct {
	base
	Err error
}

// Uploaded is the upload path's terminal success event.
type Uploaded struct {
	base
	NodeID cloud.NodeID
}

// ToCopy is emitted when disposition resolution found a matching node
// outside the target folder.
type ToCopy struct {
	base
	NodeID cloud.NodeID
}

// Copied is the copy path's terminal success event.
type Copied struct {
	base
	NodeID cloud.NodeID
}

// AlreadyExists is the no-op path's terminal event: a matching node is
// already in the target folder or sits in the trash.
type AlreadyExists struct {
	base
	NodeID cloud.NodeID
}

// Error reports a failure in one stage of one record's processing. Sibling
// records are unaffected.
type Error struct {
	base
	Stage string
	Err   error
}

// Stages reported in Error events.
const (
	StageResolve  = "resolve"
	StageStore    = "store"
	StageStrip    = "strip"
	StageCompress = "compress"
	StageTransfer = "transfer"
	StageCopy     = "copy"
	StageFinalize = "finalize"
)
