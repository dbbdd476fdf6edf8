// Package models defines the upload-record data model shared by the record
// store and the processing engine.
package models

// ItemType distinguishes photos from videos; videos may pass through the
// transcoding stage before upload.
type ItemType string

const (
	ItemTypePhoto ItemType = "photo"
	ItemTypeVideo ItemType = "video"
)

// FolderClass says which of the two configured target folders a record
// belongs to.
type FolderClass string

const (
	FolderPrimary   FolderClass = "primary"
	FolderSecondary FolderClass = "secondary"
)

// UploadStatus is the per-record lifecycle status persisted in the store.
type UploadStatus string

const (
	StatusPending          UploadStatus = "pending"
	StatusStarted          UploadStatus = "started"
	StatusUploaded         UploadStatus = "uploaded"
	StatusCopied           UploadStatus = "copied"
	StatusAlreadyExists    UploadStatus = "already_exists"
	StatusLocalFileMissing UploadStatus = "local_file_missing"
	StatusFailed           UploadStatus = "failed"
)

// RecordKey uniquely identifies an upload record.
type RecordKey struct {
	MediaID   int64
	Timestamp int64
	Folder    FolderClass
}

// UploadRecord represents one locally discovered media item pending
// reconciliation with the cloud.
type UploadRecord struct {
	MediaID              int64
	Timestamp            int64
	Folder               FolderClass
	Type                 ItemType
	SourcePath           string
	TempPath             string
	FileName             string
	OriginalFingerprint  string
	GeneratedFingerprint string
	Status               UploadStatus
}

// Key returns the record's composite identity.
func (r *UploadRecord) Key() RecordKey {
	return RecordKey{MediaID: r.MediaID, Timestamp: r.Timestamp, Folder: r.Folder}
}
