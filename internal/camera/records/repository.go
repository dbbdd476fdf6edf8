// Package records implements the durable record store for camera uploads:
// per-item upload records keyed by (media id, timestamp, folder) plus a
// completed-transfer history table. SQLite backs the on-device store;
// a Postgres implementation exists for server-side deployments.
package records

import (
	"context"
	"time"

	"github.com/dmitrijs2005/camsync/internal/camera/models"
)

// CompletedTransfer is one history entry written after a successful upload
// or copy.
type CompletedTransfer struct {
	ID         string
	Key        models.RecordKey
	FileName   string
	NodeID     string
	SizeBytes  int64
	FinishedAt time.Time
}

// Repository describes the record-store operations used by the engine.
// All operations are atomic per record; updates to different records never
// block each other.
type Repository interface {
	// UpsertMany inserts or updates a batch of records in one transaction.
	UpsertMany(ctx context.Context, recs []*models.UploadRecord) error

	// GetByStatusAndType returns records matching any of the given statuses,
	// item types and folder classifications. Empty filter slices match all.
	GetByStatusAndType(ctx context.Context, statuses []models.UploadStatus, types []models.ItemType, folders []models.FolderClass) ([]*models.UploadRecord, error)

	// UpdateStatus sets the upload status of a single record.
	UpdateStatus(ctx context.Context, key models.RecordKey, status models.UploadStatus) error

	// UpdateGeneratedFingerprint stores the fingerprint computed over the
	// effective (possibly transformed) file, together with its temp path.
	UpdateGeneratedFingerprint(ctx context.Context, key models.RecordKey, fingerprint, tempPath string) error

	// RecordCompletedTransfer appends one completed-transfer history entry.
	RecordCompletedTransfer(ctx context.Context, ct *CompletedTransfer) error
}
