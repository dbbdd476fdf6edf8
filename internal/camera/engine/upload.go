package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/camsync/internal/camera/cloud"
	"github.com/dmitrijs2005/camsync/internal/camera/fingerprint"
	"github.com/dmitrijs2005/camsync/internal/camera/media"
	"github.com/dmitrijs2005/camsync/internal/camera/models"
	"github.com/dmitrijs2005/camsync/internal/common"
)

// processUpload runs the full upload path for one record: optional media
// transform, fingerprint persistence, transfer, then the post-upload
// finalizer.
func (e *Engine) processUpload(ctx context.Context, queue *eventQueue, rec *models.UploadRecord, target cloud.NodeID, tempDir string) {
	key := rec.Key()
	queue.push(ToUpload{base: base{key}})

	e.updateStatus(ctx, queue, rec, models.StatusStarted)

	effectivePath, tempCreated, ok := e.transform(ctx, queue, rec, tempDir)
	if !ok {
		return
	}

	fp, err := fingerprint.Compute(effectivePath)
	if err != nil {
		if errors.Is(err, common.ErrLocalFileMissing) {
			e.updateStatus(ctx, queue, rec, models.StatusLocalFileMissing)
		} else {
			e.updateStatus(ctx, queue, rec, models.StatusFailed)
		}
		queue.push(Error{base: base{key}, Stage: StageTransfer, Err: err})
		return
	}

	// Persisted before the transfer starts so that a crash mid-upload
	// leaves a fingerprint usable for reconciliation on resume.
	tempPath := ""
	if tempCreated {
		tempPath = effectivePath
	}
	if err := e.deps.Store.UpdateGeneratedFingerprint(ctx, key, fp, tempPath); err != nil {
		queue.push(Error{base: base{key}, Stage: StageStore, Err: err})
	}

	var totalBytes int64
	var finish cloud.TransferFinish
	finished := false

	for ev := range e.deps.Upload.Upload(ctx, effectivePath, target, rec.FileName, fp) {
		switch ev := ev.(type) {
		case cloud.TransferStart:
			totalBytes = ev.TotalBytes
			queue.push(UploadStarted{base: base{key}, Tag: ev.Tag, TotalBytes: ev.TotalBytes})
		case cloud.TransferProgress:
			queue.push(UploadProgress{base: base{key}, Transferred: ev.Transferred, TotalBytes: totalBytes})
		case cloud.TransferTemporaryError:
			queue.push(UploadTemporaryError{base: base{key}, Err: ev.Err})
		case cloud.TransferFinish:
			finish = ev
			finished = true
		}
	}

	if !finished {
		queue.push(Error{base: base{key}, Stage: StageTransfer, Err: fmt.Errorf("transfer ended without a finish event")})
		return
	}

	nodeID := finish.NodeID

	switch {
	case finish.Err == nil:

	case errors.Is(finish.Err, common.ErrNodeAlreadyExists):
		// The remote already holds a file under the target name. Accept it
		// only after an explicit equivalence check: the fingerprint we
		// uploaded under must resolve to a node in the target folder.
		validated, existingID := e.validateExisting(ctx, fp, target)
		if !validated {
			queue.push(Error{base: base{key}, Stage: StageTransfer,
				Err: fmt.Errorf("%w: %s", common.ErrNameConflict, rec.FileName)})
			return
		}
		nodeID = existingID

	case errors.Is(finish.Err, common.ErrLocalFileMissing):
		e.updateStatus(ctx, queue, rec, models.StatusLocalFileMissing)
		queue.push(Error{base: base{key}, Stage: StageTransfer, Err: finish.Err})
		return

	default:
		// Terminal for this attempt; the record is re-submitted next batch.
		queue.push(Error{base: base{key}, Stage: StageTransfer, Err: finish.Err})
		return
	}

	e.finalize(ctx, queue, rec, nodeID, effectivePath, tempCreated)
	queue.push(Uploaded{base: base{key}, NodeID: nodeID})
}

// validateExisting checks whether a node carrying the uploaded fingerprint
// already sits in the target folder.
func (e *Engine) validateExisting(ctx context.Context, fp string, target cloud.NodeID) (bool, cloud.NodeID) {
	nodes, err := e.deps.Search.SearchByFingerprint(ctx, fp)
	if err != nil {
		return false, ""
	}
	for _, n := range nodes {
		if !n.InTrash && n.ParentID == target {
			return true, n.ID
		}
	}
	return false, ""
}

// transform applies the configured media transformation and returns the
// effective file path to upload. ok is false when the record reached a
// terminal error status. A transcoding failure is not terminal: the upload
// falls back to the original file.
func (e *Engine) transform(ctx context.Context, queue *eventQueue, rec *models.UploadRecord, tempDir string) (effectivePath string, tempCreated, ok bool) {
	key := rec.Key()

	switch rec.Type {
	case models.ItemTypePhoto:
		if !e.cfg.StripLocationTags || e.deps.Stripper == nil {
			return rec.SourcePath, false, true
		}

		dst := filepath.Join(tempDir, uuid.New().String()+filepath.Ext(rec.FileName))
		if err := e.deps.Stripper.Run(ctx, rec.SourcePath, dst); err != nil {
			if errors.Is(err, common.ErrLocalFileMissing) {
				e.updateStatus(ctx, queue, rec, models.StatusLocalFileMissing)
			} else {
				e.updateStatus(ctx, queue, rec, models.StatusFailed)
			}
			queue.push(Error{base: base{key}, Stage: StageStrip, Err: err})
			return "", false, false
		}
		return dst, true, true

	case models.ItemTypeVideo:
		if e.cfg.VideoQuality == "" || e.cfg.VideoQuality == media.QualityOriginal || e.deps.Transcoder == nil {
			return rec.SourcePath, false, true
		}
		return e.transcode(ctx, queue, rec, tempDir)
	}

	return rec.SourcePath, false, true
}

// transcode compresses a video under the compression semaphore. The permit
// is held only for the duration of the transcode, never across the upload.
func (e *Engine) transcode(ctx context.Context, queue *eventQueue, rec *models.UploadRecord, tempDir string) (string, bool, bool) {
	key := rec.Key()

	if err := e.compressSem.Acquire(ctx, 1); err != nil {
		queue.push(Error{base: base{key}, Stage: StageCompress, Err: err})
		return "", false, false
	}
	defer e.compressSem.Release(1)

	dst := filepath.Join(tempDir, uuid.New().String()+filepath.Ext(rec.FileName))

	for ev := range e.deps.Transcoder.Transcode(ctx, rec.SourcePath, dst, e.cfg.VideoQuality) {
		switch ev := ev.(type) {
		case media.TranscodeProgress:
			queue.push(CompressionProgress{base: base{key}, Percent: ev.Percent})
		case media.TranscodeSuccessful:
			queue.push(CompressionSucceeded{base: base{key}})
			return dst, true, true
		case media.TranscodeFailed:
			// Fall back to the original file, never drop the item.
			queue.push(CompressionFailed{base: base{key}, Err: ev.Err})
			return rec.SourcePath, false, true
		}
	}

	queue.push(CompressionFailed{base: base{key}, Err: fmt.Errorf("transcode ended without a terminal event")})
	return rec.SourcePath, false, true
}
