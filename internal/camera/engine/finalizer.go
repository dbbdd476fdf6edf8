package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/camsync/internal/camera/cloud"
	"github.com/dmitrijs2005/camsync/internal/camera/media"
	"github.com/dmitrijs2005/camsync/internal/camera/models"
	"github.com/dmitrijs2005/camsync/internal/camera/records"
	"github.com/dmitrijs2005/camsync/internal/filex"
)

// finalize fans out the post-upload side effects: fingerprint assignment,
// GPS propagation from the local file, status update, thumbnail/preview
// regeneration and the completed-transfer history entry. All five run
// concurrently to completion; each failure is reported individually and
// none blocks the others or the record's success — the record counts as
// uploaded once the transfer finished. The temp file, if any, is removed
// afterwards.
func (e *Engine) finalize(ctx context.Context, queue *eventQueue, rec *models.UploadRecord, nodeID cloud.NodeID, effectivePath string, tempCreated bool) {
	key := rec.Key()

	report := func(task string, err error) {
		if err != nil {
			queue.push(Error{base: base{key}, Stage: StageFinalize, Err: fmt.Errorf("%s: %w", task, err)})
		}
	}

	tasks := []struct {
		name string
		run  func(ctx context.Context) error
	}{
		{"fingerprint", func(ctx context.Context) error {
			return e.deps.Fingerprints.SetOriginalFingerprint(ctx, nodeID, rec.OriginalFingerprint)
		}},
		{"coordinates", func(ctx context.Context) error {
			coords, err := media.ExtractCoordinates(ctx, rec.SourcePath)
			if err != nil || coords == nil {
				return err
			}
			return e.deps.Coords.SetNodeCoordinates(ctx, nodeID, *coords)
		}},
		{"status", func(ctx context.Context) error {
			return e.deps.Store.UpdateStatus(ctx, key, models.StatusUploaded)
		}},
		{"previews", func(ctx context.Context) error {
			if err := e.deps.Previews.DeletePreviews(ctx, key); err != nil {
				return err
			}
			return e.deps.Previews.CreatePreviews(ctx, key, effectivePath)
		}},
		{"history", func(ctx context.Context) error {
			size, err := filex.Size(effectivePath)
			if err != nil {
				size = 0
			}
			return e.deps.Store.RecordCompletedTransfer(ctx, &records.CompletedTransfer{
				ID:         uuid.New().String(),
				Key:        key,
				FileName:   rec.FileName,
				NodeID:     string(nodeID),
				SizeBytes:  size,
				FinishedAt: time.Now(),
			})
		}},
	}

	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func(name string, run func(ctx context.Context) error) {
			defer wg.Done()
			report(name, run(ctx))
		}(task.name, task.run)
	}
	wg.Wait()

	if tempCreated {
		report("cleanup", filex.Remove(effectivePath))
	}
}
