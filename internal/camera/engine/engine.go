// Package engine contains the camera-uploads orchestrator: it reconciles a
// batch of locally discovered media records against cloud state, uploading,
// copying or skipping each one under bounded concurrency, and streams typed
// progress events for every milestone. Processing one record never aborts
// its siblings, and the record store is updated at every status transition
// so an interrupted batch resumes correctly on the next invocation.
package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/dmitrijs2005/camsync/internal/camera/cloud"
	"github.com/dmitrijs2005/camsync/internal/camera/media"
	"github.com/dmitrijs2005/camsync/internal/camera/models"
	"github.com/dmitrijs2005/camsync/internal/camera/records"
	"github.com/dmitrijs2005/camsync/internal/logging"
)

// PreviewService creates and deletes thumbnail/preview artifacts for an
// uploaded record. Implementations live outside the engine.
type PreviewService interface {
	DeletePreviews(ctx context.Context, key models.RecordKey) error
	CreatePreviews(ctx context.Context, key models.RecordKey, sourcePath string) error
}

// noopPreviews stands in when no preview service is configured.
type noopPreviews struct{}

func (noopPreviews) DeletePreviews(ctx context.Context, key models.RecordKey) error { return nil }
func (noopPreviews) CreatePreviews(ctx context.Context, key models.RecordKey, sourcePath string) error {
	return nil
}

// Config bounds the engine's concurrency and switches the transform stage.
type Config struct {
	// UploadConcurrency is the number of records processed at once.
	UploadConcurrency int64
	// CompressionConcurrency bounds simultaneous video transcodes; it is
	// configured independently of UploadConcurrency and is typically 1.
	CompressionConcurrency int64
	// StripLocationTags removes GPS EXIF fields from photos before upload.
	StripLocationTags bool
	// VideoQuality is the transcoding target; QualityOriginal disables
	// transcoding.
	VideoQuality media.VideoQuality
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		UploadConcurrency:      16,
		CompressionConcurrency: 1,
		VideoQuality:           media.QualityOriginal,
	}
}

// Deps are the collaborators the engine drives. Stripper and Transcoder may
// be nil when the corresponding transform is disabled; a nil Previews
// disables preview regeneration.
type Deps struct {
	Store        records.Repository
	Search       cloud.Searcher
	Upload       cloud.Uploader
	Copy         cloud.Copier
	Coords       cloud.CoordinateService
	Fingerprints cloud.FingerprintSetter
	Previews     PreviewService
	Stripper     *media.StripRunner
	Transcoder   media.Transcoder
	Logger       logging.Logger
}

// Engine is the concurrency orchestrator for one batch at a time.
type Engine struct {
	cfg  Config
	deps Deps

	uploadSem   *semaphore.Weighted
	compressSem *semaphore.Weighted
}

func New(cfg Config, deps Deps) *Engine {
	if cfg.UploadConcurrency < 1 {
		cfg.UploadConcurrency = 1
	}
	if cfg.CompressionConcurrency < 1 {
		cfg.CompressionConcurrency = 1
	}
	if deps.Previews == nil {
		deps.Previews = noopPreviews{}
	}
	return &Engine{
		cfg:         cfg,
		deps:        deps,
		uploadSem:   semaphore.NewWeighted(cfg.UploadConcurrency),
		compressSem: semaphore.NewWeighted(cfg.CompressionConcurrency),
	}
}

// Process reconciles the batch against cloud state. Events for all records
// are interleaved on the returned stream; it closes once every dispatched
// record has finished. Cancelling ctx stops dispatching and propagates into
// in-flight work; the stream still closes cleanly.
func (e *Engine) Process(ctx context.Context, recs []*models.UploadRecord, primary, secondary cloud.NodeID, tempDir string) <-chan Event {
	out := make(chan Event)
	queue := newEventQueue()
	go queue.relay(out)

	go func() {
		var wg sync.WaitGroup

		e.deps.Logger.Info(ctx, "batch started", "records", len(recs))

		for _, rec := range recs {
			if err := e.uploadSem.Acquire(ctx, 1); err != nil {
				// Cancelled; remaining records stay Pending for the next batch.
				break
			}

			wg.Add(1)
			go func(rec *models.UploadRecord) {
				defer wg.Done()
				defer e.uploadSem.Release(1)
				e.dispatch(ctx, queue, rec, primary, secondary, tempDir)
			}(rec)
		}

		wg.Wait()
		e.deps.Logger.Info(ctx, "batch finished")
		queue.close()
	}()

	return out
}

func (e *Engine) targetFolder(rec *models.UploadRecord, primary, secondary cloud.NodeID) cloud.NodeID {
	if rec.Folder == models.FolderSecondary {
		return secondary
	}
	return primary
}

// dispatch resolves one record's disposition and runs the matching path.
// Every exit emits a typed event; no failure here affects sibling records.
func (e *Engine) dispatch(ctx context.Context, queue *eventQueue, rec *models.UploadRecord, primary, secondary cloud.NodeID, tempDir string) {
	key := rec.Key()
	target := e.targetFolder(rec, primary, secondary)

	// Re-submitted records are structurally first-time work: disposition is
	// resolved fresh, so a retryable or interrupted status collapses back to
	// Pending before any new transition is recorded.
	if models.CanRetry(rec.Status) || rec.Status == models.StatusStarted {
		rec.Status = models.StatusPending
	}

	disp, err := resolveDisposition(ctx, e.deps.Search, rec, target)
	if err != nil {
		// Record stays Pending and is re-resolved next batch.
		e.deps.Logger.Error(ctx, "disposition resolution failed", "mediaID", key.MediaID, "error", err)
		queue.push(Error{base: base{key}, Stage: StageResolve, Err: err})
		return
	}

	switch {
	case disp.Node == nil:
		e.processUpload(ctx, queue, rec, target, tempDir)

	case disp.ExistsInTarget == nil || *disp.ExistsInTarget:
		// Already in the target folder, or trashed: nothing to transfer.
		e.updateStatus(ctx, queue, rec, models.StatusAlreadyExists)
		queue.push(AlreadyExists{base: base{key}, NodeID: disp.Node.ID})

	default:
		e.processCopy(ctx, queue, rec, *disp.Node, target)
	}
}

// processCopy server-side copies an existing node into the target folder,
// then propagates GPS coordinates read from the existing node onto the new
// copy. A coordinate failure is secondary: the record still counts as
// Copied once the copy itself succeeded.
func (e *Engine) processCopy(ctx context.Context, queue *eventQueue, rec *models.UploadRecord, node cloud.Node, target cloud.NodeID) {
	key := rec.Key()
	queue.push(ToCopy{base: base{key}, NodeID: node.ID})

	newID, err := e.deps.Copy.Copy(ctx, node, target, rec.FileName)
	if err != nil {
		queue.push(Error{base: base{key}, Stage: StageCopy, Err: err})
		return
	}

	if coords, err := e.deps.Coords.NodeCoordinates(ctx, node.ID); err != nil {
		queue.push(Error{base: base{key}, Stage: StageCopy, Err: err})
	} else if coords != nil {
		if err := e.deps.Coords.SetNodeCoordinates(ctx, newID, *coords); err != nil {
			queue.push(Error{base: base{key}, Stage: StageCopy, Err: err})
		}
	}

	e.updateStatus(ctx, queue, rec, models.StatusCopied)
	queue.push(Copied{base: base{key}, NodeID: newID})
}

// updateStatus applies a status transition to the record and persists it.
// Invalid transitions are rejected without touching the store; persistence
// failure is reported but never aborts the record's processing.
func (e *Engine) updateStatus(ctx context.Context, queue *eventQueue, rec *models.UploadRecord, status models.UploadStatus) {
	key := rec.Key()
	if rec.Status == status {
		return
	}
	if err := models.ValidateTransition(rec.Status, status); err != nil {
		e.deps.Logger.Warn(ctx, "status transition rejected", "mediaID", key.MediaID, "error", err)
		queue.push(Error{base: base{key}, Stage: StageStore, Err: err})
		return
	}
	if err := e.deps.Store.UpdateStatus(ctx, key, status); err != nil {
		e.deps.Logger.Warn(ctx, "status update failed", "mediaID", key.MediaID, "status", status, "error", err)
		queue.push(Error{base: base{key}, Stage: StageStore, Err: err})
	}
	rec.Status = status
}
