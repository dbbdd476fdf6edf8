// Package camera initializes and runs the camera uploads worker. It opens
// the record store, connects to object storage, builds the processing
// engine and drives one reconciliation batch per invocation, logging every
// progress event. SIGINT/SIGTERM cancel the batch; interrupted records stay
// in a resumable status and are picked up on the next run.
package camera

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/camsync/internal/camera/cloud"
	"github.com/dmitrijs2005/camsync/internal/camera/cloud/s3cloud"
	"github.com/dmitrijs2005/camsync/internal/camera/config"
	"github.com/dmitrijs2005/camsync/internal/camera/engine"
	"github.com/dmitrijs2005/camsync/internal/camera/media"
	"github.com/dmitrijs2005/camsync/internal/camera/models"
	"github.com/dmitrijs2005/camsync/internal/camera/records"
	"github.com/dmitrijs2005/camsync/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	store  records.Repository
	engine *engine.Engine
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	db, store, err := openStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("record store init error: %w", err)
	}

	s3, err := s3cloud.New(ctx, s3cloud.Config{
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		TrashPrefix:  c.TrashPrefix,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	var stripper *media.StripRunner
	if c.StripLocationTags {
		stripper = media.NewStripRunnerWithBackoff(&media.ExiftoolStripper{}, c.StripRetryDelay, c.StripRetryAttempts)
	}

	eng := engine.New(engine.Config{
		UploadConcurrency:      c.UploadConcurrency,
		CompressionConcurrency: c.CompressionConcurrency,
		StripLocationTags:      c.StripLocationTags,
		VideoQuality:           c.VideoQuality,
	}, engine.Deps{
		Store:        store,
		Search:       s3,
		Upload:       s3,
		Copy:         s3,
		Coords:       s3,
		Fingerprints: s3,
		Stripper:     stripper,
		Transcoder:   &media.FFmpegTranscoder{},
		Logger:       logger,
	})

	return &App{config: c, logger: logger, db: db, store: store, engine: eng}, nil
}

func openStore(ctx context.Context, c *config.Config) (*sql.DB, records.Repository, error) {
	switch c.DatabaseDriver {
	case "postgres":
		db, err := records.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return db, records.NewPostgresRepository(db), nil
	default:
		db, err := records.OpenSQLite(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return db, records.NewSQLiteRepository(db), nil
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run processes one batch of unfinished records and exits.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting camera uploads worker...")

	app.initSignalHandler(cancelFunc)

	recs, err := app.store.GetByStatusAndType(ctx, models.ResumableStatuses(), nil, nil)
	if err != nil {
		return fmt.Errorf("loading records: %w", err)
	}

	if len(recs) == 0 {
		app.logger.Info(ctx, "Nothing to upload")
		return nil
	}

	events := app.engine.Process(ctx, recs,
		cloud.NodeID(app.config.PrimaryFolder),
		cloud.NodeID(app.config.SecondaryFolder),
		app.config.TempDir)

	for ev := range events {
		app.logEvent(ctx, ev)
	}

	return nil
}

func (app *App) logEvent(ctx context.Context, ev engine.Event) {
	key := ev.RecordKey()

	switch ev := ev.(type) {
	case engine.ToUpload:
		app.logger.Info(ctx, "uploading", "mediaID", key.MediaID)
	case engine.ToCopy:
		app.logger.Info(ctx, "copying", "mediaID", key.MediaID, "from", ev.NodeID)
	case engine.Uploaded:
		app.logger.Info(ctx, "uploaded", "mediaID", key.MediaID, "node", ev.NodeID)
	case engine.Copied:
		app.logger.Info(ctx, "copied", "mediaID", key.MediaID, "node", ev.NodeID)
	case engine.AlreadyExists:
		app.logger.Info(ctx, "already in cloud", "mediaID", key.MediaID, "node", ev.NodeID)
	case engine.UploadProgress:
		app.logger.Info(ctx, "progress", "mediaID", key.MediaID, "transferred", ev.Transferred, "total", ev.TotalBytes)
	case engine.CompressionProgress:
		app.logger.Info(ctx, "compressing", "mediaID", key.MediaID, "percent", ev.Percent)
	case engine.CompressionFailed:
		app.logger.Warn(ctx, "compression failed, uploading original", "mediaID", key.MediaID, "error", ev.Err)
	case engine.UploadTemporaryError:
		app.logger.Warn(ctx, "transfer interrupted", "mediaID", key.MediaID, "error", ev.Err)
	case engine.Error:
		app.logger.Error(ctx, "processing failed", "mediaID", key.MediaID, "stage", ev.Stage, "error", ev.Err)
	}
}
