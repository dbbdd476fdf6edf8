package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/camsync/internal/camera/media"
)

// Config holds runtime settings for the camera uploads worker.
//
// Fields:
//   - DatabaseDSN / DatabaseDriver: record store location; "sqlite" keeps a
//     local file, "postgres" points at a shared server.
//   - UploadConcurrency / CompressionConcurrency: independent bounds for
//     simultaneous uploads and simultaneous video transcodes.
//   - VideoQuality: transcoding target; media.QualityOriginal disables it.
//   - StripLocationTags: remove GPS EXIF fields from photos before upload.
//   - StripRetryDelay / StripRetryAttempts: retry policy for the strip stage
//     when local storage is exhausted.
//   - TempDir: scratch directory for transformed files.
//   - PrimaryFolder / SecondaryFolder: destination folders in the cloud.
//   - TrashPrefix: key prefix holding trashed objects.
//   - S3AccessKey / S3SecretKey / S3Bucket / S3Region / S3BaseEndpoint:
//     object storage settings.
type Config struct {
	DatabaseDSN            string
	DatabaseDriver         string
	UploadConcurrency      int64
	CompressionConcurrency int64
	VideoQuality           media.VideoQuality
	StripLocationTags      bool
	StripRetryDelay        time.Duration
	StripRetryAttempts     uint64
	TempDir                string
	PrimaryFolder          string
	SecondaryFolder        string
	TrashPrefix            string
	S3AccessKey            string
	S3SecretKey            string
	S3Bucket               string
	S3Region               string
	S3BaseEndpoint         string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: The S3 credentials are insecure and should be overridden.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "camsync.db"
	c.DatabaseDriver = "sqlite"
	c.UploadConcurrency = 16
	c.CompressionConcurrency = 1
	c.VideoQuality = media.QualityOriginal
	c.StripLocationTags = false
	c.StripRetryDelay = media.DefaultStripDelay
	c.StripRetryAttempts = media.DefaultStripAttempts
	c.TempDir = os.TempDir()
	c.PrimaryFolder = "camera/"
	c.SecondaryFolder = "pictures/"
	c.TrashPrefix = "trash/"
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.S3Bucket = "media"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
