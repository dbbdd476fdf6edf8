package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/camsync/internal/camera/media"
	"github.com/dmitrijs2005/camsync/internal/flagx"
	"github.com/dmitrijs2005/camsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "1s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	DatabaseDSN            string         `json:"database_dsn"`
	DatabaseDriver         string         `json:"database_driver"`
	UploadConcurrency      int64          `json:"upload_concurrency"`
	CompressionConcurrency int64          `json:"compression_concurrency"`
	VideoQuality           string         `json:"video_quality"`
	StripLocationTags      bool           `json:"strip_location_tags"`
	StripRetryDelay        timex.Duration `json:"strip_retry_delay"`
	StripRetryAttempts     uint64         `json:"strip_retry_attempts"`
	TempDir                string         `json:"temp_dir"`
	PrimaryFolder          string         `json:"primary_folder"`
	SecondaryFolder        string         `json:"secondary_folder"`
	TrashPrefix            string         `json:"trash_prefix"`
	S3AccessKey            string         `json:"s3_access_key"`
	S3SecretKey            string         `json:"s3_secret_key"`
	S3Bucket               string         `json:"s3_bucket"`
	S3Region               string         `json:"s3_region"`
	S3BaseEndpoint         string         `json:"s3_base_endpoint"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//
//	The -c or -config command-line flags via flagx.JsonConfigFlags().
//	If empty, no JSON is loaded and the function returns.
//
// If the file cannot be read or contains invalid JSON, the function panics.
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.DatabaseDSN = c.DatabaseDSN
	config.DatabaseDriver = c.DatabaseDriver
	config.UploadConcurrency = c.UploadConcurrency
	config.CompressionConcurrency = c.CompressionConcurrency
	config.VideoQuality = media.VideoQuality(c.VideoQuality)
	config.StripLocationTags = c.StripLocationTags
	config.StripRetryDelay = time.Duration(c.StripRetryDelay.Duration)
	config.StripRetryAttempts = c.StripRetryAttempts
	config.TempDir = c.TempDir
	config.PrimaryFolder = c.PrimaryFolder
	config.SecondaryFolder = c.SecondaryFolder
	config.TrashPrefix = c.TrashPrefix
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
