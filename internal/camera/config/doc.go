// Package config loads runtime configuration for the camera uploads worker.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   record store DSN (sqlite path or postgres URL)
//	-m string   record store driver: "sqlite" or "postgres"
//	-n int      upload concurrency (records processed at once)
//	-z int      compression concurrency (simultaneous transcodes)
//	-q string   video quality: original, high, medium, low
//	-l          strip GPS location tags from photos before upload
//	-t string   temp directory for transformed files
//	-f string   primary cloud folder (photos/videos)
//	-s string   secondary cloud folder (screenshots etc.)
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-x string   trash key prefix in the bucket
//	-w int      strip retry delay (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for interval fields, so values can be
// either strings like "1s" or integer nanoseconds:
//
//	{
//	  "database_dsn": "camsync.db",
//	  "database_driver": "sqlite",
//	  "upload_concurrency": 16,
//	  "compression_concurrency": 1,
//	  "video_quality": "medium",
//	  "strip_location_tags": true,
//	  "strip_retry_delay": "1s"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
