package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/camsync/internal/camera/media"
	"github.com/dmitrijs2005/camsync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   record store DSN
//	-m string   record store driver ("sqlite" or "postgres")
//	-n int      upload concurrency
//	-z int      compression concurrency
//	-q string   video quality (original, high, medium, low)
//	-l          strip GPS location tags from photos
//	-t string   temp directory
//	-f string   primary cloud folder
//	-s string   secondary cloud folder
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-x string   trash key prefix
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes
//     using flagx.FilterArgs, avoiding collisions with other components.
//   - The strip retry delay flag is accepted as an integer in seconds and
//     converted to a time.Duration value.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-m", "-n", "-z", "-q", "-l", "-t", "-f", "-s", "-u", "-p", "-b", "-g", "-e", "-x", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "record store DSN")
	fs.StringVar(&config.DatabaseDriver, "m", config.DatabaseDriver, "record store driver (sqlite or postgres)")
	fs.Int64Var(&config.UploadConcurrency, "n", config.UploadConcurrency, "upload concurrency")
	fs.Int64Var(&config.CompressionConcurrency, "z", config.CompressionConcurrency, "compression concurrency")

	videoQuality := fs.String("q", string(config.VideoQuality), "video quality (original, high, medium, low)")
	stripRetryDelay := fs.Int("w", int(config.StripRetryDelay.Seconds()), "strip retry delay (in seconds)")

	fs.BoolVar(&config.StripLocationTags, "l", config.StripLocationTags, "strip GPS location tags from photos")
	fs.StringVar(&config.TempDir, "t", config.TempDir, "temp directory for transformed files")
	fs.StringVar(&config.PrimaryFolder, "f", config.PrimaryFolder, "primary cloud folder")
	fs.StringVar(&config.SecondaryFolder, "s", config.SecondaryFolder, "secondary cloud folder")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket name")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.TrashPrefix, "x", config.TrashPrefix, "trash key prefix")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.VideoQuality = media.VideoQuality(*videoQuality)
	config.StripRetryDelay = time.Duration(*stripRetryDelay) * time.Second
}
