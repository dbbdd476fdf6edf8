package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/camsync/internal/camera/media"
)

func TestParseFlags(t *testing.T) {

	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd",
			"-d", "records.db", "-m", "sqlite", "-n", "8", "-z", "2",
			"-q", "low", "-l", "-w", "2", "-t", "/var/tmp", "-f", "camera/", "-s", "shots/",
			"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint", "-x", "deleted/",
		}, expectPanic: false,
			expected: &Config{
				DatabaseDSN:            "records.db",
				DatabaseDriver:         "sqlite",
				UploadConcurrency:      8,
				CompressionConcurrency: 2,
				VideoQuality:           media.QualityLow,
				StripLocationTags:      true,
				StripRetryDelay:        2 * time.Second,
				TempDir:                "/var/tmp",
				PrimaryFolder:          "camera/",
				SecondaryFolder:        "shots/",
				TrashPrefix:            "deleted/",
				S3AccessKey:            "user",
				S3SecretKey:            "password",
				S3Bucket:               "bucket",
				S3Region:               "us-west-1",
				S3BaseEndpoint:         "http://endpoint",
			}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {

				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
