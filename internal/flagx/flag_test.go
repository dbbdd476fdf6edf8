package flagx

import (
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-b", "media-bucket", "-test.v", "true"},
			allowedFlags: []string{"-b", "--bucket"},
			want:         []string{"-b", "media-bucket"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--bucket=media-bucket", "-test.v", "true"},
			allowedFlags: []string{"-b", "--bucket"},
			want:         []string{"--bucket=media-bucket"},
		},
		{
			name:         "both short and long present, preserve order",
			args:         []string{"--bucket=first", "-b", "second", "-x", "1"},
			allowedFlags: []string{"-b", "--bucket"},
			want:         []string{"--bucket=first", "-b", "second"},
		},
		{
			name:         "unknown flags and positionals dropped",
			args:         []string{"-x", "1", "--y=2", "camsync.db"},
			allowedFlags: []string{"-b", "--bucket"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept as-is",
			args:         []string{"-l"},
			allowedFlags: []string{"-l"},
			want:         []string{"-l"},
		},
		{
			name:         "flag followed by another flag has no value",
			args:         []string{"-l", "-q"},
			allowedFlags: []string{"-l", "-q"},
			want:         []string{"-l", "-q"},
		},
		{
			name:         "value that starts with a dash needs the equals form",
			args:         []string{"--endpoint=--weird"},
			allowedFlags: []string{"--endpoint"},
			want:         []string{"--endpoint=--weird"},
		},
		{
			name:         "multiple allowed flags kept",
			args:         []string{"-q", "high", "-b", "media-bucket", "--other", "x"},
			allowedFlags: []string{"-b", "-q"},
			want:         []string{"-q", "high", "-b", "media-bucket"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-b", "--bucket"},
			want:         []string{},
		},
		{
			name:         "path value remains a single arg",
			args:         []string{"-d", "/var/lib/camsync/camsync.db"},
			allowedFlags: []string{"-d"},
			want:         []string{"-d", "/var/lib/camsync/camsync.db"},
		},
		{
			name:         "repeated allowed flag is preserved in order",
			args:         []string{"-d", "one.db", "-d", "two.db"},
			allowedFlags: []string{"-d"},
			want:         []string{"-d", "one.db", "-d", "two.db"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func Test_jsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c with value", func(t *testing.T) {
		os.Args = []string{"camsync", "-c", "/etc/camsync/short.json"}
		assert.Equal(t, "/etc/camsync/short.json", JsonConfigFlags())
	})

	t.Run("long -config with value", func(t *testing.T) {
		os.Args = []string{"camsync", "-config", "/etc/camsync/long.json"}
		assert.Equal(t, "/etc/camsync/long.json", JsonConfigFlags())
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		os.Args = []string{"camsync", "-x", "1", "-y", "2"}
		assert.Empty(t, JsonConfigFlags())
	})

	t.Run("multiple flags, last wins", func(t *testing.T) {
		os.Args = []string{"camsync", "-c", "/etc/camsync/1.json", "-config", "/etc/camsync/2.json"}
		assert.Equal(t, "/etc/camsync/2.json", JsonConfigFlags())
	})
}
