// Package media holds the per-item transform stage of the camera-uploads
// engine: GPS-tag stripping with bounded retry, video transcoding contracts
// and EXIF coordinate extraction.
package media

import (
	"context"
	"errors"
	"io/fs"
	"os"

	goexif "github.com/rwcarlsen/goexif/exif"

	"github.com/dmitrijs2005/camsync/internal/camera/cloud"
)

// ExtractCoordinates reads the GPS position embedded in the photo at path.
// Returns nil without error when the file carries no usable EXIF position.
func ExtractCoordinates(ctx context.Context, path string) (*cloud.Coordinates, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	x, err := goexif.Decode(file)
	if err != nil {
		return nil, nil
	}

	lat, lng, err := x.LatLong()
	if err != nil {
		return nil, nil
	}

	return &cloud.Coordinates{Latitude: lat, Longitude: lng}, nil
}
