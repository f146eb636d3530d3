package imagetools

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"

	"github.com/fixthesign/fixthesign/app/models"
)

func init() {
	// Register Nikon and Canon maker notes
	exif.RegisterParsers(mknote.All...)
}

// ExtractGPS pulls the geotag out of a photo's EXIF data, used to pre-fill
// the location picker. Photos without EXIF or without a geotag are common
// and yield ok=false, never an error.
func ExtractGPS(data []byte) (models.Location, bool) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return models.Location{}, false
	}

	lat, lng, err := x.LatLong()
	if err != nil {
		return models.Location{}, false
	}
	return models.Location{Lat: lat, Lng: lng}, true
}
