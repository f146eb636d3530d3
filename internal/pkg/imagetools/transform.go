// Package imagetools covers the photo handling the capture flow needs:
// decoding with EXIF orientation applied, brightness heuristics, bounding box
// crops, and quarter-turn rotation.
package imagetools

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/fixthesign/fixthesign/app/models"
)

const jpegQuality = 90

// Decode parses an uploaded photo (JPEG or PNG) and applies the EXIF
// orientation so all downstream coordinates refer to the upright image.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// EncodeJPEG renders the image back to JPEG bytes for upload.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePNG renders the image to PNG bytes; crops keep PNG to avoid a second
// lossy pass before classification.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// CropBox cuts the region of a detection out of the image. The box is
// clamped to the image bounds.
func CropBox(img image.Image, box models.BoundingBox) image.Image {
	rect := image.Rect(int(box.X1), int(box.Y1), int(box.X2), int(box.Y2))
	return imaging.Crop(img, rect.Intersect(img.Bounds()))
}

// RotateQuarters rotates the image by the given number of clockwise quarter
// turns, matching the capture page's rotate button.
func RotateQuarters(img image.Image, turns int) image.Image {
	turns = ((turns % 4) + 4) % 4
	switch turns {
	case 1:
		return imaging.Rotate270(img)
	case 2:
		return imaging.Rotate180(img)
	case 3:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
