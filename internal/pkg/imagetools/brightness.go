package imagetools

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Brightness analysis settings. Thresholds come from field testing the
// capture flow: plain mean cutoffs, tightened when the histogram is flat
// (low deviation means an over- or under-exposed frame with no detail).
const (
	maxSampleSize   = 320
	darkThreshold   = 60
	brightThreshold = 200
	lowStdThreshold = 30
	darkEdgeMean    = 80
	brightEdgeMean  = 180
)

// BrightnessStatus classifies a frame for the capture UI.
type BrightnessStatus string

const (
	BrightnessTooDark   BrightnessStatus = "too-dark"
	BrightnessOK        BrightnessStatus = "ok"
	BrightnessTooBright BrightnessStatus = "too-bright"
)

// BrightnessAnalysis holds the histogram statistics behind a status.
type BrightnessAnalysis struct {
	Status    BrightnessStatus `json:"status"`
	Mean      float64          `json:"mean"`
	Std       float64          `json:"std"`
	Histogram [256]int         `json:"histogram"`
}

// AnalyzeBrightness computes a luma histogram over a downscaled sample of
// the image and classifies it as too dark, ok, or too bright.
func AnalyzeBrightness(img image.Image) BrightnessAnalysis {
	sample := img
	bounds := img.Bounds()
	if bounds.Dx() > maxSampleSize || bounds.Dy() > maxSampleSize {
		sample = imaging.Fit(img, maxSampleSize, maxSampleSize, imaging.NearestNeighbor)
	}

	var analysis BrightnessAnalysis
	sb := sample.Bounds()
	total := 0
	sum := 0.0

	for y := sb.Min.Y; y < sb.Max.Y; y++ {
		for x := sb.Min.X; x < sb.Max.X; x++ {
			r, g, b, _ := sample.At(x, y).RGBA()
			// Rec. 601 luma on 8-bit channels.
			luma := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			bucket := int(math.Round(luma))
			if bucket > 255 {
				bucket = 255
			}
			analysis.Histogram[bucket]++
			sum += luma
			total++
		}
	}
	if total == 0 {
		analysis.Status = BrightnessOK
		return analysis
	}

	mean := sum / float64(total)
	variance := 0.0
	for bucket, count := range analysis.Histogram {
		d := float64(bucket) - mean
		variance += d * d * float64(count)
	}
	std := math.Sqrt(variance / float64(total))

	analysis.Mean = math.Round(mean)
	analysis.Std = math.Round(std*100) / 100

	switch {
	case mean < darkThreshold || (mean < darkEdgeMean && std < lowStdThreshold):
		analysis.Status = BrightnessTooDark
	case mean > brightThreshold || (mean > brightEdgeMean && std < lowStdThreshold):
		analysis.Status = BrightnessTooBright
	default:
		analysis.Status = BrightnessOK
	}
	return analysis
}
