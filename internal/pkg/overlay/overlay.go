// Package overlay renders detection results on top of sign photos. It
// scales model-space bounding boxes into the coordinate space of whatever
// surface the image is shown on and draws the annotated result.
package overlay

import (
	"fmt"

	"github.com/fixthesign/fixthesign/app/models"
)

// ScaledBox is a bounding box projected into display coordinates,
// expressed as origin plus extent rather than corner pairs.
type ScaledBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
	Label  string
	Tag    string
}

// ScaleBox projects a box from the model's coordinate space (naturalW x
// naturalH) onto a display surface of displayW x displayH. Both axes scale
// independently, so aspect-ratio changes between the spaces are handled.
func ScaleBox(box models.BoundingBox, naturalW, naturalH, displayW, displayH float64) ScaledBox {
	sx := displayW / naturalW
	sy := displayH / naturalH

	return ScaledBox{
		X:      box.X1 * sx,
		Y:      box.Y1 * sy,
		Width:  box.Width() * sx,
		Height: box.Height() * sy,
		Label:  BoxLabel(box.ClassName, box.Confidence),
	}
}

// ScaleBoxes projects every detection onto the display surface.
func ScaleBoxes(boxes []models.BoundingBox, naturalW, naturalH, displayW, displayH float64) []ScaledBox {
	if len(boxes) == 0 {
		return nil
	}
	scaled := make([]ScaledBox, len(boxes))
	for i, box := range boxes {
		scaled[i] = ScaleBox(box, naturalW, naturalH, displayW, displayH)
	}
	return scaled
}

// BoxLabel formats the caption drawn next to a detection box.
func BoxLabel(className string, confidence float64) string {
	return fmt.Sprintf("%s (%.1f%%)", className, confidence*100)
}

// LabelY returns the vertical position for a box caption. Labels sit above
// the box unless the box touches the top edge, in which case they move
// inside it so they stay visible.
func LabelY(y1 float64) float64 {
	if y1 > 20 {
		return y1 - 5
	}
	return y1 + 15
}
