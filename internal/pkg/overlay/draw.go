package overlay

import (
	"image"

	"github.com/fogleman/gg"

	"github.com/fixthesign/fixthesign/app/models"
)

const boxLineWidth = 4

// Annotate draws raw detections onto a photo. Boxes are red, captions
// yellow, matching the live viewfinder overlay.
func Annotate(img image.Image, boxes []models.BoundingBox) image.Image {
	dc := gg.NewContextForImage(img)
	dc.SetLineWidth(boxLineWidth)

	for _, box := range boxes {
		dc.SetRGB255(255, 0, 0)
		dc.DrawRectangle(box.X1, box.Y1, box.Width(), box.Height())
		dc.Stroke()

		dc.SetRGB255(255, 255, 0)
		dc.DrawString(BoxLabel(box.ClassName, box.Confidence), box.X1, LabelY(box.Y1))
	}

	return dc.Image()
}

// AnnotateSigns draws assessed signs onto a processed report photo. Damaged
// signs get a red box, healthy ones a green box, each captioned with its tag.
func AnnotateSigns(img image.Image, signs []models.TrafficSign) image.Image {
	dc := gg.NewContextForImage(img)
	dc.SetLineWidth(boxLineWidth)

	for _, sign := range signs {
		if sign.Tag == models.SignTagDamaged {
			dc.SetRGB255(255, 0, 0)
		} else {
			dc.SetRGB255(0, 200, 0)
		}
		dc.DrawRectangle(sign.X1, sign.Y1, sign.X2-sign.X1, sign.Y2-sign.Y1)
		dc.Stroke()

		dc.SetRGB255(255, 255, 0)
		dc.DrawString(sign.Tag, sign.X1, LabelY(sign.Y1))
	}

	return dc.Image()
}
