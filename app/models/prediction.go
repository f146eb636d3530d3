package models

// Prediction job states as reported by the inference services.
const (
	PredictionStatusPending = "pending"
	PredictionStatusDone    = "done"
	PredictionStatusError   = "error"
)

// BoundingBox is one detection from the sign detection service, in natural
// image pixel coordinates.
type BoundingBox struct {
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
}

// Width returns the box width in natural pixels.
func (b BoundingBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the box height in natural pixels.
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }

// DamageResult is the terminal payload of the damage classification service
// for a single cropped sign.
type DamageResult struct {
	Prediction float64 `json:"prediction"`
	Label      string  `json:"label"`
}
