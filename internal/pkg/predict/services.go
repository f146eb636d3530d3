package predict

import (
	"context"
	"encoding/json"

	"github.com/fixthesign/fixthesign/app/models"
)

// DetectionClient requests sign detection on a full photo.
type DetectionClient struct {
	*Client
}

func NewDetectionClient(baseURL string) *DetectionClient {
	return &DetectionClient{Client: NewClient(baseURL)}
}

// Detect submits the image, waits for the job, and returns the detected
// bounding boxes in natural image coordinates.
func (c *DetectionClient) Detect(ctx context.Context, fileName string, data []byte) ([]models.BoundingBox, error) {
	id, err := c.Submit(ctx, fileName, data)
	if err != nil {
		return nil, err
	}

	body, err := c.Await(ctx, id)
	if err != nil {
		return nil, err
	}

	var payload struct {
		BBoxes []models.BoundingBox `json:"bboxes"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &Error{Kind: KindUnavailable, Message: "failed to decode detection result", Err: err}
	}
	return payload.BBoxes, nil
}

// DamageClient requests damage classification on a cropped sign.
type DamageClient struct {
	*Client
}

func NewDamageClient(baseURL string) *DamageClient {
	return &DamageClient{Client: NewClient(baseURL)}
}

// Classify submits the crop, waits for the job, and returns the label with
// its raw model score.
func (c *DamageClient) Classify(ctx context.Context, fileName string, data []byte) (models.DamageResult, error) {
	id, err := c.Submit(ctx, fileName, data)
	if err != nil {
		return models.DamageResult{}, err
	}

	body, err := c.Await(ctx, id)
	if err != nil {
		return models.DamageResult{}, err
	}

	var payload struct {
		Result models.DamageResult `json:"result"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.DamageResult{}, &Error{Kind: KindUnavailable, Message: "failed to decode damage result", Err: err}
	}
	return payload.Result, nil
}
