// Package pipeline orchestrates a report submission: presigned upload grant,
// direct image upload, then metadata registration. Steps are strictly
// sequential; a failure at any step aborts the whole submission.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/fixthesign/fixthesign/app/models"
	"github.com/fixthesign/fixthesign/internal/pkg/reportapi"
)

// Progress milestones reported after the upload grant, the binary upload,
// and the metadata submission.
var ProgressSteps = [3]int{33, 67, 100}

// MaxFieldLength caps free-text fields, matching the webapp's limit.
const MaxFieldLength = 480

// Request is one report submission.
type Request struct {
	ImageData   []byte  `validate:"required"`
	ContentType string  `validate:"required"`
	Lat         float64 `validate:"latitude"`
	Lng         float64 `validate:"longitude"`
	Description string
	Address     string
}

// ProgressFunc receives monotonic milestone percentages during a submission.
type ProgressFunc func(percent int)

// Submitter runs submissions against a report backend.
type Submitter struct {
	api *reportapi.Client
}

func NewSubmitter(api *reportapi.Client) *Submitter {
	return &Submitter{api: api}
}

// Submit runs the full submission pipeline and returns the backend's
// acknowledgement. onProgress may be nil. There is no idempotency key: a
// failure between the binary upload and the metadata submission orphans the
// uploaded blob, which is accepted for this use case.
func (s *Submitter) Submit(ctx context.Context, req Request, onProgress ProgressFunc) (*reportapi.SubmitResponse, error) {
	v := validator.New()
	if err := v.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid report: %w", err)
	}

	fileName := fmt.Sprintf("damage-report-%d.jpg", timeNow().UnixMilli())

	grant, err := s.api.GetUploadURL(ctx, fileName, req.ContentType)
	if err != nil {
		return nil, err
	}
	report(onProgress, ProgressSteps[0])

	if err := s.api.UploadImage(ctx, grant.UploadURL, req.ContentType, req.ImageData); err != nil {
		return nil, err
	}
	report(onProgress, ProgressSteps[1])

	data := reportapi.ReportData{
		Image:       grant.Key,
		Date:        timeNow().UTC().Format(time.RFC3339),
		Description: capField(req.Description),
		Address:     capField(req.Address),
	}
	data.Location.Lat = req.Lat
	data.Location.Long = req.Lng

	resp, err := s.api.SubmitReport(ctx, data)
	if err != nil {
		return nil, err
	}
	report(onProgress, ProgressSteps[2])

	return resp, nil
}

// SetLocation fills the coordinate fields from a models.Location.
func (r *Request) SetLocation(loc models.Location) {
	r.Lat = loc.Lat
	r.Lng = loc.Lng
}

func report(fn ProgressFunc, percent int) {
	if fn != nil {
		fn(percent)
	}
}

func capField(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= MaxFieldLength {
		return s
	}
	// Cut on a rune boundary so a multi-byte character straddling the
	// limit is dropped whole instead of leaving a broken sequence.
	cut := MaxFieldLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

var timeNow = time.Now
