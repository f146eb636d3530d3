package controllers

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/fixthesign/fixthesign/app/models"
	"github.com/fixthesign/fixthesign/internal/pkg/imagetools"
	"github.com/fixthesign/fixthesign/internal/pkg/overlay"
)

// HandleDemo renders the ML demo page.
func HandleDemo(c *fiber.Ctx) error {
	return c.Render("demo", fiber.Map{
		"Page": "demo",
		"Msg":  flash.Get(c),
	}, "layouts/main")
}

// demoSign is one detected sign with its damage verdict.
type demoSign struct {
	models.BoundingBox
	Damage models.DamageResult `json:"damage"`
}

// HandleAPIDemoAnalyze runs the full analysis on an uploaded photo: sign
// detection, then damage classification on every crop in parallel. With
// ?format=png the response is the annotated image instead of JSON.
func HandleAPIDemoAnalyze(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "no file uploaded")
	}

	data, _, err := readUpload(fileHeader)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	img, err := imagetools.Decode(data)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "unsupported image format")
	}

	boxes, err := detector.Detect(c.Context(), fileHeader.Filename, data)
	if err != nil {
		log.Errorf("Detection failed: %v", err)
		return jsonError(c, fiber.StatusBadGateway, fmt.Sprintf("detection failed: %v", err))
	}

	signs, err := classifyAll(c.Context(), img, boxes)
	if err != nil {
		log.Errorf("Damage classification failed: %v", err)
		return jsonError(c, fiber.StatusBadGateway, fmt.Sprintf("classification failed: %v", err))
	}

	if c.Query("format") == "png" {
		labeled := make([]models.BoundingBox, len(signs))
		for i, s := range signs {
			labeled[i] = s.BoundingBox
			labeled[i].ClassName = fmt.Sprintf("%s %s", s.ClassName, s.Damage.Label)
		}
		raw, err := imagetools.EncodePNG(overlay.Annotate(img, labeled))
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "could not render annotated image")
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(raw)
	}

	return c.JSON(fiber.Map{
		"bboxes": signs,
	})
}

// classifyAll crops every detection and classifies the crops concurrently,
// keeping results aligned with their boxes.
func classifyAll(ctx context.Context, img image.Image, boxes []models.BoundingBox) ([]demoSign, error) {
	signs := make([]demoSign, len(boxes))
	errs := make([]error, len(boxes))

	var wg sync.WaitGroup
	for i, box := range boxes {
		wg.Add(1)
		go func(i int, box models.BoundingBox) {
			defer wg.Done()

			crop, err := imagetools.EncodeJPEG(imagetools.CropBox(img, box))
			if err != nil {
				errs[i] = err
				return
			}

			result, err := classifier.Classify(ctx, fmt.Sprintf("crop-%d.jpg", i), crop)
			if err != nil {
				errs[i] = err
				return
			}
			signs[i] = demoSign{BoundingBox: box, Damage: result}
		}(i, box)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return signs, nil
}
