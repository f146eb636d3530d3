// Command signdemo runs the full analysis pipeline against a photo from
// the command line: sign detection, per-sign damage classification, and an
// annotated output image.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fixthesign/fixthesign/app/models"
	"github.com/fixthesign/fixthesign/internal/pkg/imagetools"
	"github.com/fixthesign/fixthesign/internal/pkg/overlay"
	"github.com/fixthesign/fixthesign/internal/pkg/predict"
)

func main() {
	var (
		imagePath string
		detectURL string
		damageURL string
		outPath   string
		timeout   time.Duration
	)
	flag.StringVar(&imagePath, "image", "", "input photo (jpg/png)")
	flag.StringVar(&detectURL, "detect-url", "http://localhost:8001", "sign detection service base URL")
	flag.StringVar(&damageURL, "damage-url", "http://localhost:8002", "damage classification service base URL")
	flag.StringVar(&outPath, "out", "annotated.png", "annotated output image path")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	if imagePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := run(ctx, imagePath, detectURL, damageURL, outPath); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, imagePath, detectURL, damageURL, outPath string) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return err
	}
	img, err := imagetools.Decode(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", imagePath, err)
	}

	detector := predict.NewDetectionClient(detectURL)
	classifier := predict.NewDamageClient(damageURL)

	log.Printf("detecting signs in %s ...", filepath.Base(imagePath))
	boxes, err := detector.Detect(ctx, filepath.Base(imagePath), data)
	if err != nil {
		return fmt.Errorf("detection: %w", err)
	}
	if len(boxes) == 0 {
		log.Print("no traffic signs found")
		return nil
	}
	log.Printf("found %d sign(s), classifying damage ...", len(boxes))

	// Classify all crops in parallel, results stay aligned with boxes.
	results := make([]models.DamageResult, len(boxes))
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
			results[i], errs[i] = classifier.Classify(ctx, fmt.Sprintf("crop-%d.jpg", i), crop)
		}(i, box)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("classification: %w", err)
		}
	}

	labeled := make([]models.BoundingBox, len(boxes))
	for i, box := range boxes {
		labeled[i] = box
		labeled[i].ClassName = fmt.Sprintf("%s %s", box.ClassName, results[i].Label)
		log.Printf("  sign %d: %s at (%.0f,%.0f)-(%.0f,%.0f): %s (%.3f)",
			i+1, box.ClassName, box.X1, box.Y1, box.X2, box.Y2, results[i].Label, results[i].Prediction)
	}

	annotated, err := imagetools.EncodePNG(overlay.Annotate(img, labeled))
	if err != nil {
		return fmt.Errorf("render annotated image: %w", err)
	}
	if err := os.WriteFile(outPath, annotated, 0o644); err != nil {
		return err
	}
	log.Printf("annotated image written to %s", outPath)
	return nil
}
