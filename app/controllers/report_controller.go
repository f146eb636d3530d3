package controllers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/sujit-baniya/flash"

	"github.com/fixthesign/fixthesign/app/models"
	"github.com/fixthesign/fixthesign/internal/pkg/capture"
	"github.com/fixthesign/fixthesign/internal/pkg/constants"
	"github.com/fixthesign/fixthesign/internal/pkg/devicecontext"
	"github.com/fixthesign/fixthesign/internal/pkg/geocode"
	"github.com/fixthesign/fixthesign/internal/pkg/imagetools"
	"github.com/fixthesign/fixthesign/internal/pkg/overlay"
	"github.com/fixthesign/fixthesign/internal/pkg/pipeline"
	"github.com/fixthesign/fixthesign/internal/pkg/viewmodel"
)

// A chosen location further than this from the photo's EXIF position gets
// flagged in the response.
const locationWarnMeters = 1000

var imageHTTPClient = &http.Client{
	Timeout: 15 * time.Second,
}

// HandleReports renders the device's report list with the add-by-UUID form.
func HandleReports(c *fiber.Ctx) error {
	rc := deviceCache(c)
	if err := rc.Refresh(c.Context()); err != nil {
		log.Warnf("Could not refresh reports: %v", err)
		fm := fiber.Map{"type": "error", "message": "Could not load the latest report status."}
		flash.WithError(c, fm)
	}

	return c.Render("reports", fiber.Map{
		"Page":    "reports",
		"Reports": viewmodel.NewReportList(rc.List()),
		"Msg":     flash.Get(c),
	}, "layouts/main")
}

// HandleReportsAdd registers a foreign report UUID with this device, so a
// report filed on another phone can be followed here.
func HandleReportsAdd(c *fiber.Ctx) error {
	id := c.FormValue("uuid")
	if _, err := uuid.Parse(id); err != nil {
		fm := fiber.Map{"type": "error", "message": "That is not a valid report ID."}
		return flash.WithError(c, fm).Redirect(constants.ReportsRoute)
	}

	if err := deviceIndex(c).Add(id); err != nil {
		log.Errorf("Could not add report %s to index: %v", id, err)
		fm := fiber.Map{"type": "error", "message": "Could not save the report ID."}
		return flash.WithError(c, fm).Redirect(constants.ReportsRoute)
	}

	fm := fiber.Map{"type": "success", "message": "Report added."}
	return flash.WithSuccess(c, fm).Redirect(constants.ReportsRoute)
}

// HandleReportDetail renders one report with its analysis result and map.
func HandleReportDetail(c *fiber.Ctx) error {
	id := c.Params("uuid")
	if _, err := uuid.Parse(id); err != nil {
		fm := fiber.Map{"type": "error", "message": "Unknown report ID."}
		return flash.WithError(c, fm).Redirect(constants.ReportsRoute)
	}

	rec, err := deviceCache(c).GetByUUID(c.Context(), id)
	if err != nil {
		log.Warnf("Could not resolve report %s: %v", id, err)
		fm := fiber.Map{"type": "error", "message": "Could not load the report. Please try again."}
		return flash.WithError(c, fm).Redirect(constants.ReportsRoute)
	}
	if rec == nil {
		fm := fiber.Map{"type": "error", "message": "Unknown report ID."}
		return flash.WithError(c, fm).Redirect(constants.ReportsRoute)
	}

	return c.Render("report_detail", fiber.Map{
		"Page":   "reports",
		"Report": viewmodel.NewReport(*rec),
		"Msg":    flash.Get(c),
	}, "layouts/main")
}

// HandleReportMap serves the static location map for a report.
func HandleReportMap(c *fiber.Ctx) error {
	id := c.Params("uuid")
	if _, err := uuid.Parse(id); err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}

	rec, err := deviceCache(c).GetByUUID(c.Context(), id)
	if err != nil || rec == nil {
		return c.SendStatus(fiber.StatusNotFound)
	}

	raw, err := mapRender.Render(c.Context(), rec.Location, 0)
	if err != nil {
		log.Errorf("Could not render map for report %s: %v", rec.ReportUUID, err)
		return c.SendStatus(fiber.StatusBadGateway)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(raw)
}

// HandleReportAnnotated serves the report photo with the assessed sign
// boxes drawn on it.
func HandleReportAnnotated(c *fiber.Ctx) error {
	id := c.Params("uuid")
	if _, err := uuid.Parse(id); err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}

	rec, err := deviceCache(c).GetByUUID(c.Context(), id)
	if err != nil || rec == nil {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if !rec.IsProcessed() || rec.ImageURL == "" {
		return c.SendStatus(fiber.StatusNotFound)
	}

	data, err := fetchImage(rec.ImageURL)
	if err != nil {
		log.Errorf("Could not fetch photo for report %s: %v", rec.ReportUUID, err)
		return c.SendStatus(fiber.StatusBadGateway)
	}

	img, err := imagetools.Decode(data)
	if err != nil {
		return c.SendStatus(fiber.StatusBadGateway)
	}

	annotated, err := imagetools.EncodePNG(overlay.AnnotateSigns(img, rec.Objects))
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(annotated)
}

type submitReportRequest struct {
	DraftID     string   `json:"draft_id"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
}

// HandleAPIReportSubmit runs the submission pipeline for a captured draft.
// Preconditions are checked before any network traffic starts.
func HandleAPIReportSubmit(c *fiber.Ctx) error {
	var req submitReportRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	draft, err := drafts.Get(req.DraftID)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "draft not found")
	}
	if draft.DeviceID != devicecontext.GetDeviceID(c) {
		return jsonError(c, fiber.StatusNotFound, "draft not found")
	}
	if !draft.HasImage() {
		return jsonError(c, fiber.StatusBadRequest, "no photo captured")
	}
	if req.Lat == nil || req.Lng == nil {
		return jsonError(c, fiber.StatusBadRequest, "no location chosen")
	}

	if err := drafts.SetLocation(draft, *req.Lat, *req.Lng); err != nil {
		log.Errorf("Could not store draft location: %v", err)
	}

	address := req.Address
	if address == "" {
		// Best effort, the report is fine without an address.
		if resolved, err := geocoder.Reverse(c.Context(), models.Location{Lat: *req.Lat, Lng: *req.Lng}); err == nil {
			address = resolved
		}
	}
	if err := drafts.SetDetails(draft, req.Description, address); err != nil {
		log.Errorf("Could not store draft details: %v", err)
	}

	locationWarning := false
	if gps, ok := imagetools.ExtractGPS(draft.Image); ok {
		chosen := models.Location{Lat: *req.Lat, Lng: *req.Lng}
		if !geocode.WithinMeters(gps, chosen, locationWarnMeters) {
			locationWarning = true
			log.Warnf("Draft %s: chosen location is %.0fm from the photo position",
				draft.ID, geocode.DistanceMeters(gps, chosen))
		}
	}

	submitReq := pipeline.Request{
		ImageData:   draft.Image,
		ContentType: draft.ContentType,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		Description: req.Description,
		Address:     address,
	}

	resp, err := submitter.Submit(c.Context(), submitReq, func(percent int) {
		log.Debugf("Draft %s submission progress: %d%%", draft.ID, percent)
	})
	if err != nil {
		log.Errorf("Submission for draft %s failed: %v", draft.ID, err)
		return jsonError(c, fiber.StatusBadGateway, fmt.Sprintf("submission failed: %v", err))
	}

	if err := deviceIndex(c).Add(resp.ReportUUID); err != nil {
		log.Errorf("Could not index report %s: %v", resp.ReportUUID, err)
	}
	if err := drafts.Transition(draft, capture.StateSubmitted); err != nil {
		log.Warnf("Could not finalize draft %s: %v", draft.ID, err)
	}

	result := fiber.Map{
		"message":     resp.Message,
		"report_uuid": resp.ReportUUID,
		"status":      resp.Status,
	}
	if locationWarning {
		result["location_warning"] = true
	}
	return c.JSON(result)
}

func fetchImage(url string) ([]byte, error) {
	resp, err := imageHTTPClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
