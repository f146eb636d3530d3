package controllers

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/fixthesign/fixthesign/internal/pkg/capture"
	"github.com/fixthesign/fixthesign/internal/pkg/constants"
	"github.com/fixthesign/fixthesign/internal/pkg/devicecontext"
	"github.com/fixthesign/fixthesign/internal/pkg/imagetools"
	"github.com/fixthesign/fixthesign/internal/pkg/session"
	"github.com/fixthesign/fixthesign/internal/pkg/upload"
)

// The visitor session remembers the device's in-flight draft so a page
// reload resumes it instead of throwing away a captured photo. The session
// expiry doubles as the lifetime of that pointer.
const sessionDraftKey = "capture_draft_id"

// HandleSendReport renders the capture page. An in-flight draft from the
// visitor's session is resumed when one survives; otherwise a fresh draft
// is started so the page can drive the camera flow against the API.
func HandleSendReport(c *fiber.Ctx) error {
	deviceID := devicecontext.GetDeviceID(c)

	draft := resumeDraft(c, deviceID)
	if draft == nil {
		var err error
		draft, err = drafts.Begin(deviceID)
		if err != nil {
			log.Errorf("Could not start capture draft: %v", err)
			fm := fiber.Map{"type": "error", "message": "Could not start a new report. Please try again."}
			return flash.WithError(c, fm).Redirect(constants.HomeRoute)
		}
	}
	rememberDraft(c, draft.ID)

	return c.Render("send_report", fiber.Map{
		"Page":    "send-report",
		"DraftID": draft.ID,
		"State":   string(draft.State),
		"Msg":     flash.Get(c),
	}, "layouts/main")
}

// HandleReportSuccess renders the confirmation page after a submission.
func HandleReportSuccess(c *fiber.Ctx) error {
	return c.Render("report_success", fiber.Map{
		"Page":       "report-success",
		"ReportUUID": c.Query("uuid"),
		"Msg":        flash.Get(c),
	}, "layouts/main")
}

// HandleAPICaptureBegin starts a draft for the device. When a photo is
// attached (camera capture or the file-upload fallback) the draft jumps
// straight to captured and the response carries the brightness verdict and
// any EXIF GPS prefill.
func HandleAPICaptureBegin(c *fiber.Ctx) error {
	deviceID := devicecontext.GetDeviceID(c)

	draft, err := drafts.Begin(deviceID)
	if err != nil {
		log.Errorf("Could not begin draft for device %s: %v", deviceID, err)
		return jsonError(c, fiber.StatusInternalServerError, "could not start draft")
	}
	rememberDraft(c, draft.ID)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		// No photo yet, the page will stream the camera first.
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"draft_id": draft.ID,
			"state":    string(draft.State),
		})
	}

	data, contentType, err := readUpload(fileHeader)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	img, err := imagetools.Decode(data)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "unsupported image format")
	}

	if err := drafts.AttachImage(draft, data, contentType); err != nil {
		log.Errorf("Could not attach image to draft %s: %v", draft.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "could not store photo")
	}

	resp := fiber.Map{
		"draft_id":   draft.ID,
		"state":      string(draft.State),
		"brightness": imagetools.AnalyzeBrightness(img).Status,
	}
	if loc, ok := imagetools.ExtractGPS(data); ok {
		resp["gps"] = loc
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

type captureStateRequest struct {
	State     string `json:"state"`
	ErrorName string `json:"error_name"`
}

// HandleAPICaptureState applies a state transition reported by the capture
// page, including failed camera acquisition.
func HandleAPICaptureState(c *fiber.Ctx) error {
	draft, err := deviceDraft(c)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "draft not found")
	}

	var req captureStateRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	next := capture.State(req.State)
	if !next.Valid() {
		return jsonError(c, fiber.StatusBadRequest, "unknown state")
	}

	if next == capture.StatePermissionDenied {
		reason := capture.ReasonFromBrowserError(req.ErrorName)
		if err := drafts.Deny(draft, reason); err != nil {
			return jsonError(c, fiber.StatusConflict, err.Error())
		}
		return c.JSON(fiber.Map{
			"state":  string(draft.State),
			"reason": string(reason),
		})
	}

	if err := drafts.Transition(draft, next); err != nil {
		return jsonError(c, fiber.StatusConflict, err.Error())
	}
	return c.JSON(fiber.Map{
		"state": string(draft.State),
	})
}

type captureRotateRequest struct {
	Turns int `json:"turns"`
}

// HandleAPICaptureRotate rotates the captured photo in quarter turns.
func HandleAPICaptureRotate(c *fiber.Ctx) error {
	draft, err := deviceDraft(c)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "draft not found")
	}
	if !draft.HasImage() {
		return jsonError(c, fiber.StatusBadRequest, "no photo captured yet")
	}

	var req captureRotateRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	img, err := imagetools.Decode(draft.Image)
	if err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "stored photo is unreadable")
	}

	rotated, err := imagetools.EncodeJPEG(imagetools.RotateQuarters(img, req.Turns))
	if err != nil {
		log.Errorf("Could not encode rotated photo for draft %s: %v", draft.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "could not rotate photo")
	}

	if err := drafts.ReplaceImage(draft, rotated, "image/jpeg"); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "could not store rotated photo")
	}
	return c.JSON(fiber.Map{
		"state":        string(draft.State),
		"content_type": draft.ContentType,
	})
}

// HandleAPICaptureBrightness returns the brightness verdict for the
// captured photo.
func HandleAPICaptureBrightness(c *fiber.Ctx) error {
	draft, err := deviceDraft(c)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "draft not found")
	}
	if !draft.HasImage() {
		return jsonError(c, fiber.StatusBadRequest, "no photo captured yet")
	}

	img, err := imagetools.Decode(draft.Image)
	if err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "stored photo is unreadable")
	}

	analysis := imagetools.AnalyzeBrightness(img)
	return c.JSON(fiber.Map{
		"status": analysis.Status,
		"mean":   analysis.Mean,
		"std":    analysis.Std,
	})
}

// deviceDraft loads the draft from the :id param and verifies it belongs
// to the requesting device.
// resumeDraft looks up the draft remembered in the visitor's session and
// returns it when it still belongs to the device and has not finished.
func resumeDraft(c *fiber.Ctx, deviceID string) *capture.Draft {
	id := session.GetSessionValue(c, sessionDraftKey)
	if id == "" {
		return nil
	}
	draft, err := drafts.Get(id)
	if err != nil || draft.DeviceID != deviceID {
		return nil
	}
	// A denied draft is not worth resuming; let the page start over.
	if draft.State.Terminal() || draft.State == capture.StatePermissionDenied {
		return nil
	}
	return draft
}

func rememberDraft(c *fiber.Ctx, draftID string) {
	if err := session.SetSessionValue(c, sessionDraftKey, draftID); err != nil {
		log.Warnf("Could not remember draft %s in session: %v", draftID, err)
	}
}

func deviceDraft(c *fiber.Ctx) (*capture.Draft, error) {
	draft, err := drafts.Get(c.Params("id"))
	if err != nil {
		return nil, err
	}
	if draft.DeviceID != devicecontext.GetDeviceID(c) {
		return nil, capture.ErrNoDraft
	}
	return draft, nil
}

// readUpload pulls the bytes and content type out of a multipart file.
func readUpload(fileHeader *multipart.FileHeader) ([]byte, string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", errors.New("empty upload")
	}

	contentType, err := upload.ValidateImageBySniff(fileHeader.Filename, data)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}
