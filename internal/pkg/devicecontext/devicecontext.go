package devicecontext

import "github.com/gofiber/fiber/v2"

// Shared Locals/cookie keys used across controllers and middlewares
const (
	LocalsKey  = "DEVICE_CONTEXT"
	CookieName = "fts_device_id"
)

// DeviceContext identifies the reporting device for a request. There are
// no user accounts; the device ID scopes the report index and any capture
// draft.
type DeviceContext struct {
	DeviceID string `json:"device_id"`
	IsNew    bool   `json:"is_new"`
}

// GetDeviceContext retrieves the device context from fiber context.
// Returns an empty context if the middleware did not run.
func GetDeviceContext(c *fiber.Ctx) DeviceContext {
	if ctx := c.Locals(LocalsKey); ctx != nil {
		return ctx.(DeviceContext)
	}
	return DeviceContext{}
}

// GetDeviceID returns the current device's ID, or empty string if unset.
func GetDeviceID(c *fiber.Ctx) string {
	return GetDeviceContext(c).DeviceID
}
