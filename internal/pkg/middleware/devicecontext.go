package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fixthesign/fixthesign/internal/pkg/devicecontext"
	"github.com/fixthesign/fixthesign/internal/pkg/env"
)

const deviceCookieMaxAge = 365 * 24 * time.Hour

// DeviceContextMiddleware assigns every visitor a stable device ID and
// exposes it via Locals. The ID lives in a long-lived cookie so the same
// browser keeps seeing its own reports.
func DeviceContextMiddleware(c *fiber.Ctx) error {
	deviceID := c.Cookies(devicecontext.CookieName)
	isNew := false

	if _, err := uuid.Parse(deviceID); err != nil {
		deviceID = uuid.NewString()
		isNew = true
	}

	c.Cookie(&fiber.Cookie{
		Name:     devicecontext.CookieName,
		Value:    deviceID,
		Expires:  time.Now().Add(deviceCookieMaxAge),
		HTTPOnly: true,
		Secure:   !env.IsDev(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	c.Locals(devicecontext.LocalsKey, devicecontext.DeviceContext{
		DeviceID: deviceID,
		IsNew:    isNew,
	})

	return c.Next()
}
