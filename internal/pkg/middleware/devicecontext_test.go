package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixthesign/fixthesign/internal/pkg/devicecontext"
)

func newDeviceApp() *fiber.App {
	app := fiber.New()
	app.Use(DeviceContextMiddleware)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(devicecontext.GetDeviceID(c))
	})
	return app
}

func deviceCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == devicecontext.CookieName {
			return c.Value
		}
	}
	return ""
}

func TestDeviceContextMiddlewareAssignsID(t *testing.T) {
	app := newDeviceApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	_, err = uuid.Parse(string(body))
	assert.NoError(t, err, "device ID should be a UUID")
	assert.Equal(t, string(body), deviceCookie(resp), "cookie must carry the same ID")
}

func TestDeviceContextMiddlewareKeepsExistingID(t *testing.T) {
	app := newDeviceApp()

	existing := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: devicecontext.CookieName, Value: existing})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, existing, string(body))
}

func TestDeviceContextMiddlewareReplacesGarbage(t *testing.T) {
	app := newDeviceApp()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: devicecontext.CookieName, Value: "not-a-uuid"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	_, err = uuid.Parse(string(body))
	assert.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", string(body))
}
