package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Memory and file deployments have no redis server, so the store must come
// up without one and still hold values across requests.
func TestSessionStoreWithoutRedis(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	store := NewSessionStore()
	require.NotNil(t, store)

	app := fiber.New()
	app.Get("/set", func(c *fiber.Ctx) error {
		require.NoError(t, SetSessionValue(c, "draft", "d-1"))
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/get", func(c *fiber.Ctx) error {
		return c.SendString(GetSessionValue(c, "draft"))
	})

	set, err := app.Test(httptest.NewRequest(http.MethodGet, "/set", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, set.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	for _, ck := range set.Cookies() {
		req.AddCookie(ck)
	}
	got, err := app.Test(req)
	require.NoError(t, err)

	body := make([]byte, 8)
	n, _ := got.Body.Read(body)
	assert.Equal(t, "d-1", string(body[:n]))
}

func TestGetSessionValueMissingKey(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	NewSessionStore()

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetSessionValue(c, "nothing"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	body := make([]byte, 8)
	n, _ := resp.Body.Read(body)
	assert.Empty(t, string(body[:n]))
}
