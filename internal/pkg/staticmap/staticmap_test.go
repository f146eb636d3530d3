package staticmap

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixthesign/fixthesign/app/models"
)

// memoryTileCache is a TileCache for tests.
type memoryTileCache struct {
	mu    sync.Mutex
	tiles map[string][]byte
}

func newMemoryTileCache() *memoryTileCache {
	return &memoryTileCache{tiles: make(map[string][]byte)}
}

func (c *memoryTileCache) GetBytes(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.tiles[key]
	if !ok {
		return nil, fmt.Errorf("cache miss: %s", key)
	}
	return raw, nil
}

func (c *memoryTileCache) Set(key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tiles[key] = value.([]byte)
	return nil
}

func newTileServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, tileSize, tileSize))))
	tile := buf.Bytes()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "image/png")
		w.Write(tile)
	}))
}

func TestRenderComposesGrid(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	srv := newTileServer(t, &requests)
	defer srv.Close()

	r := NewRenderer(srv.URL).WithTileCache(nil)
	raw, err := r.Render(context.Background(), models.Location{Lat: 52.52, Lng: 13.405}, DefaultZoom)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 3*tileSize, img.Bounds().Dx())
	assert.Equal(t, 3*tileSize, img.Bounds().Dy())
	assert.EqualValues(t, 9, requests.Load())
}

func TestRenderUsesTileCache(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	srv := newTileServer(t, &requests)
	defer srv.Close()

	r := NewRenderer(srv.URL).WithTileCache(newMemoryTileCache())
	loc := models.Location{Lat: 48.1374, Lng: 11.5755}

	_, err := r.Render(context.Background(), loc, DefaultZoom)
	require.NoError(t, err)
	require.EqualValues(t, 9, requests.Load())

	// Second render of the same area is served entirely from the cache.
	_, err = r.Render(context.Background(), loc, DefaultZoom)
	require.NoError(t, err)
	assert.EqualValues(t, 9, requests.Load())
}

func TestRenderTileServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewRenderer(srv.URL).WithTileCache(nil)
	_, err := r.Render(context.Background(), models.Location{Lat: 1, Lng: 1}, DefaultZoom)
	assert.Error(t, err)
}

func TestTileCoordsRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lat, lng float64
	}{
		{"berlin", 52.52, 13.405},
		{"sydney", -33.8688, 151.2093},
		{"quito", -0.1807, -78.4678},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			x, y := tileCoords(tt.lat, tt.lng, DefaultZoom)
			assert.InDelta(t, tt.lat, tileLat(y, DefaultZoom), 1e-6)
			assert.InDelta(t, tt.lng, tileLon(x, DefaultZoom), 1e-6)
		})
	}
}

func TestTileCoordsOrigin(t *testing.T) {
	t.Parallel()

	// Lat/lng zero sits exactly in the middle of the tile grid.
	x, y := tileCoords(0, 0, 1)
	assert.InDelta(t, 1.0, x, 1e-9)
	assert.InDelta(t, 1.0, y, 1e-9)
}
