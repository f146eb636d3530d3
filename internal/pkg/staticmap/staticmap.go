// Package staticmap composes OpenStreetMap tiles into a small location
// preview with a marker on the report position. Used for report detail
// pages and confirmation e-mails where an interactive map is overkill.
package staticmap

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"net/http"
	"time"

	"github.com/fogleman/gg"
	"github.com/gofiber/fiber/v2/log"

	"github.com/fixthesign/fixthesign/app/models"
	"github.com/fixthesign/fixthesign/internal/pkg/cache"
)

const (
	tileSize    = 256
	DefaultZoom = 16

	// One tile in every direction around the center tile, so the
	// rendered map is a 3x3 grid.
	gridRadius = 1

	tileCacheTTL       = 24 * time.Hour
	TileCacheKeyFormat = "staticmap:tile:%d:%d:%d"
)

// Nominatim and the OSM tile servers both require an identifying agent.
const userAgent = "FixTheSign/1.0"

// TileCache stores fetched tiles so repeat renders of the same area skip
// the tile server.
type TileCache interface {
	GetBytes(key string) ([]byte, error)
	Set(key string, value interface{}, expiration time.Duration) error
}

// redisTileCache backs the tile cache with the shared Redis cache.
type redisTileCache struct{}

func (redisTileCache) GetBytes(key string) ([]byte, error) { return cache.GetBytes(key) }
func (redisTileCache) Set(key string, value interface{}, expiration time.Duration) error {
	return cache.Set(key, value, expiration)
}

// Renderer fetches OSM tiles and draws marker maps from them.
type Renderer struct {
	baseURL    string
	httpClient *http.Client
	tiles      TileCache
}

// NewRenderer returns a renderer against the given tile server base URL.
// An empty base URL selects the public openstreetmap.org tile server with
// the shared Redis cache in front of it.
func NewRenderer(baseURL string) *Renderer {
	r := &Renderer{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
	if baseURL == "" {
		r.baseURL = "https://tile.openstreetmap.org"
		r.tiles = redisTileCache{}
	}
	return r
}

// WithTileCache replaces the tile cache. Passing nil disables caching.
func (r *Renderer) WithTileCache(c TileCache) *Renderer {
	r.tiles = c
	return r
}

// Render draws a PNG map centered on loc with a marker at the exact
// position.
func (r *Renderer) Render(ctx context.Context, loc models.Location, zoom int) ([]byte, error) {
	if zoom <= 0 {
		zoom = DefaultZoom
	}

	fx, fy := tileCoords(loc.Lat, loc.Lng, zoom)
	xMin := int(fx) - gridRadius
	yMin := int(fy) - gridRadius
	span := 2*gridRadius + 1

	dst := image.NewRGBA(image.Rect(0, 0, tileSize*span, tileSize*span))
	dc := gg.NewContextForRGBA(dst)

	for row := 0; row < span; row++ {
		for col := 0; col < span; col++ {
			img, err := r.fetchTile(ctx, xMin+col, yMin+row, zoom)
			if err != nil {
				return nil, err
			}
			dc.DrawImage(img, col*tileSize, row*tileSize)
		}
	}

	// Marker pin on the report position.
	ptX := (fx - float64(xMin)) * tileSize
	ptY := (fy - float64(yMin)) * tileSize
	dc.SetLineWidth(2)
	dc.SetRGBA255(255, 0, 0, 200)
	dc.NewSubPath()
	dc.DrawCircle(ptX, ptY, 15)
	dc.ClosePath()
	dc.FillPreserve()
	dc.SetRGBA255(233, 0, 0, 255)
	dc.Stroke()

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fetchTile returns one map tile, from the cache when possible.
func (r *Renderer) fetchTile(ctx context.Context, x, y, zoom int) (image.Image, error) {
	key := fmt.Sprintf(TileCacheKeyFormat, zoom, x, y)
	if r.tiles != nil {
		if raw, err := r.tiles.GetBytes(key); err == nil {
			if img, err := png.Decode(bytes.NewReader(raw)); err == nil {
				return img, nil
			}
		}
	}

	tileURL := fmt.Sprintf("%s/%d/%d/%d.png", r.baseURL, zoom, x, y)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch tile %d/%d/%d: %s", zoom, x, y, resp.Status)
	}

	img, err := png.Decode(resp.Body)
	if err != nil {
		return nil, err
	}

	if r.tiles != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err == nil {
			if err := r.tiles.Set(key, buf.Bytes(), tileCacheTTL); err != nil {
				log.Warnf("Could not cache map tile %s: %v", key, err)
			}
		}
	}

	return img, nil
}

// tileCoords converts a coordinate to fractional OSM tile indices.
func tileCoords(lat, lon float64, zoom int) (x, y float64) {
	n := math.Exp2(float64(zoom))
	x = (lon + 180.0) / 360.0 * n
	latRad := lat * math.Pi / 180.0
	y = (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n
	return
}

// tileLat converts a tile y index at a zoom level back to latitude.
func tileLat(y float64, zoom int) float64 {
	n := math.Exp2(float64(zoom))
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*y/n)))
	return latRad * 180 / math.Pi
}

// tileLon converts a tile x index at a zoom level back to longitude.
func tileLon(x float64, zoom int) float64 {
	n := math.Exp2(float64(zoom))
	return x/n*360.0 - 180.0
}
