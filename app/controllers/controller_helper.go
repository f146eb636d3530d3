package controllers

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/fixthesign/fixthesign/internal/pkg/cache"
	"github.com/fixthesign/fixthesign/internal/pkg/capture"
	"github.com/fixthesign/fixthesign/internal/pkg/devicecontext"
	"github.com/fixthesign/fixthesign/internal/pkg/env"
	"github.com/fixthesign/fixthesign/internal/pkg/geocode"
	"github.com/fixthesign/fixthesign/internal/pkg/keyval"
	"github.com/fixthesign/fixthesign/internal/pkg/pipeline"
	"github.com/fixthesign/fixthesign/internal/pkg/predict"
	"github.com/fixthesign/fixthesign/internal/pkg/reportapi"
	"github.com/fixthesign/fixthesign/internal/pkg/reportcache"
	"github.com/fixthesign/fixthesign/internal/pkg/reportindex"
	"github.com/fixthesign/fixthesign/internal/pkg/staticmap"
)

// Services shared by all controllers, set up once at boot.
var (
	store      keyval.Store
	drafts     *capture.Manager
	reports    *reportapi.Client
	submitter  *pipeline.Submitter
	detector   *predict.DetectionClient
	classifier *predict.DamageClient
	geocoder   *geocode.Client
	mapRender  *staticmap.Renderer

	// One report cache per device, lazily created.
	deviceCaches *sync.Map
)

// InitializeControllers wires the controllers against their backends from
// the environment.
func InitializeControllers() {
	store = newStore()
	drafts = capture.NewManager(store)

	reports = reportapi.NewClient(env.GetEnv("REPORT_API_URL", "http://localhost:8080"))
	submitter = pipeline.NewSubmitter(reports)

	detector = predict.NewDetectionClient(env.GetEnv("DETECT_API_URL", "http://localhost:8001"))
	classifier = predict.NewDamageClient(env.GetEnv("DAMAGE_API_URL", "http://localhost:8002"))

	geocoder = geocode.NewClient(env.GetEnv("NOMINATIM_URL", ""))
	mapRender = staticmap.NewRenderer(env.GetEnv("TILE_SERVER_URL", ""))

	deviceCaches = &sync.Map{}
}

// newStore selects the key-value backend for drafts and report indexes.
func newStore() keyval.Store {
	switch driver := env.GetEnv("STORAGE_DRIVER", "redis"); driver {
	case "memory":
		return keyval.NewMemory()
	case "file":
		return keyval.NewFile(env.GetEnv("STORAGE_FILE", "./fixthesign.json"))
	case "redis":
		return keyval.NewRedis(cache.GetClient())
	default:
		log.Warnf("Unknown STORAGE_DRIVER %q, falling back to memory", driver)
		return keyval.NewMemory()
	}
}

// deviceIndex returns the report index scoped to the requesting device.
func deviceIndex(c *fiber.Ctx) *reportindex.Index {
	return reportindex.New(store, devicecontext.GetDeviceID(c))
}

// deviceCache returns the report cache scoped to the requesting device.
func deviceCache(c *fiber.Ctx) *reportcache.Cache {
	deviceID := devicecontext.GetDeviceID(c)
	if cached, ok := deviceCaches.Load(deviceID); ok {
		return cached.(*reportcache.Cache)
	}
	rc := reportcache.New(reports, deviceIndex(c))
	actual, _ := deviceCaches.LoadOrStore(deviceID, rc)
	return actual.(*reportcache.Cache)
}

// jsonError writes the uniform API error shape.
func jsonError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
