package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/fixthesign/fixthesign/app/controllers"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	// Capture flow
	v1.Post("/capture", controllers.HandleAPICaptureBegin)
	v1.Post("/capture/:id/state", controllers.HandleAPICaptureState)
	v1.Post("/capture/:id/rotate", controllers.HandleAPICaptureRotate)
	v1.Get("/capture/:id/brightness", controllers.HandleAPICaptureBrightness)

	// Submission and helpers
	v1.Post("/reports", controllers.HandleAPIReportSubmit)
	v1.Get("/geocode", controllers.HandleAPIGeocodeReverse)

	// ML demo
	v1.Post("/demo", controllers.HandleAPIDemoAnalyze)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
