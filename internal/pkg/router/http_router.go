package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixthesign/fixthesign/app/controllers"
	"github.com/fixthesign/fixthesign/internal/pkg/constants"
	"github.com/fixthesign/fixthesign/internal/pkg/middleware"
	"github.com/fixthesign/fixthesign/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply DeviceContext middleware globally as first middleware
	app.Use(middleware.DeviceContextMiddleware)

	// Wire controllers against their backends
	controllers.InitializeControllers()

	h.registerPublicRoutes(app)
}

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/", controllers.HandleStart)
	app.Get(constants.HomeRoute, controllers.HandleHome)

	// Capture flow pages
	app.Get(constants.SendReportRoute, controllers.HandleSendReport)
	app.Get(constants.ReportSuccessRoute, controllers.HandleReportSuccess)

	// Report pages
	app.Get(constants.ReportsRoute, controllers.HandleReports)
	app.Post(constants.ReportsRoute+"/add", controllers.HandleReportsAdd)
	app.Get(constants.ReportsRoute+"/:uuid/map.png", controllers.HandleReportMap)
	app.Get(constants.ReportsRoute+"/:uuid/annotated.png", controllers.HandleReportAnnotated)
	app.Get(constants.ReportsRoute+"/:uuid", controllers.HandleReportDetail)

	// ML demo page
	app.Get(constants.DemoRoute, controllers.HandleDemo)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
