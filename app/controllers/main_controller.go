package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/fixthesign/fixthesign/internal/pkg/constants"
)

// HandleStart redirects the bare domain to the landing page.
func HandleStart(c *fiber.Ctx) error {
	return c.Redirect(constants.HomeRoute, fiber.StatusSeeOther)
}

// HandleHome renders the landing page with a small report summary.
func HandleHome(c *fiber.Ctx) error {
	index := deviceIndex(c)

	return c.Render("home", fiber.Map{
		"Page":        "home",
		"ReportCount": len(index.List()),
		"Msg":         flash.Get(c),
	}, "layouts/main")
}
