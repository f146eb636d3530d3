package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/fixthesign/fixthesign/app/models"
)

// HandleAPIGeocodeReverse resolves a picked coordinate to an address for
// the location form. An empty address is a valid answer.
func HandleAPIGeocodeReverse(c *fiber.Ctx) error {
	lat := c.QueryFloat("lat", 1000)
	lng := c.QueryFloat("lng", 1000)
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return jsonError(c, fiber.StatusBadRequest, "invalid coordinates")
	}

	address, err := geocoder.Reverse(c.Context(), models.Location{Lat: lat, Lng: lng})
	if err != nil {
		log.Warnf("Reverse geocoding failed: %v", err)
		return jsonError(c, fiber.StatusBadGateway, "reverse geocoding failed")
	}

	return c.JSON(fiber.Map{
		"address": address,
	})
}
