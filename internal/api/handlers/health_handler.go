package handlers

import "github.com/gofiber/fiber/v2"

// RegisterHealthRoutes adds the liveness endpoint.
func RegisterHealthRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
