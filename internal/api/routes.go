package api

import (
	"github.com/gofiber/fiber/v2"

	"reframe/internal/api/handlers"
)

// NewServer builds the fiber app with all routes registered.
func NewServer(h *handlers.ReframeHandler) *fiber.App {
	app := fiber.New()

	handlers.RegisterHealthRoutes(app)
	handlers.RegisterReframeRoutes(app, h)

	return app
}
