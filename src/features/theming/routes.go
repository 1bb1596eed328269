package theming

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the theming feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Get("/theming/palette", handler.GetPalette)
}
