package bridge

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the bridge feature.
func RegisterRoutes(app *fiber.App, service *Service, resolver *Resolver) {
	handler := NewHandler(service, resolver)

	player := app.Group("/player")
	player.Get("/progress", handler.GetProgress)
	player.Put("/position", handler.SetPosition)
	player.Get("/durations", handler.GetDurations)
}
