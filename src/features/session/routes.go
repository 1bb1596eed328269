package session

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anven/resona/src/music"
)

// RegisterRoutes registers the routes for the session feature.
func RegisterRoutes(app *fiber.App, service *Service, catalog music.Catalog) {
	handler := NewHandler(service, catalog)

	sess := app.Group("/session")
	sess.Get("/", handler.GetSession)
	sess.Put("/track", handler.SetTrack)
	sess.Put("/playing", handler.SetPlaying)
	sess.Put("/queue", handler.SetQueue)
	sess.Put("/expanded", handler.SetExpanded)
	sess.Post("/next", handler.Next)
	sess.Post("/previous", handler.Previous)
}
