package library

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the library feature.
func RegisterRoutes(app *fiber.App, service *Service, userID string) {
	handler := NewHandler(service, userID)

	lib := app.Group("/library")
	lib.Get("/", handler.GetLibrary)
	lib.Post("/refresh", handler.RefreshLibrary)
	lib.Post("/tracks/:trackID/like", handler.ToggleLike)
	lib.Post("/tracks/:trackID/collect", handler.AddToCollection)
	lib.Post("/playlists", handler.CreatePlaylist)
	lib.Patch("/playlists/:id", handler.UpdatePlaylist)
	lib.Delete("/playlists/:id", handler.DeletePlaylist)
	lib.Put("/playlists/:id/tracks/:trackID", handler.AddPlaylistTrack)
	lib.Delete("/playlists/:id/tracks/:trackID", handler.RemovePlaylistTrack)
}
