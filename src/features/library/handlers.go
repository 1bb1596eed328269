package library

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/anven/resona/src/music"
)

// Handler is the handler for the library feature.
type Handler struct {
	service *Service
	userID  string
}

// NewHandler creates a new handler for the library feature.
func NewHandler(service *Service, userID string) *Handler {
	return &Handler{service: service, userID: userID}
}

// GetLibrary is the handler for reading the library snapshot.
func (h *Handler) GetLibrary(c *fiber.Ctx) error {
	return c.JSON(h.service.Snapshot())
}

// RefreshLibrary is the handler for re-fetching the library from the data
// service.
func (h *Handler) RefreshLibrary(c *fiber.Ctx) error {
	if err := h.service.FetchLibrary(c.Context(), h.userID); err != nil {
		slog.Error("Error fetching library", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "error fetching library"})
	}
	return c.JSON(h.service.Snapshot())
}

// ToggleLike is the handler for flipping a track's liked state.
func (h *Handler) ToggleLike(c *fiber.Ctx) error {
	trackID := c.Params("trackID")
	result := h.service.ToggleLike(c.Context(), h.userID, trackID)
	return c.JSON(fiber.Map{
		"result": result.String(),
		"liked":  h.service.IsLiked(trackID),
	})
}

// AddToCollection is the handler for purchasing a track into the collection.
func (h *Handler) AddToCollection(c *fiber.Ctx) error {
	trackID := c.Params("trackID")
	result := h.service.AddToCollection(c.Context(), h.userID, trackID)
	return c.JSON(fiber.Map{
		"result": result.String(),
		"owned":  h.service.IsOwned(trackID),
	})
}

// CreatePlaylist is the handler for creating a playlist.
func (h *Handler) CreatePlaylist(c *fiber.Ctx) error {
	var body struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	playlist := h.service.CreatePlaylist(c.Context(), h.userID, body.Title)
	if playlist == nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "playlist not created"})
	}
	return c.Status(fiber.StatusCreated).JSON(playlist)
}

// UpdatePlaylist is the handler for patching playlist fields.
func (h *Handler) UpdatePlaylist(c *fiber.Ctx) error {
	var patch music.PlaylistPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	result := h.service.UpdatePlaylist(c.Context(), c.Params("id"), patch)
	return c.JSON(fiber.Map{"result": result.String()})
}

// DeletePlaylist is the handler for deleting a playlist.
func (h *Handler) DeletePlaylist(c *fiber.Ctx) error {
	result := h.service.DeletePlaylist(c.Context(), c.Params("id"))
	return c.JSON(fiber.Map{"result": result.String()})
}

// AddPlaylistTrack is the handler for adding a track to a playlist.
func (h *Handler) AddPlaylistTrack(c *fiber.Ctx) error {
	result := h.service.AddTrackToPlaylist(c.Context(), c.Params("id"), c.Params("trackID"))
	return c.JSON(fiber.Map{"result": result.String()})
}

// RemovePlaylistTrack is the handler for removing a track from a playlist.
func (h *Handler) RemovePlaylistTrack(c *fiber.Ctx) error {
	result := h.service.RemoveTrackFromPlaylist(c.Context(), c.Params("id"), c.Params("trackID"))
	return c.JSON(fiber.Map{"result": result.String()})
}
