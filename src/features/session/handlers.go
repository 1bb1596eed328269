package session

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/anven/resona/src/music"
)

// Handler is the handler for the session feature.
type Handler struct {
	service *Service
	catalog music.Catalog
}

// NewHandler creates a new handler for the session feature.
func NewHandler(service *Service, catalog music.Catalog) *Handler {
	return &Handler{service: service, catalog: catalog}
}

type snapshotResponse struct {
	CurrentTrack *music.Track   `json:"currentTrack"`
	IsPlaying    bool           `json:"isPlaying"`
	Queue        []*music.Track `json:"queue"`
	IsExpanded   bool           `json:"isExpanded"`
}

func toResponse(snap Snapshot) snapshotResponse {
	return snapshotResponse{
		CurrentTrack: snap.CurrentTrack,
		IsPlaying:    snap.IsPlaying,
		Queue:        snap.Queue,
		IsExpanded:   snap.IsExpanded,
	}
}

// GetSession is the handler for reading the current session snapshot.
func (h *Handler) GetSession(c *fiber.Ctx) error {
	return c.JSON(toResponse(h.service.Snapshot()))
}

// SetTrack is the handler for switching the current track. An empty track id
// clears the slot and stops playback.
func (h *Handler) SetTrack(c *fiber.Ctx) error {
	var body struct {
		TrackID string `json:"trackId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if body.TrackID == "" {
		h.service.SetCurrentTrack(nil)
		return c.JSON(toResponse(h.service.Snapshot()))
	}

	track, err := h.catalog.GetTrack(c.Context(), body.TrackID)
	if err != nil {
		slog.Error("Error loading track", "trackID", body.TrackID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "error loading track"})
	}
	if track == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "track not found"})
	}
	h.service.SetCurrentTrack(track)
	return c.JSON(toResponse(h.service.Snapshot()))
}

// SetPlaying is the handler for the play/pause toggle.
func (h *Handler) SetPlaying(c *fiber.Ctx) error {
	var body struct {
		Playing bool `json:"playing"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	h.service.SetIsPlaying(body.Playing)
	return c.JSON(toResponse(h.service.Snapshot()))
}

// SetQueue is the handler for replacing the play queue.
func (h *Handler) SetQueue(c *fiber.Ctx) error {
	var body struct {
		TrackIDs []string `json:"trackIds"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	tracks, err := h.catalog.GetTracksByIDs(c.Context(), body.TrackIDs)
	if err != nil {
		slog.Error("Error loading queue tracks", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "error loading tracks"})
	}
	h.service.SetQueue(tracks)
	return c.JSON(toResponse(h.service.Snapshot()))
}

// SetExpanded is the handler for the expanded-view flag.
func (h *Handler) SetExpanded(c *fiber.Ctx) error {
	var body struct {
		Expanded bool `json:"expanded"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	h.service.SetIsExpanded(body.Expanded)
	return c.JSON(toResponse(h.service.Snapshot()))
}

// Next is the handler for advancing to the next queue track.
func (h *Handler) Next(c *fiber.Ctx) error {
	applied := h.service.PlayNext()
	return c.JSON(fiber.Map{"applied": applied, "session": toResponse(h.service.Snapshot())})
}

// Previous is the handler for stepping back to the previous queue track.
func (h *Handler) Previous(c *fiber.Ctx) error {
	applied := h.service.PlayPrevious()
	return c.JSON(fiber.Map{"applied": applied, "session": toResponse(h.service.Snapshot())})
}
