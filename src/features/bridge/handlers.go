package bridge

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the bridge feature.
type Handler struct {
	service  *Service
	resolver *Resolver
}

// NewHandler creates a new handler for the bridge feature. The resolver may
// be nil when duration probing is disabled.
func NewHandler(service *Service, resolver *Resolver) *Handler {
	return &Handler{service: service, resolver: resolver}
}

// GetProgress is the handler for reading playback progress.
func (h *Handler) GetProgress(c *fiber.Ctx) error {
	progress := h.service.Progress()
	return c.JSON(fiber.Map{
		"position": progress.Position.Seconds(),
		"duration": progress.Duration.Seconds(),
	})
}

// SetPosition is the handler for seeking within the current track.
func (h *Handler) SetPosition(c *fiber.Ctx) error {
	var body struct {
		Seconds float64 `json:"seconds"`
	}
	if err := c.BodyParser(&body); err != nil || body.Seconds < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	h.service.Seek(time.Duration(body.Seconds * float64(time.Second)))
	return c.JSON(fiber.Map{"applied": true})
}

// GetDurations is the handler for reading background-resolved track durations.
func (h *Handler) GetDurations(c *fiber.Ctx) error {
	if h.resolver == nil {
		return c.JSON(fiber.Map{})
	}
	return c.JSON(h.resolver.All())
}
