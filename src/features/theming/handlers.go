package theming

import (
	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the theming feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the theming feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetPalette is the handler for extracting a dominant color palette from an
// artwork URL. Always answers 200 with at worst the fallback palette.
func (h *Handler) GetPalette(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url query parameter is required"})
	}
	return c.JSON(h.service.DominantColor(c.Context(), url))
}
