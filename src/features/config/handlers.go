package config

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the config feature.
type Handler struct {
	configManager *Manager
}

// NewHandler creates a new handler for the config feature.
func NewHandler(configManager *Manager) *Handler {
	return &Handler{configManager: configManager}
}

// GetConfig returns the running configuration with secrets redacted.
func (h *Handler) GetConfig(c *fiber.Ctx) error {
	c.Set("Content-Type", "application/json")
	return c.SendString(h.configManager.GetJSON())
}

// UpdateConfig replaces the runtime-tunable parts of the configuration.
// Server settings are preserved; changing the port at runtime makes no sense.
func (h *Handler) UpdateConfig(c *fiber.Ctx) error {
	slog.Info("Configuration update requested")

	current := h.configManager.Get()
	newConfig := *current
	if err := c.BodyParser(&newConfig); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	newConfig.Server = current.Server
	newConfig.Database = current.Database

	h.configManager.Update(&newConfig)
	slog.Info("Configuration updated in memory")

	if err := h.configManager.Save("config.yaml"); err != nil {
		slog.Warn("failed to save config to file (this is normal in containerized environments)", "error", err)
	}

	c.Set("Content-Type", "application/json")
	return c.SendString(h.configManager.GetJSON())
}
