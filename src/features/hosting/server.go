package hosting

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anven/resona/src/features/bridge"
	"github.com/anven/resona/src/features/config"
	"github.com/anven/resona/src/features/library"
	"github.com/anven/resona/src/features/session"
	"github.com/anven/resona/src/features/theming"
	"github.com/anven/resona/src/music"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server and mounts every feature's routes.
func NewServer(cfg *config.Manager, catalog music.Catalog, sessionService *session.Service, bridgeService *bridge.Service, resolver *bridge.Resolver, libraryService *library.Service, themingService *theming.Service) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
		AppName:               "Resona",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	app.Use(LogAllRequestsMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	session.RegisterRoutes(app, sessionService, catalog)
	bridge.RegisterRoutes(app, bridgeService, resolver)
	library.RegisterRoutes(app, libraryService, cfg.Get().DataService.UserID)
	theming.RegisterRoutes(app, themingService)
	config.RegisterRoutes(app, cfg)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
