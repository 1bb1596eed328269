package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/anven/resona/src/features/bridge"
	"github.com/anven/resona/src/features/config"
	"github.com/anven/resona/src/features/hosting"
	"github.com/anven/resona/src/features/library"
	"github.com/anven/resona/src/features/logging"
	"github.com/anven/resona/src/features/mediasession"
	"github.com/anven/resona/src/features/session"
	"github.com/anven/resona/src/features/theming"
	"github.com/anven/resona/src/infra/artwork"
	"github.com/anven/resona/src/infra/audio"
	"github.com/anven/resona/src/infra/database"
	"github.com/anven/resona/src/infra/files"
	"github.com/anven/resona/src/infra/mpris"
	"github.com/anven/resona/src/infra/providers"
	"github.com/anven/resona/src/music"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := cfgManager.Get()

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	// Create the local track catalog and keep it in sync with the library
	// directory
	catalog, err := files.NewLocalCatalog(cfg.LibraryPath)
	if err != nil {
		log.Fatalf("failed to scan library: %v", err)
	}
	watcher, err := files.NewWatcher(catalog)
	if err != nil {
		slog.Error("Failed to watch library directory", "error", err)
	} else {
		watcher.Start()
		defer watcher.Stop()
	}

	// Pick the data service backend
	var dataService music.DataService
	switch cfg.DataService.Mode {
	case "rest":
		dataService = providers.NewRestDataService(cfg.DataService.URL, cfg.DataService.APIKey)
	default:
		db, err := database.NewSqliteDataService(cfg.Database.Path)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		dataService = db
	}

	// Create the playback session, restoring the last resumable context
	sessionService := session.NewService(session.NewStore(cfg.Session.StatePath))

	// Create the audio device and the bridge that keeps it in sync with
	// the session
	device, err := audio.NewDevice(cfg.Audio.BufferMillis, cfg.Audio.Volume)
	if err != nil {
		log.Fatalf("failed to open audio device: %v", err)
	}
	bridgeService := bridge.NewService(device, sessionService)
	bridgeService.Start()
	defer bridgeService.Stop()

	var resolver *bridge.Resolver
	if cfg.Audio.ProbeDurations {
		interval := time.Duration(cfg.Audio.ProbeIntervalMS) * time.Millisecond
		resolver = bridge.NewResolver(audio.NewProber(), sessionService, interval)
		resolver.Start()
		defer resolver.Stop()
	}

	// Create the library service and load the user's library
	libraryService := library.NewService(dataService)
	go func() {
		if err := libraryService.FetchLibrary(context.Background(), cfg.DataService.UserID); err != nil {
			slog.Error("Initial library fetch failed", "error", err)
		}
	}()

	artworkService := artwork.NewService()
	themingService := theming.NewService(artworkService, cfg.Theming.CacheSize)

	// Project the session onto the desktop media controls if enabled
	var surface mediasession.Surface
	if cfg.MediaSession.Enabled {
		surface, err = mpris.New(cfg.MediaSession.Name)
		if err != nil {
			slog.Warn("No media session surface available", "error", err)
			surface = nil
		}
	}
	reporter := mediasession.NewService(surface, sessionService, bridgeService, artworkService)
	reporter.Start()
	defer reporter.Stop()

	// Create and start the Telegram bot if enabled
	var telegramBot *hosting.TelegramBot
	if cfg.Telegram.Enabled {
		telegramBot, err = hosting.NewTelegramBot(cfgManager, sessionService, bridgeService, libraryService)
		if err != nil {
			slog.Error("Failed to initialize Telegram bot", "error", err)
		} else {
			go telegramBot.Start()
			slog.Info("Telegram bot started")
		}
	}

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, catalog, sessionService, bridgeService, resolver, libraryService, themingService)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfg.Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("Shutting down server...")

	if telegramBot != nil {
		telegramBot.Stop()
		slog.Info("Telegram bot stopped")
	}

	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}
