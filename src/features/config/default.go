package config

// createDefaultConfig creates a new Config with sensible default values
func createDefaultConfig() *Config {
	return &Config{
		LibraryPath: "./music",
		Logger: Logger{
			Enabled: true,
			Level:   "info",
			Format:  "text",
		},
		Server: Server{
			PrintRoutes: false,
			Port:        3636,
		},
		Database: Database{
			Path: "./resona.db",
		},
		DataService: DataService{
			Mode: "sqlite",
		},
		Session: Session{
			StatePath: "./session.json",
		},
		Audio: Audio{
			BufferMillis:    100,
			Volume:          1.0,
			ProbeDurations:  true,
			ProbeIntervalMS: 2000,
		},
		MediaSession: MediaSession{
			Enabled: true,
			Name:    "resona",
		},
		Theming: Theming{
			CacheSize: 128,
		},
		Telegram: Telegram{
			Enabled:      false,
			Token:        "", // Can be obtained with https://t.me/BotFather
			AllowedUsers: []string{"<your_telegram_username>"},
		},
	}
}
