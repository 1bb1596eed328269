package config

// Config holds the application configuration.
type Config struct {
	LibraryPath  string       `yaml:"libraryPath" validate:"required"`
	Logger       Logger       `yaml:"logger"`
	Server       Server       `yaml:"server"`
	Database     Database     `yaml:"database"`
	DataService  DataService  `yaml:"dataService"`
	Session      Session      `yaml:"session"`
	Audio        Audio        `yaml:"audio"`
	MediaSession MediaSession `yaml:"mediaSession"`
	Theming      Theming      `yaml:"theming"`
	Telegram     Telegram     `yaml:"telegram"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// Server holds the configuration for the Fiber server
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}

// Database holds the configuration for the local sqlite database
type Database struct {
	Path string `yaml:"path" validate:"required"`
}

// DataService selects and configures the remote data service backend.
// Mode "sqlite" keeps everything local; mode "rest" talks to a hosted BaaS.
type DataService struct {
	Mode   string `yaml:"mode" validate:"oneof=sqlite rest"`
	URL    string `yaml:"url,omitempty"`
	APIKey string `yaml:"api_key,omitempty"`
	UserID string `yaml:"user_id"`
}

// Session holds the configuration for playback session persistence
type Session struct {
	StatePath string `yaml:"state_path"`
}

// Audio holds the configuration for the audio output device
type Audio struct {
	BufferMillis    int     `yaml:"buffer_ms"`
	Volume          float64 `yaml:"volume"`
	ProbeDurations  bool    `yaml:"probe_durations"`
	ProbeIntervalMS int     `yaml:"probe_interval_ms"`
}

// MediaSession holds the configuration for the OS media-control surface
type MediaSession struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
}

// Theming holds the configuration for artwork color extraction
type Theming struct {
	CacheSize int `yaml:"cache_size"`
}

type Telegram struct {
	Enabled      bool     `yaml:"enabled"`
	Token        string   `yaml:"token"`
	AllowedUsers []string `yaml:"allowedUsers"`
}
