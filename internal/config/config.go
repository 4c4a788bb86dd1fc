// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Storage     StorageConfig     `toml:"storage"`
	Logging     LoggingConfig     `toml:"logging"`
	Sources     SourcesConfig     `toml:"sources"`
	Torrent     TorrentConfig     `toml:"torrent"`
	Encoder     EncoderConfig     `toml:"encoder"`
	Discovery   DiscoveryConfig   `toml:"discovery"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

// DatabaseConfig locates the per-category SQLite files.
// books.db, audiobooks.db, movies.db and portal.db live under Dir.
type DatabaseConfig struct {
	Dir string `toml:"dir"`
}

type StorageConfig struct {
	UploadsDir      string `toml:"uploads_dir"`
	TempTorrentsDir string `toml:"temp_torrents_dir"`
}

type LoggingConfig struct {
	Dir string `toml:"dir"`
}

type SourcesConfig struct {
	FlibustaURL string        `toml:"flibusta_url"`
	AudiobooURL string        `toml:"audioboo_url"`
	KinorushURL string        `toml:"kinorush_url"`
	CacheTTL    time.Duration `toml:"cache_ttl"`
	Timeout     time.Duration `toml:"timeout"`
}

type TorrentConfig struct {
	Backend      string             `toml:"backend"`
	Timeout      time.Duration      `toml:"timeout"`
	StallTimeout time.Duration      `toml:"stall_timeout"`
	PollInterval time.Duration      `toml:"poll_interval"`
	QBittorrent  *QBittorrentConfig `toml:"qbittorrent"`
	Rain         *RainConfig        `toml:"rain"`
}

type QBittorrentConfig struct {
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type RainConfig struct {
	URL     string `toml:"url"`
	DataDir string `toml:"data_dir"`
}

type EncoderConfig struct {
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
}

type DiscoveryConfig struct {
	SettingsPath  string        `toml:"settings_path"`
	Tick          time.Duration `toml:"tick"`
	DisabledSleep time.Duration `toml:"disabled_sleep"`
	MaxAttempts   int           `toml:"max_attempts"`
	Categories    []string      `toml:"categories"`
}

type MaintenanceConfig struct {
	TempCleanupInterval time.Duration `toml:"temp_cleanup_interval"`
	TempMaxAge          time.Duration `toml:"temp_max_age"`
	EventRetention      time.Duration `toml:"event_retention"`
}

// Torrent backends.
const (
	BackendQBittorrent = "qbittorrent"
	BackendRain        = "rain"
)

// Load reads, parses, and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file
// without validating it. Unresolved environment variables are left as-is.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []MissingVar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, missing, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8585
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Dir == "" {
		c.Database.Dir = "./data"
	}
	if c.Storage.UploadsDir == "" {
		c.Storage.UploadsDir = "./uploads"
	}
	if c.Storage.TempTorrentsDir == "" {
		c.Storage.TempTorrentsDir = "./temp_torrents"
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = "./logs"
	}

	if c.Sources.FlibustaURL == "" {
		c.Sources.FlibustaURL = "http://flibusta.is"
	}
	if c.Sources.AudiobooURL == "" {
		c.Sources.AudiobooURL = "https://audioboo.org"
	}
	if c.Sources.KinorushURL == "" {
		c.Sources.KinorushURL = "https://kinorush.online"
	}
	c.Sources.FlibustaURL = strings.TrimRight(c.Sources.FlibustaURL, "/")
	c.Sources.AudiobooURL = strings.TrimRight(c.Sources.AudiobooURL, "/")
	c.Sources.KinorushURL = strings.TrimRight(c.Sources.KinorushURL, "/")
	if c.Sources.CacheTTL == 0 {
		c.Sources.CacheTTL = 10 * time.Minute
	}
	if c.Sources.Timeout == 0 {
		c.Sources.Timeout = 15 * time.Second
	}

	if c.Torrent.Backend == "" {
		c.Torrent.Backend = BackendQBittorrent
	}
	if c.Torrent.Timeout == 0 {
		c.Torrent.Timeout = 2 * time.Hour
	}
	if c.Torrent.StallTimeout == 0 {
		c.Torrent.StallTimeout = 3 * time.Minute
	}
	if c.Torrent.PollInterval == 0 {
		c.Torrent.PollInterval = 2 * time.Second
	}
	if c.Torrent.Backend == BackendQBittorrent && c.Torrent.QBittorrent == nil {
		c.Torrent.QBittorrent = &QBittorrentConfig{URL: "http://localhost:8080", Username: "admin"}
	}

	if c.Encoder.FFmpegPath == "" {
		c.Encoder.FFmpegPath = "ffmpeg"
	}
	if c.Encoder.FFprobePath == "" {
		c.Encoder.FFprobePath = "ffprobe"
	}

	if c.Discovery.SettingsPath == "" {
		c.Discovery.SettingsPath = "./data/download_settings.json"
	}
	if c.Discovery.Tick == 0 {
		c.Discovery.Tick = 10 * time.Second
	}
	if c.Discovery.DisabledSleep == 0 {
		c.Discovery.DisabledSleep = 10 * time.Minute
	}
	if c.Discovery.MaxAttempts == 0 {
		c.Discovery.MaxAttempts = 3
	}
	if len(c.Discovery.Categories) == 0 {
		c.Discovery.Categories = []string{"books", "audiobooks", "movies"}
	}

	if c.Maintenance.TempCleanupInterval == 0 {
		c.Maintenance.TempCleanupInterval = 30 * time.Minute
	}
	if c.Maintenance.TempMaxAge == 0 {
		c.Maintenance.TempMaxAge = 6 * time.Hour
	}
	if c.Maintenance.EventRetention == 0 {
		c.Maintenance.EventRetention = 30 * 24 * time.Hour
	}
}

var (
	// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
	envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

	tableHeader = regexp.MustCompile(`^\s*\[\s*([A-Za-z0-9_.\-]+)\s*\]`)
	keyAssign   = regexp.MustCompile(`^\s*([A-Za-z0-9_\-]+)\s*=`)
)

// substituteEnvVars replaces environment variable references line by line and
// reports the ones it could not resolve, tagged with the dotted key that holds
// them. Unresolved references are left unchanged. Comment lines are skipped.
func substituteEnvVars(content string) (string, []MissingVar) {
	var (
		missing []MissingVar
		table   string
	)
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		if m := tableHeader.FindStringSubmatch(line); m != nil {
			table = m[1]
			continue
		}
		if !strings.Contains(line, "${") {
			continue
		}

		var key string
		if m := keyAssign.FindStringSubmatch(line); m != nil {
			key = m[1]
			if table != "" {
				key = table + "." + key
			}
		}
		lines[i] = envVarPattern.ReplaceAllStringFunc(line, func(match string) string {
			parts := envVarPattern.FindStringSubmatch(match)
			name, op, arg := parts[1], parts[2], parts[3]
			value, ok := os.LookupEnv(name)

			switch op {
			case ":-":
				if !ok || value == "" {
					return arg
				}
			case ":?":
				if !ok || value == "" {
					missing = append(missing, MissingVar{Name: name, Key: key, Message: arg})
					return match
				}
			default:
				if !ok {
					missing = append(missing, MissingVar{Name: name, Key: key})
					return match
				}
			}
			return value
		})
	}
	return strings.Join(lines, "\n"), missing
}
