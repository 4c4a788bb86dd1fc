// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validBackends = map[string]bool{
	BackendQBittorrent: true, BackendRain: true,
}

var validCategories = map[string]bool{
	"books": true, "audiobooks": true, "movies": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Server validation
	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	// Storage validation. Maintenance deletes aged directories under the
	// temp root, so it must never be the library itself.
	if c.Storage.TempTorrentsDir != "" && filepath.Clean(c.Storage.TempTorrentsDir) == filepath.Clean(c.Storage.UploadsDir) {
		errs = append(errs, "storage.temp_torrents_dir: must differ from storage.uploads_dir")
	}

	// Sources validation
	for name, raw := range map[string]string{
		"sources.flibusta_url": c.Sources.FlibustaURL,
		"sources.audioboo_url": c.Sources.AudiobooURL,
		"sources.kinorush_url": c.Sources.KinorushURL,
	} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("%s: must be an absolute URL, got %q", name, raw))
		}
	}

	// Discovery validation
	if c.Discovery.MaxAttempts < 0 {
		errs = append(errs, fmt.Sprintf("discovery.max_attempts: must be positive, got %d", c.Discovery.MaxAttempts))
	}
	seen := make(map[string]bool, len(c.Discovery.Categories))
	for _, cat := range c.Discovery.Categories {
		switch {
		case !validCategories[cat]:
			errs = append(errs, fmt.Sprintf("discovery.categories: unknown category %q", cat))
		case seen[cat]:
			errs = append(errs, fmt.Sprintf("discovery.categories: %q listed twice", cat))
		}
		seen[cat] = true
	}

	// Torrent validation
	if !validBackends[c.Torrent.Backend] && c.Torrent.Backend != "" {
		errs = append(errs, fmt.Sprintf("torrent.backend: must be one of qbittorrent, rain; got %q", c.Torrent.Backend))
	}
	switch c.Torrent.Backend {
	case BackendQBittorrent:
		if c.Torrent.QBittorrent != nil && c.Torrent.QBittorrent.URL == "" {
			errs = append(errs, "torrent.qbittorrent.url: required when backend is qbittorrent")
		}
	case BackendRain:
		if c.Torrent.Rain == nil || c.Torrent.Rain.URL == "" {
			errs = append(errs, "torrent.rain.url: required when backend is rain")
		} else if c.Torrent.Rain.DataDir == "" {
			errs = append(errs, "torrent.rain.data_dir: required when backend is rain")
		}
	}
	if c.Torrent.StallTimeout > 0 && c.Torrent.Timeout > 0 && c.Torrent.StallTimeout >= c.Torrent.Timeout {
		errs = append(errs, "torrent.stall_timeout: must be shorter than torrent.timeout")
	}

	// Maintenance validation
	if c.Maintenance.TempMaxAge > 0 && c.Torrent.Timeout > 0 && c.Maintenance.TempMaxAge <= c.Torrent.Timeout {
		errs = append(errs, "maintenance.temp_max_age: must be longer than torrent.timeout or active downloads get deleted")
	}

	return errs
}
