// internal/config/discover.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvConfigPath names the environment variable that overrides config
	// discovery. It may point at a file or at a directory holding config.toml,
	// which is how the daemon's container image mounts its configuration.
	EnvConfigPath = "PORTAL_CONFIG"

	configFile = "config.toml"
	appName    = "mediaportal"
)

// ErrConfigNotFound is returned when no search path holds a config file.
var ErrConfigNotFound = errors.New("config not found")

// DefaultPath returns the per-user config path under $XDG_CONFIG_HOME.
// `portal config init` writes here when no path is given.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", configFile)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, appName, configFile)
}

// SearchPaths lists the locations Discover checks after PORTAL_CONFIG:
// the working directory, DefaultPath and the system-wide /etc path.
func SearchPaths() []string {
	return []string{
		filepath.Join(".", configFile),
		DefaultPath(),
		filepath.Join("/etc", appName, configFile),
	}
}

// Discover finds the config file portald and portal should read.
// PORTAL_CONFIG wins when set, and a bad value there is an error rather
// than a reason to keep searching.
func Discover() (string, error) {
	if env := os.Getenv(EnvConfigPath); env != "" {
		return resolveConfigPath(env)
	}

	paths := SearchPaths()
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w, checked: %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

func resolveConfigPath(p string) (string, error) {
	info, err := os.Stat(p)
	if err != nil {
		return "", fmt.Errorf("%s=%s: %w", EnvConfigPath, p, err)
	}
	if !info.IsDir() {
		return p, nil
	}

	inDir := filepath.Join(p, configFile)
	if _, err := os.Stat(inDir); err != nil {
		return "", fmt.Errorf("%s=%s: %w in directory", EnvConfigPath, p, ErrConfigNotFound)
	}
	return inDir, nil
}
