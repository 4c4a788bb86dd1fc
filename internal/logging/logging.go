// Package logging builds the daemon's slog loggers.
// Each discovery category additionally writes to its own log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ParseLevel converts a config log level to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Factory creates the root logger and per-category loggers that share one level.
type Factory struct {
	console io.Writer
	dir     string
	level   slog.Level

	mu    sync.Mutex
	files []*os.File
}

// NewFactory creates a factory that writes to console and to files under dir.
// An empty dir disables file output.
func NewFactory(console io.Writer, dir string, level slog.Level) *Factory {
	return &Factory{console: console, dir: dir, level: level}
}

// Root returns a console-only logger.
func (f *Factory) Root() *slog.Logger {
	return slog.New(slog.NewTextHandler(f.console, &slog.HandlerOptions{Level: f.level}))
}

// ForCategory returns a logger mirrored to {dir}/{category}_discovery.log.
// If the file cannot be opened the logger falls back to the console and the error is returned alongside it.
func (f *Factory) ForCategory(category string) (*slog.Logger, error) {
	if f.dir == "" {
		return f.Root().With("category", category), nil
	}
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return f.Root().With("category", category), fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(f.dir, category+"_discovery.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return f.Root().With("category", category), fmt.Errorf("open log file: %w", err)
	}

	f.mu.Lock()
	f.files = append(f.files, file)
	f.mu.Unlock()

	w := io.MultiWriter(f.console, file)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: f.level})).With("category", category), nil
}

// Close closes every category log file.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var firstErr error
	for _, file := range f.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.files = nil
	return firstErr
}
