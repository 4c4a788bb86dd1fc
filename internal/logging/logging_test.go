package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestFactory_ForCategoryMirrorsToFile(t *testing.T) {
	var console bytes.Buffer
	dir := filepath.Join(t.TempDir(), "logs")
	f := NewFactory(&console, dir, slog.LevelInfo)

	logger, err := f.ForCategory("books")
	require.NoError(t, err)
	logger.Info("cycle started", "genre", "sf")
	logger.Debug("hidden")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(filepath.Join(dir, "books_discovery.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "cycle started")
	assert.Contains(t, string(data), "category=books")
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, console.String(), "cycle started")
}

func TestFactory_NoDirIsConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	f := NewFactory(&console, "", slog.LevelDebug)

	logger, err := f.ForCategory("movies")
	require.NoError(t, err)
	logger.Debug("probe")
	assert.Contains(t, console.String(), "category=movies")
	assert.NoError(t, f.Close())
}
