package settings

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediaportal/internal/library"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return NewStore(path, testLogger())
}

func readDoc(t *testing.T, s *Store) map[string]any {
	t.Helper()
	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	doc := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	s := newTestStore(t, "")

	got := s.Load()
	assert.Equal(t, Defaults(), got)
	assert.True(t, got.Enabled)
	assert.Equal(t, 60, got.IntervalMinutes)
	assert.Equal(t, map[string]float64{"Фантастика": 1}, got.GenrePriorities)
}

func TestLoad_CorruptFileReturnsDefaults(t *testing.T) {
	s := newTestStore(t, "{not json")
	assert.Equal(t, Defaults(), s.Load())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	s := newTestStore(t, `{"enabled": false, "book_interval_minutes": 15, "force_run": true}`)

	got := s.Load()
	assert.False(t, got.Enabled)
	assert.Equal(t, 60, got.IntervalMinutes)
	assert.Equal(t, 15, got.IntervalFor(library.CategoryBooks))
	assert.Equal(t, 60, got.IntervalFor(library.CategoryAudiobooks))
	assert.True(t, got.ForceRequested(library.CategoryMovies))
	assert.False(t, got.ForceRequested(library.CategoryBooks))
	assert.InDelta(t, 3.0, got.MinFileSizeGB, 0.001)
	assert.Equal(t, 2015, got.MinYear)
}

func TestConsumeForceFlag(t *testing.T) {
	s := newTestStore(t, `{"force_run_books": true, "force_run_audiobooks": true, "custom": "kept"}`)

	require.NoError(t, s.ConsumeForceFlag(library.CategoryBooks))

	got := s.Load()
	assert.False(t, got.ForceRunBooks)
	assert.True(t, got.ForceRunAudiobooks, "only the requested category is cleared")

	doc := readDoc(t, s)
	assert.Equal(t, "kept", doc["custom"], "unknown keys survive a write")
}

func TestRequestForceRun(t *testing.T) {
	s := newTestStore(t, "")

	require.NoError(t, s.RequestForceRun(library.CategoryMovies))
	assert.True(t, s.Load().ForceRunMovies)

	doc := readDoc(t, s)
	assert.Equal(t, true, doc["force_run"])
	assert.Equal(t, true, doc["enabled"], "defaults are materialised on first write")
}

func TestSetInterval(t *testing.T) {
	s := newTestStore(t, "")

	require.NoError(t, s.SetInterval(library.CategoryAudiobooks, 30))
	assert.Equal(t, 30, s.Load().IntervalFor(library.CategoryAudiobooks))

	err := s.SetInterval(library.CategoryAudiobooks, 0)
	assert.ErrorIs(t, err, ErrInvalidInterval)
	assert.Equal(t, 30, s.Load().IntervalFor(library.CategoryAudiobooks))
}

func TestUnknownCategory(t *testing.T) {
	s := newTestStore(t, "")

	assert.ErrorIs(t, s.ConsumeForceFlag(library.Category("tv")), ErrUnknownCategory)
	assert.ErrorIs(t, s.SetInterval(library.Category("tv"), 5), ErrUnknownCategory)
}

func TestSetEnabled(t *testing.T) {
	s := newTestStore(t, `{"interval_minutes": 5}`)

	require.NoError(t, s.SetEnabled(false))
	got := s.Load()
	assert.False(t, got.Enabled)
	assert.Equal(t, 5, got.IntervalMinutes)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t, "")
	require.NoError(t, s.SetEnabled(true))

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "settings.json", entries[0].Name())
}

func TestLoad_GenrePrioritiesReplaceDefaults(t *testing.T) {
	s := newTestStore(t, `{"genre_priorities": {"Детективы и триллеры": 3}}`)

	got := s.Load()
	assert.Equal(t, map[string]float64{"Детективы и триллеры": 3}, got.GenrePriorities)
}
