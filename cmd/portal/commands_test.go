package main

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediaportal/internal/config"
	"github.com/vmunix/mediaportal/internal/settings"
)

func TestParseGenreWeights(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    map[string]float64
		wantErr bool
	}{
		{"weights", []string{"Фантастика=2", "Детективы=0.5"}, map[string]float64{"Фантастика": 2, "Детективы": 0.5}, false},
		{"bare genre weighs one", []string{"Ужасы"}, map[string]float64{"Ужасы": 1}, false},
		{"zero excludes", []string{"Драма=0"}, map[string]float64{"Драма": 0}, false},
		{"spaces trimmed", []string{" Фэнтези = 3 "}, map[string]float64{"Фэнтези": 3}, false},
		{"negative", []string{"Драма=-1"}, nil, true},
		{"not a number", []string{"Драма=many"}, nil, true},
		{"empty genre", []string{"=2"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseGenreWeights(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{500, "500 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{3 << 30, "3.0 GB"},
		{12000000000, "11.2 GB"},
		{1 << 40, "1.0 TB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSize(tt.bytes), "formatSize(%d)", tt.bytes)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Дюна", truncate("Дюна", 10))
	assert.Equal(t, "Мастер ...", truncate("Мастер и Маргарита", 10))
	assert.Equal(t, "Мас", truncate("Мастер", 3))
}

func TestFormatTimeAgo(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "never", formatTimeAgo(0))
	assert.Equal(t, "just now", formatTimeAgo(now.Unix()))
	assert.Equal(t, "5m ago", formatTimeAgo(now.Add(-5*time.Minute-time.Second).Unix()))
	assert.Equal(t, "3h ago", formatTimeAgo(now.Add(-3*time.Hour-time.Second).Unix()))
	assert.Equal(t, "2d ago", formatTimeAgo(now.Add(-49*time.Hour).Unix()))
	assert.Equal(t, "in 59m", formatTimeAgo(now.Add(time.Hour-time.Second).Unix()))
}

func TestEventDetail(t *testing.T) {
	e := EventResponse{Payload: map[string]any{
		"cycle_id": "abc",
		"genre":    "Фантастика",
		"reason":   "duplicate_found",
		"title":    "",
	}}
	assert.Equal(t, "genre=Фантастика reason=duplicate_found", eventDetail(e))
	assert.Empty(t, eventDetail(EventResponse{}))
}

func TestSubcommands_Registered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"settings", "force", "records", "events", "status", "config", "epub"} {
		assert.True(t, names[want], "missing %s command", want)
	}

	var found bool
	for _, cmd := range recordsCmd.Commands() {
		if cmd.Name() == "show" {
			found = true
			assert.NotNil(t, cmd.Flags().Lookup("events"))
		}
	}
	assert.True(t, found, "records should have a show subcommand")

	configNames := map[string]bool{}
	for _, cmd := range configCmd.Commands() {
		configNames[cmd.Name()] = true
	}
	assert.Equal(t, map[string]bool{"init": true, "test": true, "show": true}, configNames)
}

func TestRunSetInterval_InvalidMinutes(t *testing.T) {
	for _, arg := range []string{"0", "-5", "hourly"} {
		err := runSetInterval(nil, []string{"books", arg})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid interval")
	}
}

func TestRunSetInterval_Success(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/settings/interval/books").
		ExpectPUT().
		ExpectJSONBody(`{"minutes": 30}`).
		RespondJSON(SettingsResponse{Settings: settings.Defaults()}).
		Build()
	defer srv.Close()
	withServerURL(t, srv.URL)

	require.NoError(t, runSetInterval(nil, []string{"books", "30"}))
}

func TestRunForceCmd(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/discovery/movies/force").
		ExpectPOST().
		RespondJSONStatus(http.StatusAccepted, ForceResponse{Category: "movies", Queued: true}).
		Build()
	defer srv.Close()
	withServerURL(t, srv.URL)

	require.NoError(t, runForceCmd(nil, []string{"movies"}))
}

func TestRunRecordsShow_InvalidID(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().Bool("events", false, "")

	err := runRecordsShow(cmd, []string{"books", "first"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ID")
}

func TestRunRecordsShow_WithEvents(t *testing.T) {
	var paths []string
	srv := newMockServer(t).
		ExpectGET().
		Handler(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			if r.URL.Path == "/api/v1/records/books/3" {
				_, _ = w.Write([]byte(`{"id":3,"category":"books","title":"Солярис","creator":"Станислав Лем","total_pages":14,"source":"auto_discovery"}`))
				return
			}
			_, _ = w.Write([]byte(`{"items":[],"total":0}`))
		}).
		Build()
	defer srv.Close()
	withServerURL(t, srv.URL)

	cmd := &cobra.Command{}
	cmd.Flags().Bool("events", false, "")
	require.NoError(t, cmd.Flags().Set("events", "true"))

	require.NoError(t, runRecordsShow(cmd, []string{"books", "3"}))
	assert.Equal(t, []string{"/api/v1/records/books/3", "/api/v1/events/books/3"}, paths)
}

func TestRunConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal", "config.toml")
	cmd := &cobra.Command{}
	cmd.Flags().Bool("force", false, "")

	require.NoError(t, runConfigInit(cmd, []string{path}))
	cfg, err := config.LoadWithoutValidation(path)
	require.NoError(t, err)
	assert.Equal(t, 8585, cfg.Server.Port)

	err = runConfigInit(cmd, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, cmd.Flags().Set("force", "true"))
	require.NoError(t, runConfigInit(cmd, []string{path}))
}

func TestRunConfigShow_MasksPassword(t *testing.T) {
	t.Setenv("QBITTORRENT_PASSWORD", "s3cret-pass")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, config.WriteDefault(path))

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	require.NoError(t, runConfigShow(cmd, []string{path}))

	assert.Contains(t, out.String(), "\n[torrent.qbittorrent]\n")
	assert.Contains(t, out.String(), `password = "********"`)
	assert.NotContains(t, out.String(), "s3cret-pass")
	assert.NotContains(t, out.String(), "${")
}

func TestPrintConfigErrors_BySection(t *testing.T) {
	cfg := config.Default()
	cfg.Torrent.Backend = config.BackendRain
	cfg.Discovery.Categories = []string{"movies", "movies"}
	e := &config.ConfigError{
		Path:    "config.toml",
		Missing: []config.MissingVar{{Name: "KINORUSH_URL", Key: "sources.kinorush_url"}},
		Errors:  cfg.Validate(),
	}

	var out bytes.Buffer
	printConfigErrors(&out, e)
	assert.Equal(t, "[sources]\n"+
		"  - kinorush_url: $KINORUSH_URL is not set\n\n"+
		"[torrent]\n"+
		"  - rain.url: required when backend is rain\n\n"+
		"[discovery]\n"+
		"  - categories: \"movies\" listed twice\n\n", out.String())
}

func TestRunEpubPages_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.epub")
	err := runEpubPages(nil, []string{missing})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1")

	_, statErr := os.Stat(missing)
	assert.True(t, os.IsNotExist(statErr))
}
