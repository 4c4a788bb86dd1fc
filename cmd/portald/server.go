package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	v1 "github.com/vmunix/mediaportal/internal/api/v1"
	"github.com/vmunix/mediaportal/internal/config"
	"github.com/vmunix/mediaportal/internal/download"
	"github.com/vmunix/mediaportal/internal/events"
	"github.com/vmunix/mediaportal/internal/ingest"
	"github.com/vmunix/mediaportal/internal/library"
	"github.com/vmunix/mediaportal/internal/logging"
	"github.com/vmunix/mediaportal/internal/migrations"
	"github.com/vmunix/mediaportal/internal/postprocess"
	"github.com/vmunix/mediaportal/internal/scheduler"
	"github.com/vmunix/mediaportal/internal/server"
	"github.com/vmunix/mediaportal/internal/settings"
	"github.com/vmunix/mediaportal/internal/source"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 200 { // Only capture first WriteHeader call
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// openDB opens a SQLite file and applies its schema.
func openDB(path, schema string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return db, nil
}

// newTorrentClient builds the configured torrent backend.
func newTorrentClient(cfg config.TorrentConfig, logger *slog.Logger) (download.TorrentClient, error) {
	switch cfg.Backend {
	case config.BackendQBittorrent:
		if cfg.QBittorrent == nil {
			return nil, errors.New("torrent.qbittorrent is not configured")
		}
		return download.NewQBittorrentClient(cfg.QBittorrent.URL, cfg.QBittorrent.Username, cfg.QBittorrent.Password, logger), nil
	case config.BackendRain:
		if cfg.Rain == nil {
			return nil, errors.New("torrent.rain is not configured")
		}
		return download.NewRainClient(cfg.Rain.URL, cfg.Rain.DataDir, logger), nil
	}
	return nil, fmt.Errorf("unknown torrent backend %q", cfg.Backend)
}

// newMovieCollaborators builds the torrent downloader and encoder for the
// movies category. They log to the category's discovery log.
func newMovieCollaborators(client download.TorrentClient, fetcher *download.Fetcher, bus *events.Bus, cfg *config.Config, log *slog.Logger) (*download.TorrentDownloader, *postprocess.FFmpeg) {
	torrents := download.NewTorrentDownloader(client, fetcher, bus, log)
	torrents.PollInterval = cfg.Torrent.PollInterval
	torrents.StallTimeout = cfg.Torrent.StallTimeout
	return torrents, postprocess.NewFFmpeg(cfg.Encoder.FFmpegPath, cfg.Encoder.FFprobePath, log)
}

// newAdapter returns the source adapter feeding a category.
func newAdapter(c library.Category, cfg config.SourcesConfig, logger *slog.Logger) source.Adapter {
	sc := source.Config{Timeout: cfg.Timeout, CacheTTL: cfg.CacheTTL}
	switch c {
	case library.CategoryBooks:
		sc.BaseURL = cfg.FlibustaURL
		return source.NewFlibusta(sc, logger)
	case library.CategoryAudiobooks:
		sc.BaseURL = cfg.AudiobooURL
		return source.NewAudioboo(sc, logger)
	default:
		sc.BaseURL = cfg.KinorushURL
		return source.NewKinorush(sc, logger)
	}
}

// logCategoryEvents mirrors a category's bus events into its discovery log
// until ctx is cancelled.
func logCategoryEvents(ctx context.Context, bus *events.Bus, category string, log *slog.Logger) {
	ch := bus.SubscribeCategory(category, 64)
	defer bus.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			log.Debug("event", "type", e.EventType(), "entity_id", e.EntityID())
		}
	}
}

func runServer(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logs := logging.NewFactory(os.Stdout, cfg.Logging.Dir, logging.ParseLevel(cfg.Server.LogLevel))
	defer func() { _ = logs.Close() }()
	logger := logs.Root()

	for _, dir := range []string{cfg.Database.Dir, cfg.Storage.UploadsDir, cfg.Storage.TempTorrentsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	// === Event log and bus ===
	eventDB, err := openDB(filepath.Join(cfg.Database.Dir, "portal.db"), migrations.EventsSQL)
	if err != nil {
		return err
	}
	defer func() { _ = eventDB.Close() }()
	eventLog := events.NewEventLog(eventDB)
	bus := events.NewBus(eventLog, logger)
	defer func() { _ = bus.Close() }()

	settingsStore := settings.NewStore(cfg.Discovery.SettingsPath, logger)
	fetcher := download.NewFetcher(0, logger)

	torrentClient, err := newTorrentClient(cfg.Torrent, logger)
	if err != nil {
		logger.Warn("torrent backend unavailable", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === Per-category stores, coordinators and scheduler loops ===
	records := make(map[library.Category]*library.Store)
	var (
		schedulers []*scheduler.Scheduler
		apiScheds  []v1.Scheduler
	)
	for _, name := range cfg.Discovery.Categories {
		c, err := library.ParseCategory(name)
		if err != nil {
			return fmt.Errorf("discovery: %w", err)
		}
		if c == library.CategoryMovies && torrentClient == nil {
			logger.Warn("movie discovery disabled: no torrent backend")
			continue
		}

		schema, err := migrations.ForCategory(string(c))
		if err != nil {
			return err
		}
		db, err := openDB(filepath.Join(cfg.Database.Dir, string(c)+".db"), schema)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		store := library.NewStore(db, c)
		records[c] = store

		catLog, err := logs.ForCategory(string(c))
		if err != nil {
			logger.Warn("category log file unavailable", "category", c, "error", err)
		}

		deps := ingest.Deps{
			Adapter: newAdapter(c, cfg.Sources, catLog),
			Store:   store,
			Fetcher: fetcher,
			Bus:     bus,
		}
		if c == library.CategoryMovies {
			deps.Torrents, deps.Transcoder = newMovieCollaborators(torrentClient, fetcher, bus, cfg, catLog)
		}
		coord, err := ingest.New(ingest.Config{
			UploadsDir:      cfg.Storage.UploadsDir,
			TempTorrentsDir: cfg.Storage.TempTorrentsDir,
			MaxAttempts:     cfg.Discovery.MaxAttempts,
			TorrentTimeout:  cfg.Torrent.Timeout,
		}, deps, catLog)
		if err != nil {
			return fmt.Errorf("%s coordinator: %w", c, err)
		}

		sched := scheduler.New(scheduler.Config{
			Tick:          cfg.Discovery.Tick,
			DisabledSleep: cfg.Discovery.DisabledSleep,
		}, settingsStore, []scheduler.Discoverer{coord}, catLog)
		schedulers = append(schedulers, sched)
		go logCategoryEvents(ctx, bus, string(c), catLog)
		apiScheds = append(apiScheds, sched)
	}

	maintenance := server.NewMaintenance(server.MaintenanceConfig{
		TempTorrentsDir:     cfg.Storage.TempTorrentsDir,
		TempCleanupInterval: cfg.Maintenance.TempCleanupInterval,
		TempMaxAge:          cfg.Maintenance.TempMaxAge,
		EventRetention:      cfg.Maintenance.EventRetention,
	}, eventLog, bus, logger)

	// === HTTP Setup ===
	mux := http.NewServeMux()
	apiV1, err := v1.NewWithDeps(v1.ServerDeps{
		Settings:   settingsStore,
		Records:    records,
		EventLog:   eventLog,
		Schedulers: apiScheds,
	})
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	apiV1.RegisterRoutes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting",
		"addr", addr,
		"database_dir", cfg.Database.Dir,
		"categories", len(schedulers),
		"torrent_backend", cfg.Torrent.Backend,
		"settings", settingsStore.Path(),
		"log_level", cfg.Server.LogLevel,
	)

	runner := server.NewRunner(server.Config{Addr: addr}, schedulers, maintenance, logRequests(mux, logger), logger)
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("server stopped")
	return nil
}
