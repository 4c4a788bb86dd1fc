package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/vmunix/mediaportal/internal/events"
)

// Maintenance defaults.
const (
	DefaultTempCleanupInterval = 30 * time.Minute
	DefaultTempMaxAge          = 6 * time.Hour
	DefaultEventRetention      = 30 * 24 * time.Hour

	pruneAt = "04:00"
)

// MaintenanceConfig configures the periodic housekeeping jobs.
type MaintenanceConfig struct {
	TempTorrentsDir     string
	TempCleanupInterval time.Duration
	TempMaxAge          time.Duration
	EventRetention      time.Duration
}

// Maintenance removes abandoned torrent directories and prunes old events.
type Maintenance struct {
	cfg    MaintenanceConfig
	log    *events.EventLog
	bus    *events.Bus
	logger *slog.Logger
	now    func() time.Time
}

// NewMaintenance creates the housekeeping jobs. eventLog and bus may be nil.
func NewMaintenance(cfg MaintenanceConfig, eventLog *events.EventLog, bus *events.Bus, logger *slog.Logger) *Maintenance {
	if cfg.TempCleanupInterval <= 0 {
		cfg.TempCleanupInterval = DefaultTempCleanupInterval
	}
	if cfg.TempMaxAge <= 0 {
		cfg.TempMaxAge = DefaultTempMaxAge
	}
	if cfg.EventRetention <= 0 {
		cfg.EventRetention = DefaultEventRetention
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Maintenance{
		cfg:    cfg,
		log:    eventLog,
		bus:    bus,
		logger: logger.With("component", "maintenance"),
		now:    time.Now,
	}
}

// CleanupTempTorrents removes directories under the temp torrents root that
// have not been modified for TempMaxAge. Cycles remove their own
// directories; this catches the ones a crash or kill left behind.
func (m *Maintenance) CleanupTempTorrents(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(m.cfg.TempTorrentsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", m.cfg.TempTorrentsDir, err)
	}

	cutoff := m.now().Add(-m.cfg.TempMaxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(m.cfg.TempTorrentsDir, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			m.logger.Warn("failed to remove stale temp directory", "dir", dir, "error", err)
			continue
		}
		m.logger.Info("removed stale temp directory", "dir", dir, "modified", info.ModTime())
		removed++
	}
	m.publish(ctx, "temp_torrents", int64(removed))
	return removed, nil
}

// PruneEvents deletes events older than the retention period.
func (m *Maintenance) PruneEvents(ctx context.Context) (int64, error) {
	if m.log == nil {
		return 0, nil
	}
	n, err := m.log.Prune(m.cfg.EventRetention)
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	m.logger.Info("pruned events", "removed", n, "retention", m.cfg.EventRetention)
	m.publish(ctx, "events", n)
	return n, nil
}

// Start registers the jobs on a gocron scheduler and starts it. The
// returned scheduler must be stopped by the caller.
func (m *Maintenance) Start(ctx context.Context) (*gocron.Scheduler, error) {
	cron := gocron.NewScheduler(time.Local)
	cron.SingletonModeAll()

	if _, err := cron.Every(m.cfg.TempCleanupInterval).Do(func() {
		if _, err := m.CleanupTempTorrents(ctx); err != nil {
			m.logger.Error("temp cleanup failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule temp cleanup: %w", err)
	}
	if _, err := cron.Every(1).Day().At(pruneAt).Do(func() {
		if _, err := m.PruneEvents(ctx); err != nil {
			m.logger.Error("event prune failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule event prune: %w", err)
	}

	cron.StartAsync()
	m.logger.Info("maintenance jobs started",
		"temp_cleanup_interval", m.cfg.TempCleanupInterval,
		"temp_max_age", m.cfg.TempMaxAge,
		"event_retention", m.cfg.EventRetention,
		"prune_at", pruneAt)
	return cron, nil
}

func (m *Maintenance) publish(ctx context.Context, job string, removed int64) {
	if m.bus == nil || removed == 0 {
		return
	}
	if err := m.bus.Publish(ctx, &events.CleanupCompleted{
		BaseEvent: events.NewBaseEvent(events.EventCleanupCompleted, "maintenance", 0),
		Job:       job,
		Removed:   removed,
	}); err != nil {
		m.logger.Debug("publish failed", "error", err)
	}
}
