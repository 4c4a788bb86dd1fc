// Package scheduler decides when each category runs a discovery cycle.
//
// Every tick reloads the settings file, so operator changes and force
// requests take effect without a restart. The timing state is an explicit
// value passed into and returned from Tick.
package scheduler

//go:generate mockgen -source=scheduler.go -destination=mocks/scheduler_mock.go -package=mocks

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/vmunix/mediaportal/internal/ingest"
	"github.com/vmunix/mediaportal/internal/library"
	"github.com/vmunix/mediaportal/internal/settings"
)

// Defaults for Config.
const (
	DefaultTick          = 10 * time.Second
	DefaultDisabledSleep = 10 * time.Minute
)

// Discoverer runs discovery cycles for one category.
// *ingest.Coordinator implements it.
type Discoverer interface {
	Category() library.Category
	PickGenre(weights map[string]float64) string
	RunCycle(ctx context.Context, genre string, s settings.Settings, forced bool) ingest.Result
}

// SettingsSource provides the settings read at every tick.
// *settings.Store implements it.
type SettingsSource interface {
	Load() settings.Settings
	ConsumeForceFlag(c library.Category) error
}

var (
	_ Discoverer     = (*ingest.Coordinator)(nil)
	_ SettingsSource = (*settings.Store)(nil)
)

// SchedulerState is the timing state carried between ticks.
type SchedulerState struct {
	LastRun  map[library.Category]time.Time
	Disabled bool // discovery was disabled at the last tick
}

// NewState returns a state in which every category is due.
func NewState() SchedulerState {
	return SchedulerState{LastRun: make(map[library.Category]time.Time)}
}

func (s SchedulerState) clone() SchedulerState {
	out := SchedulerState{LastRun: maps.Clone(s.LastRun), Disabled: s.Disabled}
	if out.LastRun == nil {
		out.LastRun = make(map[library.Category]time.Time)
	}
	return out
}

// Config controls loop timing.
type Config struct {
	Tick          time.Duration
	DisabledSleep time.Duration
}

// Scheduler runs the cycles of the categories it owns.
type Scheduler struct {
	cfg        Config
	settings   SettingsSource
	discoverer map[library.Category]Discoverer
	order      []library.Category
	log        *slog.Logger

	now  func() time.Time
	wake chan struct{}

	mu     sync.RWMutex
	status map[library.Category]*Status
}

// New creates a scheduler owning the given discoverers.
func New(cfg Config, src SettingsSource, discoverers []Discoverer, log *slog.Logger) *Scheduler {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.DisabledSleep <= 0 {
		cfg.DisabledSleep = DefaultDisabledSleep
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Scheduler{
		cfg:        cfg,
		settings:   src,
		discoverer: make(map[library.Category]Discoverer, len(discoverers)),
		log:        log.With("component", "scheduler"),
		now:        time.Now,
		wake:       make(chan struct{}, 1),
		status:     make(map[library.Category]*Status, len(discoverers)),
	}
	for _, d := range discoverers {
		c := d.Category()
		if _, dup := s.discoverer[c]; !dup {
			s.order = append(s.order, c)
		}
		s.discoverer[c] = d
		s.status[c] = &Status{Category: c}
	}
	return s
}

// Categories returns the owned categories in registration order.
func (s *Scheduler) Categories() []library.Category {
	return slices.Clone(s.order)
}

// Wake makes a running loop tick now instead of waiting for the timer.
func (s *Scheduler) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Tick reloads the settings and runs every due category once.
// A category is due when its force flag is set or its interval has elapsed
// since LastRun. The returned state has LastRun advanced to now for every
// category that ran.
func (s *Scheduler) Tick(ctx context.Context, state SchedulerState, now time.Time) SchedulerState {
	next := state.clone()
	cfg := s.settings.Load()
	next.Disabled = !cfg.Enabled
	s.setEnabled(cfg.Enabled)
	if !cfg.Enabled {
		if !state.Disabled {
			s.log.Info("discovery disabled")
		}
		return next
	}

	for _, c := range s.order {
		if ctx.Err() != nil {
			break
		}
		interval := time.Duration(cfg.IntervalFor(c)) * time.Minute
		forced := cfg.ForceRequested(c)
		last, ran := next.LastRun[c]
		elapsed := now.Sub(last)
		s.setNextRun(c, last, ran, interval)
		if !forced && ran && elapsed < interval {
			continue
		}

		if forced {
			if err := s.settings.ConsumeForceFlag(c); err != nil {
				s.log.Error("failed to clear force flag", "category", c, "error", err)
			}
		}
		s.runCycle(ctx, c, cfg, forced)
		next.LastRun[c] = now
		s.setNextRun(c, now, true, interval)
	}
	return next
}

// runCycle runs one cycle and contains any panic it raises.
func (s *Scheduler) runCycle(ctx context.Context, c library.Category, cfg settings.Settings, forced bool) {
	d := s.discoverer[c]
	log := s.log.With("category", c)
	s.markRunning(c, true)
	defer s.markRunning(c, false)
	defer func() {
		if r := recover(); r != nil {
			log.Error("discovery cycle panicked", "panic", r, "stack", string(debug.Stack()))
			s.recordPanic(c, fmt.Sprint(r))
		}
	}()

	genre := d.PickGenre(cfg.GenrePriorities)
	log.Info("running discovery cycle", "genre", genre, "forced", forced)
	res := d.RunCycle(ctx, genre, cfg, forced)
	s.recordResult(c, res)
}

// Run ticks until ctx is cancelled. It waits Tick between ticks, or
// DisabledSleep while discovery is disabled. A Wake call cuts either wait
// short.
func (s *Scheduler) Run(ctx context.Context) error {
	log := s.log.With("categories", s.order)
	log.Info("scheduler started", "tick", s.cfg.Tick, "disabled_sleep", s.cfg.DisabledSleep)

	state := NewState()
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("scheduler stopped")
			return ctx.Err()
		case <-timer.C:
		case <-s.wake:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		state = s.safeTick(ctx, state)
		wait := s.cfg.Tick
		if state.Disabled {
			wait = s.cfg.DisabledSleep
		}
		timer.Reset(wait)
	}
}

// safeTick keeps the loop alive if anything outside a cycle panics.
func (s *Scheduler) safeTick(ctx context.Context, state SchedulerState) (next SchedulerState) {
	next = state
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduler tick panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	return s.Tick(ctx, state, s.now())
}
