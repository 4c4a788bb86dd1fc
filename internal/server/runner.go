// Package server runs the daemon's long-lived components: one scheduler
// loop per category, the maintenance jobs and the admin HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/mediaportal/internal/scheduler"
)

const defaultShutdownTimeout = 30 * time.Second

// Config for the runner.
type Config struct {
	Addr            string // admin API listen address; empty disables HTTP
	ShutdownTimeout time.Duration
}

// Runner manages the daemon components.
type Runner struct {
	config      Config
	schedulers  []*scheduler.Scheduler
	maintenance *Maintenance
	handler     http.Handler
	logger      *slog.Logger

	// ready receives the bound listener address once HTTP is serving.
	ready chan string
}

// NewRunner creates a new runner. maintenance and handler may be nil.
func NewRunner(cfg Config, schedulers []*scheduler.Scheduler, maintenance *Maintenance, handler http.Handler, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return &Runner{
		config:      cfg,
		schedulers:  schedulers,
		maintenance: maintenance,
		handler:     handler,
		logger:      logger.With("component", "runner"),
		ready:       make(chan string, 1),
	}
}

// Ready returns a channel that yields the HTTP address once the listener is bound.
func (r *Runner) Ready() <-chan string { return r.ready }

// Run starts all components.
// It blocks until the context is canceled or a component fails.
func (r *Runner) Run(ctx context.Context) error {
	var ln net.Listener
	if r.handler != nil && r.config.Addr != "" {
		var err error
		if ln, err = net.Listen("tcp", r.config.Addr); err != nil {
			return fmt.Errorf("listen %s: %w", r.config.Addr, err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	if r.maintenance != nil {
		cron, err := r.maintenance.Start(ctx)
		if err != nil {
			if ln != nil {
				_ = ln.Close()
			}
			return err
		}
		g.Go(func() error {
			<-ctx.Done()
			cron.Stop()
			return nil
		})
	}

	for _, s := range r.schedulers {
		g.Go(func() error {
			return s.Run(ctx)
		})
	}

	if ln != nil {
		srv := &http.Server{Handler: r.handler, ReadHeaderTimeout: 10 * time.Second}
		r.logger.Info("admin api listening", "addr", ln.Addr().String())
		r.ready <- ln.Addr().String()

		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		})
	}

	// Keep the group alive when nothing else is configured.
	g.Go(func() error {
		<-ctx.Done()
		return ctx.Err()
	})

	return g.Wait()
}
