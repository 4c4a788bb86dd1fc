package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/vmunix/mediaportal/internal/events"
	"github.com/vmunix/mediaportal/internal/library"
	"github.com/vmunix/mediaportal/internal/postprocess"
)

// Defaults for torrent jobs.
const (
	DefaultTorrentTimeout    = 2 * time.Hour
	DefaultStallTimeout      = 3 * time.Minute
	DefaultPollInterval      = 2 * time.Second
	DefaultErrorPollInterval = 5 * time.Second

	// removeTimeout bounds the removal call made after a job is aborted.
	removeTimeout = 30 * time.Second
)

// cleanupBackoff is the pause before each CleanupDir retry.
var cleanupBackoff = []time.Duration{2 * time.Second, 4 * time.Second, 6 * time.Second}

// TorrentSource fetches .torrent payloads.
type TorrentSource interface {
	FetchTorrent(ctx context.Context, torrentURL, referer string) ([]byte, error)
}

// TorrentResult is a completed torrent job.
type TorrentResult struct {
	VideoPath string
	Hash      string
}

// TorrentDownloader submits torrents and polls them to completion.
type TorrentDownloader struct {
	client TorrentClient
	source TorrentSource
	bus    *events.Bus
	log    *slog.Logger

	PollInterval      time.Duration
	ErrorPollInterval time.Duration
	StallTimeout      time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewTorrentDownloader creates a downloader. The bus is optional.
func NewTorrentDownloader(client TorrentClient, source TorrentSource, bus *events.Bus, log *slog.Logger) *TorrentDownloader {
	if log == nil {
		log = slog.Default()
	}
	return &TorrentDownloader{
		client:            client,
		source:            source,
		bus:               bus,
		log:               log.With("component", "torrent"),
		PollInterval:      DefaultPollInterval,
		ErrorPollInterval: DefaultErrorPollInterval,
		StallTimeout:      DefaultStallTimeout,
		now:               time.Now,
		sleep:             sleepCtx,
	}
}

// Ping checks the torrent client is reachable.
func (d *TorrentDownloader) Ping(ctx context.Context) error {
	return d.client.Ping(ctx)
}

// DownloadViaTorrent fetches the .torrent at torrentURL, downloads it into
// destDir and returns the largest video file. Jobs that stall, time out or
// fail are removed from the client together with their data.
func (d *TorrentDownloader) DownloadViaTorrent(ctx context.Context, torrentURL, destDir, referer string, timeout time.Duration) (*TorrentResult, error) {
	if timeout <= 0 {
		timeout = DefaultTorrentTimeout
	}

	payload, err := d.source.FetchTorrent(ctx, torrentURL, referer)
	if err != nil {
		return nil, fmt.Errorf("fetch torrent: %w", err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create save path: %w", err)
	}

	hash, err := d.client.Add(ctx, payload, destDir)
	if err != nil {
		return nil, fmt.Errorf("add torrent: %w", err)
	}
	now := d.now()
	job := &Job{Hash: hash, SavePath: destDir, Status: JobSubmitted, StartedAt: now, UpdatedAt: now}
	d.log.Info("torrent submitted", "hash", hash, "save_path", destDir)

	if err := d.await(ctx, job, timeout); err != nil {
		return nil, err
	}

	video, err := d.locateVideo(ctx, job)
	if err != nil {
		d.log.Warn("torrent has no usable video", "hash", hash, "error", err)
		d.abort(ctx, job, JobFailed)
		return nil, err
	}
	d.log.Info("torrent complete", "hash", hash, "video", video)
	return &TorrentResult{VideoPath: video, Hash: hash}, nil
}

// await polls the job until it completes or is aborted.
func (d *TorrentDownloader) await(ctx context.Context, job *Job, timeout time.Duration) error {
	lastActivity := job.StartedAt
	lastDecile := -1

	for {
		now := d.now()
		if now.Sub(job.StartedAt) > timeout {
			d.log.Warn("torrent timed out", "hash", job.Hash, "progress", job.Progress, "timeout", timeout)
			d.abort(ctx, job, JobTimedOut)
			return fmt.Errorf("torrent %s after %s: %w", job.Hash, timeout, ErrTimeout)
		}

		st, err := d.client.Status(ctx, job.Hash)
		if err != nil {
			if errors.Is(err, ErrTorrentNotFound) {
				_ = job.Transition(JobFailed, now)
				return fmt.Errorf("torrent %s: %w: %w", job.Hash, ErrTorrentFailed, err)
			}
			d.log.Warn("torrent status failed", "hash", job.Hash, "error", err)
			if err := d.sleep(ctx, d.ErrorPollInterval); err != nil {
				d.abort(ctx, job, JobFailed)
				return err
			}
			continue
		}

		job.Progress = st.Progress
		if st.SavePath != "" && ownsData(d.client) {
			job.SavePath = st.SavePath
		}
		if st.DownloadRate > 0 {
			lastActivity = now
		}
		if st.State == StateDownloading || st.Progress > 0 {
			_ = job.Transition(JobDownloading, now)
		}

		if decile := int(st.Progress) / 10; decile > lastDecile {
			lastDecile = decile
			d.log.Info("torrent progress", "hash", job.Hash,
				"progress", fmt.Sprintf("%.1f%%", st.Progress),
				"state", st.RawState, "rate", st.DownloadRate, "seeds", st.Seeds)
			d.publish(ctx, &events.TorrentProgressed{
				BaseEvent:    events.NewBaseEvent(events.EventTorrentProgressed, string(library.CategoryMovies), 0),
				Hash:         job.Hash,
				Progress:     st.Progress,
				DownloadRate: st.DownloadRate,
			})
		}

		if st.State.IsComplete() || st.Progress >= 100 {
			_ = job.Transition(JobCompleted, now)
			return nil
		}

		if st.State == StateError {
			d.log.Error("torrent in error state", "hash", job.Hash, "state", st.RawState)
			d.abort(ctx, job, JobFailed)
			return fmt.Errorf("torrent %s state %q: %w", job.Hash, st.RawState, ErrTorrentFailed)
		}

		if idle := now.Sub(lastActivity); idle > d.StallTimeout {
			d.log.Warn("torrent stalled", "hash", job.Hash, "progress", st.Progress, "idle", idle)
			d.publish(ctx, &events.TorrentStalled{
				BaseEvent: events.NewBaseEvent(events.EventTorrentStalled, string(library.CategoryMovies), 0),
				Hash:      job.Hash,
				Progress:  st.Progress,
				IdleSecs:  int(idle.Seconds()),
			})
			d.abort(ctx, job, JobStalled)
			return fmt.Errorf("torrent %s idle for %s: %w", job.Hash, idle.Round(time.Second), ErrStalled)
		}

		if err := d.sleep(ctx, d.PollInterval); err != nil {
			d.abort(ctx, job, JobFailed)
			return err
		}
	}
}

// abort records the terminal status and removes the job with its data.
func (d *TorrentDownloader) abort(ctx context.Context, job *Job, status JobStatus) {
	_ = job.Transition(status, d.now())

	rmCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), removeTimeout)
	defer cancel()
	if err := d.client.Remove(rmCtx, job.Hash, true); err != nil {
		d.log.Warn("failed to remove torrent", "hash", job.Hash, "error", err)
		return
	}
	_ = job.Transition(JobRemoved, d.now())
}

// locateVideo picks the largest video from the job's file list, falling back
// to a walk of the save path.
func (d *TorrentDownloader) locateVideo(ctx context.Context, job *Job) (string, error) {
	files, err := d.client.Files(ctx, job.Hash)
	if err != nil {
		d.log.Warn("torrent file list failed", "hash", job.Hash, "error", err)
	}

	var best string
	var bestSize int64
	for _, f := range files {
		if !postprocess.IsVideoFile(f.Path) || f.Size <= bestSize {
			continue
		}
		if _, err := os.Stat(f.Path); err != nil {
			continue
		}
		best, bestSize = f.Path, f.Size
	}
	if best != "" {
		return best, nil
	}

	path, _, err := postprocess.FindLargestVideo(job.SavePath)
	if err != nil {
		return "", fmt.Errorf("torrent %s: %w", job.Hash, err)
	}
	return path, nil
}

// Release pauses the job and removes it from the client. Files under the
// caller's save path are kept for CleanupDir; clients that store data in
// their own directory have it deleted with the job.
func (d *TorrentDownloader) Release(ctx context.Context, hash string) error {
	if err := d.client.Pause(ctx, hash); err != nil {
		d.log.Debug("pause before release failed", "hash", hash, "error", err)
	}
	deleteFiles := ownsData(d.client)
	if err := d.client.Remove(ctx, hash, deleteFiles); err != nil {
		return fmt.Errorf("release torrent %s: %w", hash, err)
	}
	d.log.Debug("torrent released", "hash", hash, "delete_files", deleteFiles)
	return nil
}

// CleanupDir removes dir recursively. File handles held by the client may
// linger briefly, so each attempt is preceded by a growing pause.
func (d *TorrentDownloader) CleanupDir(ctx context.Context, dir string) error {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	var err error
	for attempt, wait := range cleanupBackoff {
		if serr := d.sleep(ctx, wait); serr != nil {
			return serr
		}
		if err = os.RemoveAll(dir); err == nil {
			d.log.Debug("temp directory removed", "dir", dir)
			return nil
		}
		d.log.Warn("cleanup attempt failed", "dir", dir, "attempt", attempt+1, "error", err)
	}
	return fmt.Errorf("remove %s: %w", dir, err)
}

func (d *TorrentDownloader) publish(ctx context.Context, e events.Event) {
	if d.bus == nil {
		return
	}
	if err := d.bus.Publish(ctx, e); err != nil {
		d.log.Debug("publish failed", "type", e.EventType(), "error", err)
	}
}
