package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vmunix/mediaportal/internal/library"
	"github.com/vmunix/mediaportal/internal/postprocess"
	"github.com/vmunix/mediaportal/internal/source"
)

const (
	unknownDirector = "Unknown"
	unknownGenre    = "Неизвестно"

	// movieNameRunes is the title prefix used in movie file names.
	movieNameRunes = 50
)

// ingestMovie downloads the optional poster, runs the torrent job in a
// temporary directory and transcodes its largest video into the library.
// The torrent job is released and the temporary directory removed on every
// path out.
func (c *Coordinator) ingestMovie(ctx context.Context, log *slog.Logger, rec *library.MediaRecord, cand *source.Candidate, pending *PendingFiles) error {
	dir := filepath.Join(c.cfg.UploadsDir, "movies")

	if cand.CoverURL != "" {
		thumb := filepath.Join(dir, fmt.Sprintf("%d_thumb%s", rec.ID, imageExt(cand.CoverURL)))
		if c.fetchOptional(ctx, log, cand.CoverURL, thumb, cand.SourceURL, pending) {
			rec.ThumbnailPath = c.storedPath(thumb)
		}
	}

	tempDir := filepath.Join(c.cfg.TempTorrentsDir, fmt.Sprintf("movie_%d_%s", rec.ID, shortID(c.newID())))
	defer func() {
		if err := c.deps.Torrents.CleanupDir(context.WithoutCancel(ctx), tempDir); err != nil {
			log.Warn("temp directory left behind", "dir", tempDir, "error", err)
		}
	}()

	log.Info("torrent download started", "quality", cand.Quality, "size_gb", cand.SizeGB)
	res, err := c.deps.Torrents.DownloadViaTorrent(ctx, cand.DownloadURL, tempDir, cand.SourceURL, c.cfg.TorrentTimeout)
	if err != nil {
		return skip(DownloadFailed, fmt.Errorf("torrent: %w", err))
	}
	defer func() {
		if err := c.deps.Torrents.Release(context.WithoutCancel(ctx), res.Hash); err != nil {
			log.Warn("torrent release failed", "hash", res.Hash, "error", err)
		}
	}()

	out := filepath.Join(dir, fmt.Sprintf("%d_%s.mp4", rec.ID, postprocess.ShortName(rec.Title, movieNameRunes)))
	pending.Add(out)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := postprocess.TranscodeVideo(ctx, c.deps.Transcoder, res.VideoPath, out, false); err != nil {
		return skip(DownloadFailed, fmt.Errorf("transcode: %w", err))
	}

	rec.FilePath = c.storedPath(out)
	return nil
}

// shortID is the first eight characters of id, hyphens removed.
func shortID(id string) string {
	compact := make([]byte, 0, 8)
	for i := 0; i < len(id) && len(compact) < 8; i++ {
		if id[i] != '-' {
			compact = append(compact, id[i])
		}
	}
	return string(compact)
}
