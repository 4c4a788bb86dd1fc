package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/vmunix/mediaportal/internal/library"
	"github.com/vmunix/mediaportal/internal/postprocess"
	"github.com/vmunix/mediaportal/internal/source"
)

const (
	// defaultAudiobookYear is stored when the release page gives no year.
	defaultAudiobookYear = 2024

	// audiobookNameRunes is the title prefix used in audiobook file names.
	audiobookNameRunes = 30
)

// ingestAudiobook downloads the optional cover and either a single audio
// file or a zip archive that is extracted into the audiobook's directory.
func (c *Coordinator) ingestAudiobook(ctx context.Context, log *slog.Logger, rec *library.MediaRecord, cand *source.Candidate, pending *PendingFiles) error {
	dir := filepath.Join(c.cfg.UploadsDir, "audiobooks")

	if cand.CoverURL != "" {
		thumb := filepath.Join(dir, "thumbnails", fmt.Sprintf("thumb_%d%s", rec.ID, imageExt(cand.CoverURL)))
		if c.fetchOptional(ctx, log, cand.CoverURL, thumb, cand.SourceURL, pending) {
			rec.ThumbnailPath = c.storedPath(thumb)
		}
	}

	base := fmt.Sprintf("audiobook_%d_%s", rec.ID, postprocess.ShortName(rec.Title, audiobookNameRunes))
	if !strings.Contains(strings.ToLower(cand.DownloadURL), ".zip") {
		file := filepath.Join(dir, base+".mp3")
		if err := c.fetch(ctx, cand.DownloadURL, file, cand.SourceURL, pending); err != nil {
			return skip(DownloadFailed, fmt.Errorf("audio file: %w", err))
		}
		rec.FilePath = c.storedPath(file)
		return nil
	}

	archive := filepath.Join(dir, "temp_"+c.newID()+".zip")
	defer pending.Drop(archive)
	if err := c.fetch(ctx, cand.DownloadURL, archive, cand.SourceURL, pending); err != nil {
		return skip(DownloadFailed, fmt.Errorf("audio archive: %w", err))
	}

	bookDir := filepath.Join(dir, base)
	pending.Add(bookDir)
	if _, err := postprocess.Unzip(archive, bookDir); err != nil {
		return skip(ValidationFailed, err)
	}

	tracks := postprocess.FindAudioFiles(bookDir)
	if len(tracks) == 0 {
		return skip(ValidationFailed, ErrNoAudioFiles)
	}
	log.Debug("archive extracted", "dir", bookDir, "tracks", len(tracks))
	rec.FilePath = c.storedPath(tracks[0])

	if rec.ThumbnailPath == nil {
		if cover := postprocess.FindCoverImage(bookDir); cover != "" {
			rec.ThumbnailPath = c.storedPath(cover)
		}
	}
	return nil
}
