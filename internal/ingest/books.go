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

// minEpubPages rejects EPUBs that are previews or broken conversions.
const minEpubPages = 10

// bookExtensions maps download URL markers to file extensions, checked in order.
var bookExtensions = []string{"epub", "mobi", "pdf", "fb2"}

// ingestBook downloads the mandatory cover and the book file. EPUBs are
// page-counted and short ones rejected.
func (c *Coordinator) ingestBook(ctx context.Context, log *slog.Logger, rec *library.MediaRecord, cand *source.Candidate, pending *PendingFiles) error {
	dir := filepath.Join(c.cfg.UploadsDir, "books")

	thumb := filepath.Join(dir, fmt.Sprintf("%d_thumb%s", rec.ID, imageExt(cand.CoverURL)))
	if err := c.fetch(ctx, cand.CoverURL, thumb, cand.SourceURL, pending); err != nil {
		return skip(DownloadFailed, fmt.Errorf("cover: %w", err))
	}
	rec.ThumbnailPath = c.storedPath(thumb)

	ext := bookExt(cand.DownloadURL)
	file := filepath.Join(dir, fmt.Sprintf("%d_auto_added%s", rec.ID, ext))
	if err := c.fetch(ctx, cand.DownloadURL, file, cand.SourceURL, pending); err != nil {
		return skip(DownloadFailed, fmt.Errorf("book file: %w", err))
	}

	if ext == ".epub" {
		pages, err := postprocess.CountEpubPages(file)
		if err != nil {
			return skip(ValidationFailed, err)
		}
		if pages < minEpubPages {
			return skip(ValidationFailed, fmt.Errorf("%w: %d < %d", ErrEpubTooShort, pages, minEpubPages))
		}
		rec.TotalPages = pages
		log.Debug("epub page count", "pages", pages)
	}

	rec.FilePath = c.storedPath(file)
	return nil
}

// bookExt picks the file extension from the download URL, ".epub" by default.
func bookExt(rawURL string) string {
	lower := strings.ToLower(rawURL)
	for _, format := range bookExtensions {
		if strings.Contains(lower, "."+format) || strings.HasSuffix(lower, "/"+format) {
			return "." + format
		}
	}
	return ".epub"
}
