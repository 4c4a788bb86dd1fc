// Package ingest turns source candidates into committed media records: it
// deduplicates, downloads the primary file and cover, post-processes them
// and rolls back the record and its files when any step fails.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/mediaportal/internal/download"
	"github.com/vmunix/mediaportal/internal/events"
	"github.com/vmunix/mediaportal/internal/library"
	"github.com/vmunix/mediaportal/internal/settings"
	"github.com/vmunix/mediaportal/internal/source"
)

// DefaultMaxAttempts is the number of candidates a cycle tries.
const DefaultMaxAttempts = 3

// Config holds the storage layout and cycle limits.
type Config struct {
	UploadsDir      string // parent of books/, audiobooks/ and movies/
	TempTorrentsDir string
	MaxAttempts     int
	TorrentTimeout  time.Duration
}

// Deps are the collaborators of a coordinator. Torrents and Transcoder are
// required for movies only; Bus is optional.
type Deps struct {
	Adapter    source.Adapter
	Store      *library.Store
	Fetcher    Fetcher
	Torrents   TorrentDownloader
	Transcoder Transcoder
	Bus        *events.Bus
}

// Result summarises one cycle.
type Result struct {
	CycleID  string
	Genre    string
	Attempts int
	Record   *library.MediaRecord // nil when nothing was ingested
	Reason   SkipReason           // reason of the last attempt when Record is nil
	Duration time.Duration
}

// Ingested reports whether the cycle committed a record.
func (r Result) Ingested() bool { return r.Record != nil }

// Coordinator runs discovery cycles for one category.
type Coordinator struct {
	cfg      Config
	category library.Category
	deps     Deps
	log      *slog.Logger

	now   func() time.Time
	newID func() string
}

// New creates a coordinator for the adapter's category.
func New(cfg Config, deps Deps, log *slog.Logger) (*Coordinator, error) {
	if deps.Adapter == nil || deps.Store == nil || deps.Fetcher == nil {
		return nil, errors.New("ingest: adapter, store and fetcher are required")
	}
	category := deps.Adapter.Category()
	if deps.Store.Category() != category {
		return nil, fmt.Errorf("%w: %s vs %s", ErrCategoryMismatch, category, deps.Store.Category())
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.TorrentTimeout <= 0 {
		cfg.TorrentTimeout = download.DefaultTorrentTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		cfg:      cfg,
		category: category,
		deps:     deps,
		log:      log.With("component", "ingest", "category", string(category)),
		now:      time.Now,
		newID:    uuid.NewString,
	}, nil
}

// Category returns the category this coordinator ingests.
func (c *Coordinator) Category() library.Category { return c.category }

// PickGenre chooses the genre of the next cycle from the operator's weights.
func (c *Coordinator) PickGenre(weights map[string]float64) string {
	return c.deps.Adapter.PickGenre(weights)
}

// RunCycle tries up to MaxAttempts candidates for genre and stops at the
// first committed record. A missing candidate ends the cycle early.
func (c *Coordinator) RunCycle(ctx context.Context, genre string, s settings.Settings, forced bool) Result {
	start := c.now()
	res := Result{CycleID: c.newID(), Genre: genre}
	log := c.log.With("cycle", res.CycleID, "genre", genre)
	log.Info("cycle started", "forced", forced, "max_attempts", c.cfg.MaxAttempts)
	c.publish(ctx, &events.CycleStarted{
		BaseEvent: events.NewBaseEvent(events.EventCycleStarted, string(c.category), 0),
		CycleID:   res.CycleID,
		Genre:     genre,
		Forced:    forced,
	})

	if err := c.preconditions(ctx); err != nil {
		log.Error("cycle skipped", "reason", PreconditionFailed, "error", err)
		res.Reason = PreconditionFailed
		return c.finish(ctx, log, res, start)
	}

	q := source.Query{
		Genre:         genre,
		MinYear:       s.MinYear,
		MinRating:     s.MinRating,
		MinFileSizeGB: s.MinFileSizeGB,
	}
	for n := 1; n <= c.cfg.MaxAttempts; n++ {
		if ctx.Err() != nil {
			log.Info("cycle cancelled", "attempt", n)
			break
		}
		res.Attempts = n
		out := c.attempt(ctx, log.With("attempt", n), res.CycleID, n, q)
		if out.Ingested() {
			res.Record, res.Reason = out.Record, ""
			break
		}
		res.Reason = out.Reason
		if out.Reason == NoCandidate {
			break
		}
	}
	return c.finish(ctx, log, res, start)
}

func (c *Coordinator) finish(ctx context.Context, log *slog.Logger, res Result, start time.Time) Result {
	res.Duration = c.now().Sub(start)
	e := &events.CycleCompleted{
		BaseEvent:  events.NewBaseEvent(events.EventCycleCompleted, string(c.category), 0),
		CycleID:    res.CycleID,
		Attempts:   res.Attempts,
		Reason:     string(res.Reason),
		DurationMS: res.Duration.Milliseconds(),
	}
	if res.Record != nil {
		e.RecordID = res.Record.ID
		e.ID = res.Record.ID
		log.Info("cycle completed", "record_id", res.Record.ID, "title", res.Record.Title,
			"attempts", res.Attempts, "duration", res.Duration)
	} else {
		log.Warn("cycle completed without a record", "reason", res.Reason,
			"attempts", res.Attempts, "duration", res.Duration)
	}
	c.publish(ctx, e)
	return res
}

// preconditions checks the external tools a movie cycle depends on.
func (c *Coordinator) preconditions(ctx context.Context) error {
	if c.category != library.CategoryMovies {
		return nil
	}
	if c.deps.Transcoder == nil || c.deps.Torrents == nil {
		return fmt.Errorf("%w: movies need a transcoder and a torrent client", ErrPrecondition)
	}
	if err := c.deps.Transcoder.Check(ctx); err != nil {
		return fmt.Errorf("%w: encoder: %w", ErrPrecondition, err)
	}
	if err := c.deps.Torrents.Ping(ctx); err != nil {
		return fmt.Errorf("%w: torrent client: %w", ErrPrecondition, err)
	}
	return nil
}

// attempt runs one candidate through validation, provisioning,
// materialisation and commit.
func (c *Coordinator) attempt(ctx context.Context, log *slog.Logger, cycleID string, n int, q source.Query) Outcome {
	cand := c.deps.Adapter.Suggest(ctx, q)
	if cand == nil {
		log.Info("no candidate")
		return c.skipped(ctx, cycleID, n, nil, NoCandidate, "")
	}
	log = log.With("title", cand.Title)
	log.Info("candidate suggested", "creator", cand.Creator, "url", cand.SourceURL)

	if strings.TrimSpace(cand.DownloadURL) == "" {
		log.Info("candidate skipped", "reason", NoDownloadLink)
		return c.skipped(ctx, cycleID, n, cand, NoDownloadLink, "")
	}
	if err := c.validate(cand); err != nil {
		log.Info("candidate skipped", "reason", ValidationFailed, "error", err)
		return c.skipped(ctx, cycleID, n, cand, ValidationFailed, err.Error())
	}

	rec := c.provisional(cand)
	if err := c.deps.Store.AddIfAbsent(rec); err != nil {
		if errors.Is(err, library.ErrDuplicate) {
			log.Info("candidate skipped", "reason", DuplicateFound, "creator", rec.Creator)
			return c.skipped(ctx, cycleID, n, cand, DuplicateFound, "")
		}
		log.Error("provisional insert failed", "error", err)
		return c.skipped(ctx, cycleID, n, cand, ValidationFailed, err.Error())
	}
	log = log.With("record_id", rec.ID)
	log.Debug("record provisioned")
	c.publish(ctx, &events.RecordProvisioned{
		BaseEvent: events.NewBaseEvent(events.EventRecordProvisioned, string(c.category), rec.ID),
		CycleID:   cycleID,
		Title:     rec.Title,
		Creator:   rec.Creator,
		SourceURL: rec.SourceURL,
	})

	pending := &PendingFiles{}
	if err := c.materializeGuarded(ctx, log, cycleID, n, rec, cand, pending); err != nil {
		return c.rollback(ctx, log, cycleID, n, rec, pending, err)
	}
	if err := c.deps.Store.Update(rec); err != nil {
		return c.rollback(ctx, log, cycleID, n, rec, pending, skip(ValidationFailed, fmt.Errorf("commit: %w", err)))
	}
	pending.Commit()

	filePath := ""
	if rec.FilePath != nil {
		filePath = *rec.FilePath
	}
	thumbPath := ""
	if rec.ThumbnailPath != nil {
		thumbPath = *rec.ThumbnailPath
	}
	log.Info("record ingested", "file", filePath, "thumbnail", thumbPath)
	c.publish(ctx, &events.RecordIngested{
		BaseEvent:     events.NewBaseEvent(events.EventRecordIngested, string(c.category), rec.ID),
		CycleID:       cycleID,
		Title:         rec.Title,
		FilePath:      filePath,
		ThumbnailPath: thumbPath,
	})
	return Outcome{Record: rec}
}

// materializeGuarded rolls back before re-raising a panic, so a crashing
// step never leaves a provisional record behind.
func (c *Coordinator) materializeGuarded(ctx context.Context, log *slog.Logger, cycleID string, n int,
	rec *library.MediaRecord, cand *source.Candidate, pending *PendingFiles) error {
	defer func() {
		if r := recover(); r != nil {
			c.rollback(ctx, log, cycleID, n, rec, pending, fmt.Errorf("panic: %v", r))
			panic(r)
		}
	}()

	switch c.category {
	case library.CategoryBooks:
		return c.ingestBook(ctx, log, rec, cand, pending)
	case library.CategoryAudiobooks:
		return c.ingestAudiobook(ctx, log, rec, cand, pending)
	case library.CategoryMovies:
		return c.ingestMovie(ctx, log, rec, cand, pending)
	}
	return fmt.Errorf("%w: %s", library.ErrUnknownCategory, c.category)
}

func (c *Coordinator) validate(cand *source.Candidate) error {
	if strings.TrimSpace(cand.Title) == "" {
		return errors.New("candidate has no title")
	}
	if c.category == library.CategoryBooks && strings.TrimSpace(cand.CoverURL) == "" {
		return ErrMissingCover
	}
	return nil
}

// provisional builds the record inserted before any download.
func (c *Coordinator) provisional(cand *source.Candidate) *library.MediaRecord {
	rec := &library.MediaRecord{
		Category:    c.category,
		Title:       cand.Title,
		Creator:     cand.Creator,
		Genre:       cand.Genre,
		Rating:      cand.Rating,
		Description: cand.Description,
		Source:      library.SourceAutoDiscovery,
		SourceURL:   cand.SourceURL,
	}
	if cand.Year > 0 {
		year := cand.Year
		rec.Year = &year
	}

	switch c.category {
	case library.CategoryBooks:
		rec.TotalPages = 1
	case library.CategoryAudiobooks:
		if rec.Year == nil {
			year := defaultAudiobookYear
			rec.Year = &year
		}
		rec.Narrator = cand.Narrator
	case library.CategoryMovies:
		if strings.TrimSpace(rec.Creator) == "" {
			rec.Creator = unknownDirector
		}
		if strings.TrimSpace(rec.Genre) == "" {
			rec.Genre = unknownGenre
		}
		rec.Quality = cand.Quality
		rec.Translation = cand.Translation
		rec.SizeBytes = int64(cand.SizeGB * (1 << 30))
	}
	return rec
}

// rollback releases the attempt's files and deletes the provisional record.
func (c *Coordinator) rollback(ctx context.Context, log *slog.Logger, cycleID string, n int,
	rec *library.MediaRecord, pending *PendingFiles, cause error) Outcome {
	reason := reasonOf(cause)
	removed := pending.Release()
	if err := c.deps.Store.Delete(rec.ID); err != nil && !errors.Is(err, library.ErrNotFound) {
		log.Error("failed to delete provisional record", "error", err)
	}
	log.Warn("attempt rolled back", "reason", reason, "files_removed", removed, "error", cause)

	c.publish(ctx, &events.RecordRolledBack{
		BaseEvent:    events.NewBaseEvent(events.EventRecordRolledBack, string(c.category), rec.ID),
		CycleID:      cycleID,
		Title:        rec.Title,
		Reason:       string(reason),
		Error:        cause.Error(),
		FilesRemoved: removed,
	})
	return c.skipped(ctx, cycleID, n, &source.Candidate{Title: rec.Title, Creator: rec.Creator}, reason, cause.Error())
}

func (c *Coordinator) skipped(ctx context.Context, cycleID string, n int, cand *source.Candidate, reason SkipReason, detail string) Outcome {
	e := &events.CandidateSkipped{
		BaseEvent: events.NewBaseEvent(events.EventCandidateSkipped, string(c.category), 0),
		CycleID:   cycleID,
		Attempt:   n,
		Reason:    string(reason),
		Detail:    detail,
	}
	if cand != nil {
		e.Title = cand.Title
		e.Creator = cand.Creator
	}
	c.publish(ctx, e)
	return Outcome{Reason: reason, Detail: detail}
}

// fetch downloads rawURL to dest after registering dest as pending.
func (c *Coordinator) fetch(ctx context.Context, rawURL, dest, referer string, pending *PendingFiles) error {
	pending.Add(dest)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}
	return c.deps.Fetcher.DownloadFile(ctx, rawURL, dest, referer)
}

// fetchOptional downloads a cover that the record can live without. A failed
// download is removed and reported as false.
func (c *Coordinator) fetchOptional(ctx context.Context, log *slog.Logger, rawURL, dest, referer string, pending *PendingFiles) bool {
	if err := c.fetch(ctx, rawURL, dest, referer, pending); err != nil {
		log.Warn("optional cover download failed", "url", rawURL, "error", err)
		pending.Drop(dest)
		return false
	}
	return true
}

// storedPath is the path recorded in the database: relative to the parent
// of the uploads directory, with forward slashes ("uploads/books/1.epub").
func (c *Coordinator) storedPath(abs string) *string {
	p := abs
	if rel, err := filepath.Rel(filepath.Dir(filepath.Clean(c.cfg.UploadsDir)), abs); err == nil {
		p = rel
	}
	p = filepath.ToSlash(p)
	return &p
}

// imageExt returns the extension of an image URL's path, ".jpg" when absent.
func imageExt(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if ext == "" || len(ext) > 5 {
		return ".jpg"
	}
	return ext
}

func (c *Coordinator) publish(ctx context.Context, e events.Event) {
	if c.deps.Bus == nil {
		return
	}
	if err := c.deps.Bus.Publish(ctx, e); err != nil {
		c.log.Debug("publish failed", "type", e.EventType(), "error", err)
	}
}
