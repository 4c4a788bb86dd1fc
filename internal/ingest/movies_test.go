package ingest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/mediaportal/internal/download"
	"github.com/vmunix/mediaportal/internal/events"
	"github.com/vmunix/mediaportal/internal/ingest"
	"github.com/vmunix/mediaportal/internal/library"
	"github.com/vmunix/mediaportal/internal/settings"
	"github.com/vmunix/mediaportal/internal/source"
)

func movieCandidate() *source.Candidate {
	return &source.Candidate{
		Category:    library.CategoryMovies,
		Title:       "Дюна",
		Year:        2021,
		Rating:      7.9,
		DownloadURL: "http://kinorush.test/index.php?do=download&id=2",
		SourceURL:   "http://kinorush.test/films/101-dyuna.html",
		Quality:     "BDRip 2160p",
		Translation: "Дубляж",
		SizeGB:      8,
	}
}

// torrentWrites stubs a torrent job that leaves a video in destDir.
func torrentWrites(hash string) func(ctx context.Context, torrentURL, destDir, referer string, timeout time.Duration) (*download.TorrentResult, error) {
	return func(_ context.Context, _, destDir, _ string, _ time.Duration) (*download.TorrentResult, error) {
		video := filepath.Join(destDir, "Dune.2021.mkv")
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(video, []byte("matroska"), 0o644); err != nil {
			return nil, err
		}
		return &download.TorrentResult{VideoPath: video, Hash: hash}, nil
	}
}

func removesDir(_ context.Context, dir string) error { return os.RemoveAll(dir) }

func TestRunCycle_MovieIngested(t *testing.T) {
	h := newHarness(t, library.CategoryMovies)
	cand := movieCandidate()

	var tempDir string
	gomock.InOrder(
		h.encoder.EXPECT().Check(gomock.Any()).Return(nil),
		h.torrents.EXPECT().Ping(gomock.Any()).Return(nil),
		h.adapter.EXPECT().Suggest(gomock.Any(), gomock.Any()).Return(cand),
		h.torrents.EXPECT().
			DownloadViaTorrent(gomock.Any(), cand.DownloadURL, gomock.Any(), cand.SourceURL, download.DefaultTorrentTimeout).
			DoAndReturn(func(ctx context.Context, torrentURL, destDir, referer string, timeout time.Duration) (*download.TorrentResult, error) {
				tempDir = destDir
				return torrentWrites("abc123")(ctx, torrentURL, destDir, referer, timeout)
			}),
		h.encoder.EXPECT().Convert(gomock.Any(), gomock.Any(), filepath.Join(h.uploads, "movies", "1_Дюна.mp4")).
			DoAndReturn(func(_ context.Context, in, out string) error {
				assert.Equal(t, "Dune.2021.mkv", filepath.Base(in))
				return os.WriteFile(out, []byte("mp4"), 0o644)
			}),
		h.torrents.EXPECT().Release(gomock.Any(), "abc123").Return(nil),
		h.torrents.EXPECT().CleanupDir(gomock.Any(), gomock.Any()).DoAndReturn(removesDir),
	)

	res := h.coord.RunCycle(context.Background(), "Фантастика", settings.Defaults(), false)

	require.True(t, res.Ingested(), "reason: %s", res.Reason)
	rec := res.Record
	assert.Equal(t, "uploads/movies/1_Дюна.mp4", *rec.FilePath)
	assert.Nil(t, rec.ThumbnailPath, "no poster offered")
	assert.Equal(t, "Unknown", rec.Creator)
	assert.Equal(t, "Неизвестно", rec.Genre)
	assert.Equal(t, "BDRip 2160p", rec.Quality)
	assert.Equal(t, "Дубляж", rec.Translation)
	assert.Equal(t, int64(8)<<30, rec.SizeBytes)

	assert.Equal(t, h.temp, filepath.Dir(tempDir))
	assert.True(t, strings.HasPrefix(filepath.Base(tempDir), "movie_1_"), tempDir)
	assert.NoDirExists(t, tempDir)
	assert.Equal(t, []string{"uploads/movies/1_Дюна.mp4"}, h.files(t))
}

func TestRunCycle_MoviePreconditions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
	}{
		{"encoder missing", func(h *harness) {
			h.encoder.EXPECT().Check(gomock.Any()).Return(errors.New("ffmpeg: executable file not found"))
		}},
		{"torrent client down", func(h *harness) {
			h.encoder.EXPECT().Check(gomock.Any()).Return(nil)
			h.torrents.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, library.CategoryMovies)
			tt.setup(h)

			res := h.coord.RunCycle(context.Background(), "Фантастика", settings.Defaults(), false)

			assert.Equal(t, ingest.PreconditionFailed, res.Reason)
			assert.Zero(t, res.Attempts, "no candidate is requested")
			assert.Equal(t, []string{events.EventCycleStarted, events.EventCycleCompleted}, h.eventTypes())
		})
	}
}

func TestRunCycle_MovieTranscodeFailure(t *testing.T) {
	h := newHarness(t, library.CategoryMovies)
	cand := movieCandidate()
	cand.CoverURL = "http://kinorush.test/uploads/poster.jpg"

	h.encoder.EXPECT().Check(gomock.Any()).Return(nil)
	h.torrents.EXPECT().Ping(gomock.Any()).Return(nil)
	h.adapter.EXPECT().Suggest(gomock.Any(), gomock.Any()).Return(cand)
	h.adapter.EXPECT().Suggest(gomock.Any(), gomock.Any()).Return(nil)
	h.fetcher.EXPECT().
		DownloadFile(gomock.Any(), cand.CoverURL, filepath.Join(h.uploads, "movies", "1_thumb.jpg"), cand.SourceURL).
		DoAndReturn(writes([]byte("jpeg")))
	h.torrents.EXPECT().DownloadViaTorrent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(torrentWrites("abc123"))
	h.encoder.EXPECT().Convert(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, out string) error {
			_ = os.WriteFile(out, []byte("half"), 0o644)
			return errors.New("ffmpeg exited with status 1")
		})
	h.torrents.EXPECT().Release(gomock.Any(), "abc123").Return(nil)
	h.torrents.EXPECT().CleanupDir(gomock.Any(), gomock.Any()).DoAndReturn(removesDir)

	res := h.coord.RunCycle(context.Background(), "Фантастика", settings.Defaults(), false)

	assert.False(t, res.Ingested())
	assert.Equal(t, 0, h.count(t))
	assert.Empty(t, h.files(t), "poster and partial output removed")

	rollbacks := h.rolledBack()
	require.Len(t, rollbacks, 1)
	assert.Equal(t, string(ingest.DownloadFailed), rollbacks[0].Reason)
	assert.Equal(t, 2, rollbacks[0].FilesRemoved)
}

func TestRunCycle_MovieTorrentTimeout(t *testing.T) {
	h := newHarness(t, library.CategoryMovies)
	cand := movieCandidate()

	h.encoder.EXPECT().Check(gomock.Any()).Return(nil)
	h.torrents.EXPECT().Ping(gomock.Any()).Return(nil)
	h.adapter.EXPECT().Suggest(gomock.Any(), gomock.Any()).Return(cand).Times(ingest.DefaultMaxAttempts)
	h.torrents.EXPECT().DownloadViaTorrent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, download.ErrTimeout).Times(ingest.DefaultMaxAttempts)
	h.torrents.EXPECT().CleanupDir(gomock.Any(), gomock.Any()).Return(nil).Times(ingest.DefaultMaxAttempts)

	res := h.coord.RunCycle(context.Background(), "Фантастика", settings.Defaults(), false)

	assert.Equal(t, ingest.DownloadFailed, res.Reason)
	assert.Equal(t, ingest.DefaultMaxAttempts, res.Attempts)
	assert.Equal(t, 0, h.count(t))
}
