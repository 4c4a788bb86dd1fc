package ingest

import (
	"context"
	"time"

	"github.com/vmunix/mediaportal/internal/download"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

// Fetcher downloads covers, book files and audio archives.
type Fetcher interface {
	DownloadFile(ctx context.Context, rawURL, destPath, referer string) error
}

// TorrentDownloader runs the torrent job behind a movie.
type TorrentDownloader interface {
	Ping(ctx context.Context) error
	DownloadViaTorrent(ctx context.Context, torrentURL, destDir, referer string, timeout time.Duration) (*download.TorrentResult, error)
	Release(ctx context.Context, hash string) error
	CleanupDir(ctx context.Context, dir string) error
}

// Transcoder produces the browser-playable movie file.
type Transcoder interface {
	Check(ctx context.Context) error
	Convert(ctx context.Context, in, out string) error
}

var (
	_ Fetcher           = (*download.Fetcher)(nil)
	_ TorrentDownloader = (*download.TorrentDownloader)(nil)
)
