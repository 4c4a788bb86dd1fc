// Package download fetches files over HTTP and drives torrent jobs to completion.
package download

import "context"

// TorrentState is a client-neutral torrent state.
type TorrentState string

const (
	StateQueued      TorrentState = "queued"
	StateMetadata    TorrentState = "metadata"
	StateChecking    TorrentState = "checking"
	StateDownloading TorrentState = "downloading"
	StateStalled     TorrentState = "stalled"
	StatePaused      TorrentState = "paused"
	StateSeeding     TorrentState = "seeding"
	StateError       TorrentState = "error"
	StateUnknown     TorrentState = "unknown"
)

// IsComplete reports whether the client considers the payload fully downloaded.
func (s TorrentState) IsComplete() bool { return s == StateSeeding }

// TorrentStatus is a point-in-time view of a job in the client.
type TorrentStatus struct {
	Hash         string
	Name         string
	Progress     float64 // 0.0 - 100.0
	State        TorrentState
	RawState     string // client-specific state string
	DownloadRate int64  // bytes/sec
	Seeds        int
	SavePath     string
}

// TorrentFile is a file belonging to a job.
// Path is absolute when the client reports a save path.
type TorrentFile struct {
	Path string
	Size int64
}

// TorrentClient is the port to an external BitTorrent client.
type TorrentClient interface {
	// Ping verifies the client is reachable and the credentials work.
	Ping(ctx context.Context) error
	// Add submits a .torrent payload and returns the job hash.
	Add(ctx context.Context, torrent []byte, savePath string) (string, error)
	// Status returns the job's current status, or ErrTorrentNotFound.
	Status(ctx context.Context, hash string) (*TorrentStatus, error)
	// Files lists the job's files.
	Files(ctx context.Context, hash string) ([]TorrentFile, error)
	// Pause stops transfer without removing the job.
	Pause(ctx context.Context, hash string) error
	// Remove deletes the job, optionally with its data.
	Remove(ctx context.Context, hash string, deleteFiles bool) error
}

// DataOwner is implemented by clients that ignore the save path given to Add
// and keep job data in a directory they manage.
type DataOwner interface {
	OwnsData() bool
}

func ownsData(c TorrentClient) bool {
	o, ok := c.(DataOwner)
	return ok && o.OwnsData()
}
