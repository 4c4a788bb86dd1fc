package download

import "errors"

// Sentinel errors for the download package.
var (
	// ErrClientUnavailable is returned when the torrent client cannot be reached.
	ErrClientUnavailable = errors.New("torrent client unavailable")

	// ErrAuthFailed is returned when the torrent client rejects the credentials.
	ErrAuthFailed = errors.New("torrent client authentication failed")

	// ErrTorrentNotFound is returned when a job is not known to the client.
	ErrTorrentNotFound = errors.New("torrent not found in client")

	// ErrNotTorrentFile is returned when a .torrent URL serves an HTML page.
	ErrNotTorrentFile = errors.New("response is not a torrent file")

	// ErrDownloadFailed is returned when every attempt to fetch a file failed.
	ErrDownloadFailed = errors.New("download failed")

	// ErrStalled is returned when a job made no progress for the stall timeout.
	ErrStalled = errors.New("torrent stalled")

	// ErrTimeout is returned when a job did not complete in time.
	ErrTimeout = errors.New("torrent timed out")

	// ErrTorrentFailed is returned when the client reports an error state.
	ErrTorrentFailed = errors.New("torrent failed")

	// ErrInvalidTransition is returned for a job status change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid job status transition")
)
