package download

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/cenkalti/rain/rainrpc"
	"github.com/google/uuid"
)

// RainClient drives a rain torrent daemon over its JSON-RPC API.
// rain keeps each torrent's data under <DataDir>/<id>; the save path passed
// to Add is ignored in favour of that layout.
type RainClient struct {
	rpc     *rainrpc.Client
	dataDir string
	log     *slog.Logger
}

// NewRainClient creates a rain client. dataDir must match the daemon's data directory.
func NewRainClient(rpcURL, dataDir string, log *slog.Logger) *RainClient {
	if log == nil {
		log = slog.Default()
	}
	return &RainClient{
		rpc:     rainrpc.NewClient(rpcURL),
		dataDir: dataDir,
		log:     log.With("component", "rain"),
	}
}

// Ping lists torrents to verify the daemon answers.
func (c *RainClient) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.rpc.ListTorrents(); err != nil {
		c.log.Debug("rain unreachable", "error", err)
		return fmt.Errorf("%w: %v", ErrClientUnavailable, err)
	}
	return nil
}

// Add submits the payload under a fresh ID and returns that ID as the hash.
func (c *RainClient) Add(ctx context.Context, torrent []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := c.rpc.AddTorrent(bytes.NewReader(torrent), &rainrpc.AddTorrentOptions{ID: id}); err != nil {
		return "", fmt.Errorf("rain add torrent: %w", err)
	}
	c.log.Debug("torrent added", "id", id)
	return id, nil
}

// Status maps rain's stats to a TorrentStatus.
func (c *RainClient) Status(ctx context.Context, id string) (*TorrentStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stats, err := c.rpc.GetTorrentStats(id)
	if err != nil {
		if isRainNotFound(err) {
			return nil, ErrTorrentNotFound
		}
		return nil, fmt.Errorf("rain torrent stats %s: %w", id, err)
	}

	var progress float64
	if stats.Bytes.Total > 0 {
		progress = float64(stats.Bytes.Completed) / float64(stats.Bytes.Total) * 100
	}
	return &TorrentStatus{
		Hash:         id,
		Progress:     progress,
		State:        mapRainState(stats.Status),
		RawState:     stats.Status,
		DownloadRate: int64(stats.Speed.Download),
		Seeds:        int(stats.Peers.Total),
		SavePath:     c.savePath(id),
	}, nil
}

// Files lists the torrent's files under its data directory.
func (c *RainClient) Files(ctx context.Context, id string) ([]TorrentFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stats, err := c.rpc.GetTorrentFileStats(id)
	if err != nil {
		if isRainNotFound(err) {
			return nil, ErrTorrentNotFound
		}
		return nil, fmt.Errorf("rain file stats %s: %w", id, err)
	}
	files := make([]TorrentFile, 0, len(stats))
	for i := range stats {
		files = append(files, TorrentFile{
			Path: filepath.Join(c.savePath(id), filepath.FromSlash(stats[i].File.Path)),
			Size: int64(stats[i].File.Length),
		})
	}
	return files, nil
}

// Pause stops the torrent.
func (c *RainClient) Pause(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.rpc.StopTorrent(id); err != nil {
		return fmt.Errorf("rain stop %s: %w", id, err)
	}
	return nil
}

// Remove deletes the torrent, keeping its data unless deleteFiles is set.
func (c *RainClient) Remove(ctx context.Context, id string, deleteFiles bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.log.Debug("removing torrent", "id", id, "delete_files", deleteFiles)
	if err := c.rpc.RemoveTorrent(id, !deleteFiles); err != nil {
		return fmt.Errorf("rain remove %s: %w", id, err)
	}
	return nil
}

// OwnsData reports true: payloads live under the daemon's data directory,
// outside any save path passed to Add.
func (c *RainClient) OwnsData() bool { return true }

func (c *RainClient) savePath(id string) string {
	return filepath.Join(c.dataDir, id)
}

var _ DataOwner = (*RainClient)(nil)

// mapRainState maps rain's status strings to TorrentState.
func mapRainState(status string) TorrentState {
	switch status {
	case "Seeding":
		return StateSeeding
	case "Downloading":
		return StateDownloading
	case "Downloading Metadata":
		return StateMetadata
	case "Allocating", "Verifying":
		return StateChecking
	case "Stopped", "Stopping":
		return StatePaused
	default:
		return StateUnknown
	}
}

// isRainNotFound detects rain's "torrent not found" server error. The RPC
// layer only exposes it as message text.
func isRainNotFound(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "torrent not found")
}
