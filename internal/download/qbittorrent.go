package download

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// QBittorrentClient talks to the qBittorrent Web API v2.
type QBittorrentClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	log        *slog.Logger

	mu       sync.Mutex
	loggedIn bool

	// hashLookupAttempts and hashLookupDelay bound the search for a freshly
	// added torrent, which qBittorrent registers asynchronously.
	hashLookupAttempts int
	hashLookupDelay    time.Duration
}

// NewQBittorrentClient creates a new qBittorrent client.
func NewQBittorrentClient(baseURL, username, password string, log *slog.Logger) *QBittorrentClient {
	if log == nil {
		log = slog.Default()
	}
	jar, _ := cookiejar.New(nil)
	return &QBittorrentClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		password: password,
		log:      log.With("component", "qbittorrent"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		hashLookupAttempts: 5,
		hashLookupDelay:    time.Second,
	}
}

// Ping logs in and reads the application version.
func (c *QBittorrentClient) Ping(ctx context.Context) error {
	if err := c.ensureLogin(ctx); err != nil {
		return err
	}
	var version string
	if err := c.doRequest(ctx, http.MethodGet, "app/version", nil, nil, &version); err != nil {
		return err
	}
	c.log.Debug("qbittorrent reachable", "version", version)
	return nil
}

// Add uploads a .torrent payload into savePath and returns its hash.
// qBittorrent does not return the hash, so the job is located by its save path.
func (c *QBittorrentClient) Add(ctx context.Context, torrent []byte, savePath string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("torrents", "download.torrent")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(torrent); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	_ = mw.WriteField("savepath", savePath)
	_ = mw.WriteField("paused", "false")
	_ = mw.WriteField("root_folder", "true")
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	var resp string
	if err := c.doRequest(ctx, http.MethodPost, "torrents/add", &body, map[string]string{
		"Content-Type": mw.FormDataContentType(),
	}, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp) == "Fails." {
		return "", fmt.Errorf("qbittorrent rejected torrent")
	}
	c.log.Debug("torrent added", "save_path", savePath)

	for attempt := 0; attempt < c.hashLookupAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.hashLookupDelay); err != nil {
				return "", err
			}
		}
		hash, err := c.findBySavePath(ctx, savePath)
		if err != nil {
			return "", err
		}
		if hash != "" {
			c.log.Debug("torrent located", "hash", hash)
			return hash, nil
		}
	}
	return "", fmt.Errorf("locate torrent in %s: %w", savePath, ErrTorrentNotFound)
}

// Status returns the job's current status.
func (c *QBittorrentClient) Status(ctx context.Context, hash string) (*TorrentStatus, error) {
	items, err := c.list(ctx, url.Values{"hashes": {hash}})
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if strings.EqualFold(item.Hash, hash) {
			return item.toStatus(), nil
		}
	}
	return nil, ErrTorrentNotFound
}

// Files lists the job's files with absolute paths.
func (c *QBittorrentClient) Files(ctx context.Context, hash string) ([]TorrentFile, error) {
	st, err := c.Status(ctx, hash)
	if err != nil {
		return nil, err
	}

	var resp []qbFile
	if err := c.doRequest(ctx, http.MethodGet, "torrents/files?"+url.Values{"hash": {hash}}.Encode(), nil, nil, &resp); err != nil {
		return nil, err
	}
	files := make([]TorrentFile, 0, len(resp))
	for _, f := range resp {
		files = append(files, TorrentFile{
			Path: filepath.Join(st.SavePath, filepath.FromSlash(f.Name)),
			Size: f.Size,
		})
	}
	return files, nil
}

// Pause stops the job.
func (c *QBittorrentClient) Pause(ctx context.Context, hash string) error {
	form := url.Values{"hashes": {hash}}
	return c.postForm(ctx, "torrents/pause", form)
}

// Remove deletes the job, optionally with its data.
func (c *QBittorrentClient) Remove(ctx context.Context, hash string, deleteFiles bool) error {
	c.log.Debug("removing torrent", "hash", hash, "delete_files", deleteFiles)
	form := url.Values{
		"hashes":      {hash},
		"deleteFiles": {fmt.Sprintf("%t", deleteFiles)},
	}
	return c.postForm(ctx, "torrents/delete", form)
}

func (c *QBittorrentClient) findBySavePath(ctx context.Context, savePath string) (string, error) {
	items, err := c.list(ctx, nil)
	if err != nil {
		return "", err
	}
	want := normalizeSavePath(savePath)
	for _, item := range items {
		if normalizeSavePath(item.SavePath) == want {
			return item.Hash, nil
		}
	}
	return "", nil
}

func (c *QBittorrentClient) list(ctx context.Context, params url.Values) ([]qbTorrent, error) {
	path := "torrents/info"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var resp []qbTorrent
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *QBittorrentClient) postForm(ctx context.Context, path string, form url.Values) error {
	return c.doRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	}, nil)
}

// ensureLogin authenticates once; the SID cookie lives in the jar.
func (c *QBittorrentClient) ensureLogin(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedIn {
		return nil
	}
	return c.login(ctx)
}

func (c *QBittorrentClient) login(ctx context.Context) error {
	form := url.Values{"username": {c.username}, "password": {c.password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", c.baseURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("login request failed", "error", err)
		return ErrClientUnavailable
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "Ok." {
		c.log.Debug("login rejected", "status", resp.StatusCode)
		return ErrAuthFailed
	}
	c.loggedIn = true
	return nil
}

// doRequest performs an authenticated API call. A 403 means the session
// expired; the client logs in again and retries once.
func (c *QBittorrentClient) doRequest(ctx context.Context, method, path string, body io.Reader, headers map[string]string, result any) error {
	if err := c.ensureLogin(ctx); err != nil {
		return err
	}

	// The body may need to be replayed after a re-login.
	var payload []byte
	if body != nil {
		var err error
		if payload, err = io.ReadAll(body); err != nil {
			return fmt.Errorf("read request body: %w", err)
		}
	}

	for attempt := 0; attempt < 2; attempt++ {
		start := time.Now()
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v2/"+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.log.Debug("api request failed", "path", path, "error", err)
			return ErrClientUnavailable
		}

		if resp.StatusCode == http.StatusForbidden && attempt == 0 {
			_ = resp.Body.Close()
			c.log.Debug("session expired, logging in again", "path", path)
			c.mu.Lock()
			c.loggedIn = false
			err := c.login(ctx)
			c.mu.Unlock()
			if err != nil {
				return err
			}
			continue
		}

		err = decodeResponse(resp, result)
		_ = resp.Body.Close()
		if err != nil {
			c.log.Debug("api request error", "path", path, "status", resp.StatusCode, "error", err)
			return err
		}
		c.log.Debug("api request complete", "path", path, "duration_ms", time.Since(start).Milliseconds())
		return nil
	}
	return ErrAuthFailed
}

func decodeResponse(resp *http.Response, result any) error {
	if resp.StatusCode == http.StatusNotFound {
		return ErrTorrentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	switch r := result.(type) {
	case nil:
		return nil
	case *string:
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		*r = string(b)
		return nil
	default:
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}

// Response types for the qBittorrent API

type qbTorrent struct {
	Hash     string  `json:"hash"`
	Name     string  `json:"name"`
	Progress float64 `json:"progress"` // 0.0 - 1.0
	State    string  `json:"state"`
	DLSpeed  int64   `json:"dlspeed"`
	NumSeeds int     `json:"num_seeds"`
	SavePath string  `json:"save_path"`
}

type qbFile struct {
	Name     string  `json:"name"`
	Size     int64   `json:"size"`
	Progress float64 `json:"progress"`
}

func (t *qbTorrent) toStatus() *TorrentStatus {
	return &TorrentStatus{
		Hash:         t.Hash,
		Name:         t.Name,
		Progress:     t.Progress * 100,
		State:        mapQBittorrentState(t.State),
		RawState:     t.State,
		DownloadRate: t.DLSpeed,
		Seeds:        t.NumSeeds,
		SavePath:     t.SavePath,
	}
}

// mapQBittorrentState maps qBittorrent's state strings to TorrentState.
func mapQBittorrentState(state string) TorrentState {
	switch state {
	case "uploading", "stalledUP", "pausedUP", "stoppedUP", "forcedUP", "queuedUP", "checkingUP":
		return StateSeeding
	case "downloading", "forcedDL":
		return StateDownloading
	case "stalledDL":
		return StateStalled
	case "metaDL", "forcedMetaDL":
		return StateMetadata
	case "checkingDL", "checkingResumeData", "allocating", "moving":
		return StateChecking
	case "queuedDL":
		return StateQueued
	case "pausedDL", "stoppedDL":
		return StatePaused
	case "error", "missingFiles":
		return StateError
	default:
		return StateUnknown
	}
}

func normalizeSavePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.ToLower(strings.TrimRight(p, "/"))
}
