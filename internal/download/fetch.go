package download

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultFetchTimeout bounds a single HTTP attempt.
	DefaultFetchTimeout = 30 * time.Second

	// defaultMaxRetries is the number of attempts DownloadFile makes.
	defaultMaxRetries = 3

	// UserAgent is sent with every scrape and download request.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
)

// Fetcher downloads covers, archives and .torrent files from scraped sites.
// TLS verification is disabled: the targets are mirrors with broken certificates.
type Fetcher struct {
	client     *resty.Client
	log        *slog.Logger
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
	jitter     func() time.Duration
}

// NewFetcher creates a fetcher. A zero timeout uses DefaultFetchTimeout.
func NewFetcher(timeout time.Duration, log *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	client := resty.New().
		SetTimeout(timeout).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}). //nolint:gosec // scraped mirrors
		SetHeaders(map[string]string{
			"User-Agent":      UserAgent,
			"Accept":          "*/*",
			"Accept-Language": "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7",
		})
	return &Fetcher{
		client:     client,
		log:        log.With("component", "fetcher"),
		maxRetries: defaultMaxRetries,
		sleep:      sleepCtx,
		jitter:     retryJitter,
	}
}

// DownloadFile streams rawURL to destPath, creating parent directories.
// Up to three attempts are made with a 2-5s pause before each retry. A 403 on
// an attempt that sent a Referer makes the next attempt go without one.
// A partial file may be left behind on failure; removing it is the caller's job.
func (f *Fetcher) DownloadFile(ctx context.Context, rawURL, destPath, referer string) error {
	if referer == "" {
		referer = defaultReferer(rawURL)
	}

	var lastErr error
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		if attempt > 1 {
			if err := f.sleep(ctx, f.jitter()); err != nil {
				return err
			}
		}

		status, err := f.downloadOnce(ctx, rawURL, destPath, referer)
		if err == nil {
			f.log.Debug("file downloaded", "url", rawURL, "path", destPath, "attempt", attempt)
			return nil
		}
		lastErr = err
		f.log.Warn("download attempt failed", "url", rawURL, "attempt", attempt, "error", err)

		if status == http.StatusForbidden && referer != "" {
			f.log.Debug("retrying without referer", "url", rawURL)
			referer = ""
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("%w: %s after %d attempts: %w", ErrDownloadFailed, rawURL, f.maxRetries, lastErr)
}

// downloadOnce makes one attempt and returns the HTTP status it saw (0 on transport error).
func (f *Fetcher) downloadOnce(ctx context.Context, rawURL, destPath, referer string) (int, error) {
	req := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if referer != "" {
		req.SetHeader("Referer", referer)
	}

	resp, err := req.Get(rawURL)
	if err != nil {
		return 0, fmt.Errorf("request: %w", err)
	}
	body := resp.RawBody()
	defer func() { _ = body.Close() }()

	if resp.StatusCode() >= http.StatusBadRequest {
		return resp.StatusCode(), fmt.Errorf("unexpected status: %d", resp.StatusCode())
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return resp.StatusCode(), fmt.Errorf("create directory: %w", err)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return resp.StatusCode(), fmt.Errorf("create file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, body); err != nil {
		return resp.StatusCode(), fmt.Errorf("write file: %w", err)
	}
	return resp.StatusCode(), out.Close()
}

// FetchTorrent downloads a .torrent payload. The referer page is requested
// first so the tracker sets its session cookies.
// Returns ErrNotTorrentFile when the site answers with an HTML page.
func (f *Fetcher) FetchTorrent(ctx context.Context, torrentURL, referer string) ([]byte, error) {
	if referer != "" {
		if _, err := f.client.R().SetContext(ctx).Get(referer); err != nil {
			f.log.Debug("referer warmup failed", "referer", referer, "error", err)
		}
	} else {
		referer = defaultReferer(torrentURL)
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Referer", referer).
		SetHeader("Accept", "application/x-bittorrent,*/*").
		Get(torrentURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDownloadFailed, torrentURL, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s: status %d", ErrDownloadFailed, torrentURL, resp.StatusCode())
	}

	body := resp.Body()
	if isHTML(resp.Header().Get("Content-Type"), body) {
		return nil, fmt.Errorf("%s: %w", torrentURL, ErrNotTorrentFile)
	}
	f.log.Debug("torrent fetched", "url", torrentURL, "bytes", len(body))
	return body, nil
}

func isHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := body
	if len(head) > 100 {
		head = head[:100]
	}
	head = bytes.ToLower(bytes.TrimSpace(head))
	return bytes.Contains(head, []byte("<!doctype")) || bytes.Contains(head, []byte("<html"))
}

// defaultReferer returns "scheme://host/" for rawURL, or "" if it cannot be parsed.
func defaultReferer(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/"
}

func retryJitter() time.Duration {
	return 2*time.Second + rand.N(3*time.Second)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
