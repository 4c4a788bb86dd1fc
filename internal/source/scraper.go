package source

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
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"golang.org/x/net/html/charset"
)

// Scraper defaults.
const (
	DefaultTimeout   = 15 * time.Second
	DefaultCacheTTL  = 10 * time.Minute
	DefaultRetryWait = time.Second

	// maxAttempts covers the first request and its retries.
	maxAttempts = 5

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
)

// Config configures one adapter's scraper.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	CacheTTL  time.Duration
	RetryWait time.Duration
}

func (c *Config) applyDefaults() {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.RetryWait <= 0 {
		c.RetryWait = DefaultRetryWait
	}
}

// scraper is the HTTP and randomness plumbing shared by the adapters.
type scraper struct {
	baseURL string
	client  *resty.Client
	pages   *cache.Cache
	log     *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func newScraper(name string, cfg Config, log *slog.Logger) *scraper {
	cfg.applyDefaults()
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "source", "site", name)

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}). //nolint:gosec // scraped mirrors
		SetLogger(restyLogger{log}).
		SetHeaders(map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language": "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7",
		}).
		SetRetryCount(maxAttempts - 1).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(8 * cfg.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil || r == nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	now := uint64(time.Now().UnixNano())
	return &scraper{
		baseURL: cfg.BaseURL,
		client:  client,
		pages:   cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		log:     log,
		rng:     rand.New(rand.NewPCG(now, now>>1|1)),
	}
}

// seed makes the scraper's random choices reproducible.
func (s *scraper) seed(a, b uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = rand.New(rand.NewPCG(a, b))
}

func (s *scraper) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *scraper) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

func (s *scraper) shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(n, swap)
}

func (s *scraper) pickGenre(weights map[string]float64, vocabulary []string) string {
	return pickWeighted(weights, vocabulary, s.float, s.intn)
}

// absURL resolves href against the base URL.
func (s *scraper) absURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}
	base, err := url.Parse(s.baseURL + "/")
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// page fetches and parses a page. Relative URLs are resolved against the base.
func (s *scraper) page(ctx context.Context, rawURL string, headers map[string]string) (*goquery.Document, error) {
	target := s.absURL(rawURL)
	resp, err := s.client.R().SetContext(ctx).SetHeaders(headers).Get(target)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	body, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

// cachedPage is page for listing and search results, which are cached for
// the configured TTL.
func (s *scraper) cachedPage(ctx context.Context, rawURL string) (*goquery.Document, error) {
	target := s.absURL(rawURL)
	if body, ok := s.pages.Get(target); ok {
		s.log.Debug("listing cache hit", "url", target)
		return goquery.NewDocumentFromReader(strings.NewReader(body.(string)))
	}

	resp, err := s.client.R().SetContext(ctx).Get(target)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	body, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	s.pages.Set(target, body, cache.DefaultExpiration)
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

// postForm submits a urlencoded form and parses the response.
func (s *scraper) postForm(ctx context.Context, rawURL string, form, headers map[string]string) (*goquery.Document, error) {
	target := s.absURL(rawURL)
	resp, err := s.client.R().SetContext(ctx).SetHeaders(headers).SetFormData(form).Post(target)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", target, err)
	}
	body, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", target, err)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

// warmUp visits the base URL to collect session cookies. Errors are ignored.
func (s *scraper) warmUp(ctx context.Context) {
	if _, err := s.client.R().SetContext(ctx).Get(s.baseURL + "/"); err != nil {
		s.log.Debug("session warm-up failed", "error", err)
	}
}

// decodeBody checks the status and converts the body to UTF-8 using the
// declared or sniffed charset.
func decodeBody(resp *resty.Response) (string, error) {
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, code)
	}
	r, err := charset.NewReader(bytes.NewReader(resp.Body()), resp.Header().Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	return string(data), nil
}

// text returns the trimmed text of the first matched element.
func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.First().Text())
}

// collapse joins whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// restyLogger routes resty's internal messages into slog at debug level.
type restyLogger struct {
	log *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "origin", "resty")
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "origin", "resty")
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "origin", "resty")
}
