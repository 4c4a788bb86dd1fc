package source

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(baseURL string) Config {
	return Config{BaseURL: baseURL, RetryWait: time.Millisecond}
}

// fakeSite serves canned pages keyed by path plus raw query.
type fakeSite struct {
	mu          sync.Mutex
	pages       map[string]string
	status      map[string]int
	contentType string
	hits        map[string]int
	forms       []url.Values
}

func newFakeSite(t *testing.T) (*fakeSite, *httptest.Server) {
	t.Helper()
	site := &fakeSite{
		pages:       make(map[string]string),
		status:      make(map[string]int),
		hits:        make(map[string]int),
		contentType: "text/html; charset=utf-8",
	}
	server := httptest.NewServer(site)
	t.Cleanup(server.Close)
	return site, server
}

func (s *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	s.mu.Lock()
	s.hits[key]++
	if r.Method == http.MethodPost {
		_ = r.ParseForm()
		s.forms = append(s.forms, r.PostForm)
	}
	code, hasCode := s.status[key]
	body, ok := s.pages[key]
	contentType := s.contentType
	s.mu.Unlock()

	if hasCode {
		w.WriteHeader(code)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = io.WriteString(w, body)
}

func (s *fakeSite) set(key, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[key] = body
}

func (s *fakeSite) fail(key string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[key] = code
}

func (s *fakeSite) hitCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

// page wraps body in a minimal HTML document.
func page(body string) string {
	return "<!DOCTYPE html><html><head><meta charset=\"utf-8\"></head><body>" + body + "</body></html>"
}
