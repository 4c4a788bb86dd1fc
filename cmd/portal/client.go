package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vmunix/mediaportal/internal/scheduler"
	"github.com/vmunix/mediaportal/internal/settings"
)

// Client wraps HTTP calls to the portal daemon.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new portal API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError is the daemon's JSON error body.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *Client) do(method, path string, body any, result any, okCodes ...int) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !statusOK(resp.StatusCode, okCodes) {
		respBody, _ := io.ReadAll(resp.Body)
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error %d (%s): %s", resp.StatusCode, apiErr.Code, apiErr.Error)
		}
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func statusOK(code int, okCodes []int) bool {
	if len(okCodes) == 0 {
		return code == http.StatusOK
	}
	for _, ok := range okCodes {
		if code == ok {
			return true
		}
	}
	return false
}

func (c *Client) get(path string, result any) error {
	return c.do(http.MethodGet, path, nil, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.do(http.MethodPut, path, body, result)
}

// API response types (mirror server types)

type SettingsResponse struct {
	Path     string            `json:"path"`
	Settings settings.Settings `json:"settings"`
}

type ForceResponse struct {
	Category string `json:"category"`
	Queued   bool   `json:"queued"`
	Woken    bool   `json:"woken"`
}

type RecordResponse struct {
	ID              int64     `json:"id"`
	Category        string    `json:"category"`
	Title           string    `json:"title"`
	Creator         string    `json:"creator"`
	Year            *int      `json:"year,omitempty"`
	Genre           string    `json:"genre,omitempty"`
	Rating          float64   `json:"rating,omitempty"`
	Description     string    `json:"description,omitempty"`
	FilePath        *string   `json:"file_path,omitempty"`
	ThumbnailPath   *string   `json:"thumbnail_path,omitempty"`
	TotalPages      int       `json:"total_pages,omitempty"`
	Narrator        string    `json:"narrator,omitempty"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	Quality         string    `json:"quality,omitempty"`
	Translation     string    `json:"translation,omitempty"`
	SizeBytes       int64     `json:"size_bytes,omitempty"`
	Source          string    `json:"source"`
	SourceURL       string    `json:"source_url,omitempty"`
	Score           float64   `json:"score,omitempty"`
	AddedAt         time.Time `json:"added_at"`
}

type ListRecordsResponse struct {
	Items  []RecordResponse `json:"items"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
	Query  string           `json:"query,omitempty"`
}

type EventResponse struct {
	ID         int64          `json:"id"`
	EventType  string         `json:"event_type"`
	EntityType string         `json:"entity_type"`
	EntityID   int64          `json:"entity_id"`
	OccurredAt string         `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

type ListEventsResponse struct {
	Items []EventResponse `json:"items"`
	Total int             `json:"total"`
}

type StatusResponse struct {
	Status     string             `json:"status"`
	Enabled    bool               `json:"enabled"`
	Uptime     string             `json:"uptime"`
	Categories []scheduler.Status `json:"categories"`
	Records    map[string]int     `json:"records"`
}

// RecordQuery filters a record listing.
type RecordQuery struct {
	Search string
	Genre  string
	Limit  int
	Offset int
}

// EventQuery filters the event log.
type EventQuery struct {
	Limit    int
	Since    string // RFC 3339 time or a duration such as 2h
	Category string
}

// Client methods

func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get("/api/v1/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Settings() (*SettingsResponse, error) {
	var resp SettingsResponse
	if err := c.get("/api/v1/settings", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SetEnabled(enabled bool) (*SettingsResponse, error) {
	var resp SettingsResponse
	if err := c.put("/api/v1/settings/enabled", map[string]bool{"enabled": enabled}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SetInterval(category string, minutes int) (*SettingsResponse, error) {
	var resp SettingsResponse
	path := "/api/v1/settings/interval/" + url.PathEscape(category)
	if err := c.put(path, map[string]int{"minutes": minutes}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SetGenres(weights map[string]float64) (*SettingsResponse, error) {
	var resp SettingsResponse
	body := map[string]map[string]float64{"genre_priorities": weights}
	if err := c.put("/api/v1/settings/genres", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Force(category string) (*ForceResponse, error) {
	var resp ForceResponse
	path := "/api/v1/discovery/" + url.PathEscape(category) + "/force"
	if err := c.do(http.MethodPost, path, nil, &resp, http.StatusAccepted); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Records(category string, q RecordQuery) (*ListRecordsResponse, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("q", q.Search)
	}
	if q.Genre != "" {
		params.Set("genre", q.Genre)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}

	path := "/api/v1/records/" + url.PathEscape(category)
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp ListRecordsResponse
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Record(category string, id int64) (*RecordResponse, error) {
	var resp RecordResponse
	if err := c.get(fmt.Sprintf("/api/v1/records/%s/%d", url.PathEscape(category), id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Events(q EventQuery) (*ListEventsResponse, error) {
	params := url.Values{}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Since != "" {
		params.Set("since", q.Since)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}

	path := "/api/v1/events"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp ListEventsResponse
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RecordEvents(category string, id int64) (*ListEventsResponse, error) {
	var resp ListEventsResponse
	if err := c.get(fmt.Sprintf("/api/v1/events/%s/%d", url.PathEscape(category), id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
