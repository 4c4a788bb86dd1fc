package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediaportal/internal/library"
	"github.com/vmunix/mediaportal/internal/scheduler"
	"github.com/vmunix/mediaportal/internal/settings"
)

func TestClientStatus_Success(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/status").
		ExpectGET().
		RespondJSON(StatusResponse{
			Status:  "ok",
			Enabled: true,
			Uptime:  "1h2m0s",
			Categories: []scheduler.Status{
				{Category: library.CategoryBooks, Enabled: true, Cycles: 4, Ingested: 3},
			},
			Records: map[string]int{"books": 3},
		}).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL)
	status, err := client.Status()
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
	assert.True(t, status.Enabled)
	require.Len(t, status.Categories, 1)
	assert.Equal(t, library.CategoryBooks, status.Categories[0].Category)
	assert.Equal(t, 3, status.Records["books"])
}

func TestClientStatus_ServerError(t *testing.T) {
	srv := newMockServer(t).
		RespondError(http.StatusInternalServerError, "internal server error").
		Build()
	defer srv.Close()

	_, err := NewClient(srv.URL).Status()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "internal server error")
}

func TestClientStatus_ConnectionError(t *testing.T) {
	srv := newMockServer(t).Build()
	srv.Close()

	_, err := NewClient(srv.URL).Status()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}

func TestClient_APIErrorBody(t *testing.T) {
	srv := newMockServer(t).
		RespondJSONStatus(http.StatusBadRequest, apiError{Error: "interval must be positive", Code: "INVALID_INTERVAL"}).
		Build()
	defer srv.Close()

	_, err := NewClient(srv.URL).SetInterval("books", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "INVALID_INTERVAL")
	assert.Contains(t, err.Error(), "interval must be positive")
}

func TestClientSettings(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/settings").
		ExpectGET().
		RespondJSON(SettingsResponse{Path: "data/download_settings.json", Settings: settings.Defaults()}).
		Build()
	defer srv.Close()

	resp, err := NewClient(srv.URL).Settings()
	require.NoError(t, err)
	assert.Equal(t, "data/download_settings.json", resp.Path)
	assert.Equal(t, settings.Defaults(), resp.Settings)
}

func TestClientSetEnabled(t *testing.T) {
	s := settings.Defaults()
	s.Enabled = false
	srv := newMockServer(t).
		ExpectPath("/api/v1/settings/enabled").
		ExpectPUT().
		ExpectJSONBody(`{"enabled": false}`).
		RespondJSON(SettingsResponse{Settings: s}).
		Build()
	defer srv.Close()

	resp, err := NewClient(srv.URL).SetEnabled(false)
	require.NoError(t, err)
	assert.False(t, resp.Settings.Enabled)
}

func TestClientSetInterval(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/settings/interval/movies").
		ExpectPUT().
		ExpectJSONBody(`{"minutes": 240}`).
		RespondJSON(SettingsResponse{Settings: settings.Defaults()}).
		Build()
	defer srv.Close()

	_, err := NewClient(srv.URL).SetInterval("movies", 240)
	require.NoError(t, err)
}

func TestClientSetGenres(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/settings/genres").
		ExpectPUT().
		ExpectJSONBody(`{"genre_priorities": {"Фантастика": 2, "Детективы": 0.5}}`).
		RespondJSON(SettingsResponse{Settings: settings.Defaults()}).
		Build()
	defer srv.Close()

	_, err := NewClient(srv.URL).SetGenres(map[string]float64{"Фантастика": 2, "Детективы": 0.5})
	require.NoError(t, err)
}

func TestClientForce(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/discovery/audiobooks/force").
		ExpectPOST().
		RespondJSONStatus(http.StatusAccepted, ForceResponse{Category: "audiobooks", Queued: true, Woken: true}).
		Build()
	defer srv.Close()

	resp, err := NewClient(srv.URL).Force("audiobooks")
	require.NoError(t, err)
	assert.True(t, resp.Queued)
	assert.True(t, resp.Woken)
}

func TestClientRecords_Query(t *testing.T) {
	var rawQuery string
	srv := newMockServer(t).
		ExpectPath("/api/v1/records/movies").
		ExpectGET().
		Handler(func(w http.ResponseWriter, r *http.Request) {
			rawQuery = r.URL.RawQuery
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"items":[{"id":7,"category":"movies","title":"Дюна","creator":"Дени Вильнёв","source":"auto_discovery","score":0.93}],"total":1,"limit":5,"offset":0,"query":"дюна"}`))
		}).
		Build()
	defer srv.Close()

	resp, err := NewClient(srv.URL).Records("movies", RecordQuery{Search: "дюна", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, "limit=5&q=%D0%B4%D1%8E%D0%BD%D0%B0", rawQuery)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(7), resp.Items[0].ID)
	assert.InDelta(t, 0.93, resp.Items[0].Score, 0.001)
}

func TestClientRecord_NotFound(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/records/books/99").
		RespondJSONStatus(http.StatusNotFound, apiError{Error: "Record not found", Code: "NOT_FOUND"}).
		Build()
	defer srv.Close()

	_, err := NewClient(srv.URL).Record("books", 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestClientEvents_Filters(t *testing.T) {
	var rawQuery string
	srv := newMockServer(t).
		ExpectPath("/api/v1/events").
		Handler(func(w http.ResponseWriter, r *http.Request) {
			rawQuery = r.URL.RawQuery
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"items":[{"id":1,"event_type":"cycle.started","entity_type":"books","entity_id":0,"occurred_at":"2026-01-02T03:04:05Z","payload":{"genre":"Фантастика"}}],"total":1}`))
		}).
		Build()
	defer srv.Close()

	resp, err := NewClient(srv.URL).Events(EventQuery{Limit: 10, Since: "2h", Category: "books"})
	require.NoError(t, err)
	assert.Equal(t, "category=books&limit=10&since=2h", rawQuery)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Фантастика", resp.Items[0].Payload["genre"])
}

func TestClientRecordEvents(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/events/movies/7").
		ExpectGET().
		RespondJSON(ListEventsResponse{Items: []EventResponse{{ID: 3, EventType: "record.ingested"}}, Total: 1}).
		Build()
	defer srv.Close()

	resp, err := NewClient(srv.URL).RecordEvents("movies", 7)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
}
