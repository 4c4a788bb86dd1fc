package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vmunix/mediaportal/internal/events"
)

const maxEventLimit = 1000

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit must be non-negative")
		return
	}
	if limit == 0 || limit > maxEventLimit {
		limit = maxEventLimit
	}

	var (
		raw []events.RawEvent
		err error
	)
	if since := r.URL.Query().Get("since"); since != "" {
		t, perr := parseSince(since)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "INVALID_SINCE", "since must be an RFC 3339 time or a duration such as 2h")
			return
		}
		raw, err = s.deps.EventLog.Since(t)
		if len(raw) > limit {
			raw = raw[len(raw)-limit:]
		}
	} else {
		raw, err = s.deps.EventLog.Recent(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}

	category := r.URL.Query().Get("category")
	resp := ListEventsResponse{Items: make([]EventResponse, 0, len(raw))}
	for _, e := range raw {
		if category != "" && e.EntityType != category {
			continue
		}
		resp.Items = append(resp.Items, s.eventToResponse(e))
	}
	resp.Total = len(resp.Items)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listRecordEvents(w http.ResponseWriter, r *http.Request) {
	c, err := pathCategory(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_CATEGORY", err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	raw, err := s.deps.EventLog.ForEntity(string(c), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}
	resp := ListEventsResponse{Items: make([]EventResponse, len(raw)), Total: len(raw)}
	for i, e := range raw {
		resp.Items[i] = s.eventToResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseSince accepts an absolute RFC 3339 time or a look-back duration.
func parseSince(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().Add(-d), nil
}

// eventToResponse decodes known event types into their concrete structs;
// anything else is passed through as a generic JSON object.
func (s *Server) eventToResponse(e events.RawEvent) EventResponse {
	resp := EventResponse{
		ID:         e.ID,
		EventType:  e.EventType,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		OccurredAt: e.OccurredAt.Format(time.RFC3339),
	}
	if typed, err := s.registry.Unmarshal(e); err == nil {
		resp.Payload = typed
		return resp
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(e.Payload), &payload); err == nil {
		resp.Payload = payload
	}
	return resp
}
