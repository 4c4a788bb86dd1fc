package v1

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/vmunix/mediaportal/internal/settings"
)

func (s *Server) getSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, settingsResponse{
		Path:     s.deps.Settings.Path(),
		Settings: s.deps.Settings.Load(),
	})
}

func (s *Server) setEnabled(w http.ResponseWriter, r *http.Request) {
	var req setEnabledRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "enabled is required")
		return
	}
	if err := s.deps.Settings.SetEnabled(*req.Enabled); err != nil {
		writeError(w, http.StatusInternalServerError, "SETTINGS_ERROR", err.Error())
		return
	}
	if *req.Enabled {
		s.wakeAll()
	}
	s.getSettings(w, r)
}

func (s *Server) setInterval(w http.ResponseWriter, r *http.Request) {
	c, err := pathCategory(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_CATEGORY", err.Error())
		return
	}
	var req setIntervalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if err := s.deps.Settings.SetInterval(c, req.Minutes); err != nil {
		if errors.Is(err, settings.ErrInvalidInterval) {
			writeError(w, http.StatusBadRequest, "INVALID_INTERVAL", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "SETTINGS_ERROR", err.Error())
		return
	}
	s.getSettings(w, r)
}

func (s *Server) setGenres(w http.ResponseWriter, r *http.Request) {
	var req setGenresRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	for genre, weight := range req.GenrePriorities {
		if genre == "" || weight < 0 {
			writeError(w, http.StatusBadRequest, "INVALID_WEIGHT",
				fmt.Sprintf("genre %q: weight must be non-negative", genre))
			return
		}
	}
	if err := s.deps.Settings.SetGenrePriorities(req.GenrePriorities); err != nil {
		writeError(w, http.StatusInternalServerError, "SETTINGS_ERROR", err.Error())
		return
	}
	s.getSettings(w, r)
}

func (s *Server) forceRun(w http.ResponseWriter, r *http.Request) {
	c, err := pathCategory(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_CATEGORY", err.Error())
		return
	}
	if err := s.deps.Settings.RequestForceRun(c); err != nil {
		writeError(w, http.StatusInternalServerError, "SETTINGS_ERROR", err.Error())
		return
	}

	woken := false
	for _, sched := range s.deps.Schedulers {
		if slices.Contains(sched.Categories(), c) {
			sched.Wake()
			woken = true
		}
	}
	writeJSON(w, http.StatusAccepted, forceResponse{Category: c, Queued: true, Woken: woken})
}

func (s *Server) wakeAll() {
	for _, sched := range s.deps.Schedulers {
		sched.Wake()
	}
}
