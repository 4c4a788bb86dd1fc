package v1

import (
	"net/http"
	"time"

	"github.com/vmunix/mediaportal/internal/library"
	"github.com/vmunix/mediaportal/internal/scheduler"
)

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	cfg := s.deps.Settings.Load()
	resp := StatusResponse{
		Status:     "ok",
		Enabled:    cfg.Enabled,
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		Categories: []scheduler.Status{},
		Records:    make(map[string]int, len(s.deps.Records)),
	}
	for _, sched := range s.deps.Schedulers {
		resp.Categories = append(resp.Categories, sched.Snapshot()...)
	}
	for _, c := range library.Categories {
		store, ok := s.deps.Records[c]
		if !ok {
			continue
		}
		n, err := store.Count()
		if err != nil {
			resp.Status = "degraded"
			continue
		}
		resp.Records[string(c)] = n
	}
	writeJSON(w, http.StatusOK, resp)
}
