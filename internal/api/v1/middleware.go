package v1

import (
	"net/http"

	"github.com/vmunix/mediaportal/internal/library"
)

// requireEventLog wraps a handler and returns 503 if the event log is not configured.
func (s *Server) requireEventLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.EventLog == nil {
			writeError(w, http.StatusServiceUnavailable, "NO_EVENT_LOG", "Event log not configured")
			return
		}
		next(w, r)
	}
}

// requireStore resolves the {category} path value to its record store.
func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) (*library.Store, bool) {
	c, err := pathCategory(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_CATEGORY", err.Error())
		return nil, false
	}
	store, ok := s.deps.Records[c]
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "CATEGORY_DISABLED", "Category "+string(c)+" is not configured")
		return nil, false
	}
	return store, true
}
