package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vmunix/mediaportal/internal/library"
)

const (
	defaultRecordLimit = 50
	maxRecordLimit     = 500
)

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	store, ok := s.requireStore(w, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", defaultRecordLimit)
	offset := queryInt(r, "offset", 0)
	if limit < 0 || offset < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit and offset must be non-negative")
		return
	}
	if limit == 0 || limit > maxRecordLimit {
		limit = maxRecordLimit
	}

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		results, err := store.Search(q, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", err.Error())
			return
		}
		resp := ListRecordsResponse{
			Items: make([]RecordResponse, len(results)),
			Total: len(results),
			Limit: limit,
			Query: q,
		}
		for i, res := range results {
			resp.Items[i] = recordToResponse(res.Record)
			resp.Items[i].Score = res.Score
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	filter := library.RecordFilter{Limit: limit, Offset: offset}
	if genre := r.URL.Query().Get("genre"); genre != "" {
		filter.Genre = &genre
	}
	records, total, err := store.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", err.Error())
		return
	}

	resp := ListRecordsResponse{
		Items:  make([]RecordResponse, len(records)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for i, rec := range records {
		resp.Items[i] = recordToResponse(rec)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	store, ok := s.requireStore(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	rec, err := store.Get(id)
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Record not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recordToResponse(rec))
}
