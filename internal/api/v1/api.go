// Package v1 implements the admin REST API of the discovery daemon.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/vmunix/mediaportal/internal/events"
	"github.com/vmunix/mediaportal/internal/library"
	"github.com/vmunix/mediaportal/internal/scheduler"
	"github.com/vmunix/mediaportal/internal/settings"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// Scheduler is the part of a category scheduler the API drives.
// *scheduler.Scheduler implements it.
type Scheduler interface {
	Categories() []library.Category
	Snapshot() []scheduler.Status
	Wake()
}

var _ Scheduler = (*scheduler.Scheduler)(nil)

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Settings *settings.Store
	Records  map[library.Category]*library.Store

	// Optional dependencies
	EventLog   *events.EventLog
	Schedulers []Scheduler
}

// Validate checks that the required dependencies are set.
func (d ServerDeps) Validate() error {
	if d.Settings == nil {
		return fmt.Errorf("%w: Settings", ErrMissingDependency)
	}
	if len(d.Records) == 0 {
		return fmt.Errorf("%w: Records", ErrMissingDependency)
	}
	return nil
}

// Server is the v1 API server.
type Server struct {
	deps     ServerDeps
	registry *events.Registry
	started  time.Time
}

// NewWithDeps creates a new v1 API server with explicit dependencies.
func NewWithDeps(deps ServerDeps) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	return &Server{deps: deps, registry: events.DefaultRegistry(), started: time.Now()}, nil
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Settings
	mux.HandleFunc("GET /api/v1/settings", s.getSettings)
	mux.HandleFunc("PUT /api/v1/settings/enabled", s.setEnabled)
	mux.HandleFunc("PUT /api/v1/settings/interval/{category}", s.setInterval)
	mux.HandleFunc("PUT /api/v1/settings/genres", s.setGenres)

	// Discovery
	mux.HandleFunc("POST /api/v1/discovery/{category}/force", s.forceRun)

	// Records
	mux.HandleFunc("GET /api/v1/records/{category}", s.listRecords)
	mux.HandleFunc("GET /api/v1/records/{category}/{id}", s.getRecord)

	// Events
	mux.HandleFunc("GET /api/v1/events", s.requireEventLog(s.listEvents))
	mux.HandleFunc("GET /api/v1/events/{category}/{id}", s.requireEventLog(s.listRecordEvents))

	// System
	mux.HandleFunc("GET /api/v1/status", s.getStatus)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// pathID extracts the integer {id} from the URL path.
func pathID(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	if idStr == "" {
		return 0, errors.New("missing path parameter: id")
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// pathCategory extracts and validates the {category} path value.
func pathCategory(r *http.Request) (library.Category, error) {
	c, err := library.ParseCategory(r.PathValue("category"))
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, r.PathValue("category"))
	}
	return c, nil
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
