// internal/api/v1/types.go
package v1

import (
	"time"

	"github.com/vmunix/mediaportal/internal/library"
	"github.com/vmunix/mediaportal/internal/scheduler"
	"github.com/vmunix/mediaportal/internal/settings"
)

// settingsResponse is the response for GET /settings.
type settingsResponse struct {
	Path     string            `json:"path"`
	Settings settings.Settings `json:"settings"`
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

type setIntervalRequest struct {
	Minutes int `json:"minutes"`
}

type setGenresRequest struct {
	GenrePriorities map[string]float64 `json:"genre_priorities"`
}

// forceResponse is the response for POST /discovery/{category}/force.
type forceResponse struct {
	Category library.Category `json:"category"`
	Queued   bool             `json:"queued"`
	Woken    bool             `json:"woken"` // a running scheduler was asked to tick now
}

// RecordResponse is the API representation of a media record.
type RecordResponse struct {
	ID            int64            `json:"id"`
	Category      library.Category `json:"category"`
	Title         string           `json:"title"`
	Creator       string           `json:"creator"`
	Year          *int             `json:"year,omitempty"`
	Genre         string           `json:"genre,omitempty"`
	Rating        float64          `json:"rating,omitempty"`
	Description   string           `json:"description,omitempty"`
	FilePath      *string          `json:"file_path,omitempty"`
	ThumbnailPath *string          `json:"thumbnail_path,omitempty"`

	TotalPages      int    `json:"total_pages,omitempty"`
	Narrator        string `json:"narrator,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	Quality         string `json:"quality,omitempty"`
	Translation     string `json:"translation,omitempty"`
	SizeBytes       int64  `json:"size_bytes,omitempty"`

	Source    string    `json:"source"`
	SourceURL string    `json:"source_url,omitempty"`
	Score     float64   `json:"score,omitempty"` // fuzzy search similarity
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func recordToResponse(r *library.MediaRecord) RecordResponse {
	return RecordResponse{
		ID:              r.ID,
		Category:        r.Category,
		Title:           r.Title,
		Creator:         r.Creator,
		Year:            r.Year,
		Genre:           r.Genre,
		Rating:          r.Rating,
		Description:     r.Description,
		FilePath:        r.FilePath,
		ThumbnailPath:   r.ThumbnailPath,
		TotalPages:      r.TotalPages,
		Narrator:        r.Narrator,
		DurationSeconds: r.DurationSeconds,
		Quality:         r.Quality,
		Translation:     r.Translation,
		SizeBytes:       r.SizeBytes,
		Source:          r.Source,
		SourceURL:       r.SourceURL,
		AddedAt:         r.AddedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// ListRecordsResponse is the response for GET /records/{category}.
type ListRecordsResponse struct {
	Items  []RecordResponse `json:"items"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
	Query  string           `json:"query,omitempty"`
}

// EventResponse is the API representation of a logged event.
type EventResponse struct {
	ID         int64  `json:"id"`
	EventType  string `json:"event_type"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	OccurredAt string `json:"occurred_at"`
	Payload    any    `json:"payload,omitempty"`
}

// ListEventsResponse is the response for GET /events.
type ListEventsResponse struct {
	Items []EventResponse `json:"items"`
	Total int             `json:"total"`
}

// StatusResponse is the response for GET /status.
type StatusResponse struct {
	Status     string             `json:"status"`
	Enabled    bool               `json:"enabled"`
	Uptime     string             `json:"uptime"`
	Categories []scheduler.Status `json:"categories"`
	Records    map[string]int     `json:"records"`
}
