// Package settings persists the operator-editable discovery settings as a JSON file.
package settings

import (
	"github.com/vmunix/mediaportal/internal/library"
)

// Default values applied to absent keys.
const (
	DefaultIntervalMinutes = 60
	DefaultMinFileSizeGB   = 3.0
	DefaultMinRating       = 6.0
	DefaultMinYear         = 2015
)

// Settings is the discovery configuration read at every scheduler tick.
type Settings struct {
	Enabled                  bool               `json:"enabled"`
	IntervalMinutes          int                `json:"interval_minutes"`
	BookIntervalMinutes      *int               `json:"book_interval_minutes,omitempty"`
	AudiobookIntervalMinutes *int               `json:"audiobook_interval_minutes,omitempty"`
	MovieIntervalMinutes     *int               `json:"movie_interval_minutes,omitempty"`
	GenrePriorities          map[string]float64 `json:"genre_priorities"`
	ForceRunBooks            bool               `json:"force_run_books"`
	ForceRunAudiobooks       bool               `json:"force_run_audiobooks"`
	ForceRunMovies           bool               `json:"force_run"`
	MinFileSizeGB            float64            `json:"min_file_size_gb"`
	MinRating                float64            `json:"min_rating"`
	MinYear                  int                `json:"min_year"`
}

// Defaults returns the settings used when the file is absent or unreadable.
func Defaults() Settings {
	return Settings{
		Enabled:         true,
		IntervalMinutes: DefaultIntervalMinutes,
		GenrePriorities: map[string]float64{"Фантастика": 1},
		MinFileSizeGB:   DefaultMinFileSizeGB,
		MinRating:       DefaultMinRating,
		MinYear:         DefaultMinYear,
	}
}

// IntervalFor returns the category's interval in minutes, falling back to
// the global interval when no override is set.
func (s Settings) IntervalFor(c library.Category) int {
	var override *int
	switch c {
	case library.CategoryBooks:
		override = s.BookIntervalMinutes
	case library.CategoryAudiobooks:
		override = s.AudiobookIntervalMinutes
	case library.CategoryMovies:
		override = s.MovieIntervalMinutes
	}
	if override != nil && *override > 0 {
		return *override
	}
	if s.IntervalMinutes > 0 {
		return s.IntervalMinutes
	}
	return DefaultIntervalMinutes
}

// ForceRequested reports whether a one-shot run is pending for the category.
func (s Settings) ForceRequested(c library.Category) bool {
	switch c {
	case library.CategoryBooks:
		return s.ForceRunBooks
	case library.CategoryAudiobooks:
		return s.ForceRunAudiobooks
	case library.CategoryMovies:
		return s.ForceRunMovies
	}
	return false
}

// forceKey returns the JSON key holding the category's force flag.
func forceKey(c library.Category) (string, error) {
	switch c {
	case library.CategoryBooks:
		return "force_run_books", nil
	case library.CategoryAudiobooks:
		return "force_run_audiobooks", nil
	case library.CategoryMovies:
		return "force_run", nil
	}
	return "", ErrUnknownCategory
}

// intervalKey returns the JSON key holding the category's interval override.
func intervalKey(c library.Category) (string, error) {
	switch c {
	case library.CategoryBooks:
		return "book_interval_minutes", nil
	case library.CategoryAudiobooks:
		return "audiobook_interval_minutes", nil
	case library.CategoryMovies:
		return "movie_interval_minutes", nil
	}
	return "", ErrUnknownCategory
}
