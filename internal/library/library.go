// Package library persists discovered media records, one SQLite database per category.
package library

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Category is a content category with its own store, adapter and schedule.
type Category string

const (
	CategoryBooks      Category = "books"
	CategoryAudiobooks Category = "audiobooks"
	CategoryMovies     Category = "movies"
)

// Categories lists every category in scheduling order.
var Categories = []Category{CategoryBooks, CategoryAudiobooks, CategoryMovies}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryBooks, CategoryAudiobooks, CategoryMovies:
		return true
	}
	return false
}

// ParseCategory converts a string to a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

// SourceAutoDiscovery marks records created by the discovery pipeline.
const SourceAutoDiscovery = "auto_discovery"

// MediaRecord is a book, audiobook or movie known to the portal.
type MediaRecord struct {
	ID            int64
	Category      Category
	Title         string
	Creator       string // author or director
	Year          *int
	Genre         string
	Rating        float64
	Description   string
	FilePath      *string
	ThumbnailPath *string

	// Category-specific fields.
	TotalPages      int    // books
	Narrator        string // audiobooks
	DurationSeconds int    // audiobooks
	Quality         string // movies
	Translation     string // movies
	SizeBytes       int64  // movies

	Source    string
	SourceURL string
	AddedAt   time.Time
	UpdatedAt time.Time
}

// HasFile reports whether the primary file has been recorded.
func (r *MediaRecord) HasFile() bool {
	return r.FilePath != nil && *r.FilePath != ""
}

// RecordFilter specifies criteria for listing records.
type RecordFilter struct {
	Title   *string
	Creator *string
	Genre   *string
	Limit   int
	Offset  int
}

// NormalizeTitle canonicalizes a scraped title or name: NFC form, trimmed,
// inner whitespace collapsed. Both the duplicate check and inserts use it.
func NormalizeTitle(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}
