// Package source scrapes candidate media from external catalogue sites.
//
// Each category has one Adapter: flibusta for books, audioboo for audiobooks
// and kinorush for movies. Adapters never return errors; a nil candidate
// means nothing usable was found this cycle.
package source

import (
	"context"

	"github.com/vmunix/mediaportal/internal/library"
)

//go:generate mockgen -source=source.go -destination=mocks/adapter_mock.go -package=mocks

// Adapter suggests one candidate per call for its category.
type Adapter interface {
	// Category is the category the adapter feeds.
	Category() library.Category

	// PickGenre makes a weighted random choice among genres with a positive
	// weight, falling back to a uniform pick from the adapter's vocabulary.
	PickGenre(weights map[string]float64) string

	// Suggest scrapes one candidate. Returns nil if nothing is available or
	// the candidate has no usable download link.
	Suggest(ctx context.Context, q Query) *Candidate
}

// Query carries the genre and, for movies, the hard filters.
type Query struct {
	Genre string

	MinYear       int
	MinRating     float64
	MinFileSizeGB float64
}

// Candidate is an ephemeral suggestion scraped from a source page.
type Candidate struct {
	Category    library.Category
	Title       string
	Creator     string // author or director
	Year        int    // 0 when unknown
	Genre       string
	Description string
	Rating      float64
	CoverURL    string
	DownloadURL string
	SourceURL   string

	Narrator    string  // audiobooks
	Quality     string  // movies
	Translation string  // movies
	SizeGB      float64 // movies
}

// Torrent is one downloadable release listed on a movie page.
type Torrent struct {
	Quality     string
	Translation string
	SizeGB      float64
	URL         string
}
