package source

import "errors"

var (
	// ErrUnexpectedStatus is returned when a page responds with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrNoResults is returned when a listing or search page has no usable items.
	ErrNoResults = errors.New("no results")

	// ErrNoDownloadLink is returned when a detail page has no usable download link.
	ErrNoDownloadLink = errors.New("no download link")

	// ErrFiltered is returned when a movie fails the year, rating or size filters.
	ErrFiltered = errors.New("filtered out")
)
