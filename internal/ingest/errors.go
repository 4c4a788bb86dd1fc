package ingest

import "errors"

var (
	// ErrMissingCover indicates a book candidate without a cover image URL.
	ErrMissingCover = errors.New("candidate has no cover image")

	// ErrEpubTooShort indicates an EPUB whose spine is below the page minimum.
	ErrEpubTooShort = errors.New("epub has too few pages")

	// ErrNoAudioFiles indicates an audiobook archive without audio tracks.
	ErrNoAudioFiles = errors.New("no audio files in archive")

	// ErrPrecondition indicates a dependency the category needs is unavailable.
	ErrPrecondition = errors.New("precondition failed")

	// ErrCategoryMismatch indicates the adapter and the store serve different categories.
	ErrCategoryMismatch = errors.New("adapter and store categories differ")
)
