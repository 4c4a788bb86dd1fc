package ingest

import (
	"errors"

	"github.com/vmunix/mediaportal/internal/library"
)

// SkipReason explains why an attempt ended without a record.
type SkipReason string

const (
	DuplicateFound     SkipReason = "duplicate_found"
	NoDownloadLink     SkipReason = "no_download_link"
	ValidationFailed   SkipReason = "validation_failed"
	DownloadFailed     SkipReason = "download_failed"
	NoCandidate        SkipReason = "no_candidate"
	PreconditionFailed SkipReason = "precondition_failed"
)

// Outcome is the result of one attempt: a committed record, or the reason
// there is none.
type Outcome struct {
	Record *library.MediaRecord
	Reason SkipReason
	Detail string
}

// Ingested reports whether the attempt committed a record.
func (o Outcome) Ingested() bool { return o.Record != nil }

// skipError tags a materialisation failure with the reason it is reported under.
type skipError struct {
	reason SkipReason
	err    error
}

func (e *skipError) Error() string { return string(e.reason) + ": " + e.err.Error() }
func (e *skipError) Unwrap() error { return e.err }

func skip(reason SkipReason, err error) error {
	return &skipError{reason: reason, err: err}
}

// reasonOf returns the reason carried by err. Untagged errors count as
// download failures.
func reasonOf(err error) SkipReason {
	var se *skipError
	if errors.As(err, &se) {
		return se.reason
	}
	return DownloadFailed
}
