package library

import "errors"

var (
	// ErrNotFound indicates the requested record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a record with the same title and creator exists.
	ErrDuplicate = errors.New("duplicate entry")

	// ErrConstraint indicates a check constraint violation.
	ErrConstraint = errors.New("constraint violation")

	// ErrUnknownCategory indicates a category name outside books, audiobooks, movies.
	ErrUnknownCategory = errors.New("unknown category")
)
