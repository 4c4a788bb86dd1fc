package settings

import "errors"

var (
	// ErrInvalidInterval indicates an interval below one minute.
	ErrInvalidInterval = errors.New("interval must be at least 1 minute")
	// ErrUnknownCategory indicates a category with no settings keys.
	ErrUnknownCategory = errors.New("unknown category")
)
