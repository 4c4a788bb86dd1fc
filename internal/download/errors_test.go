package download

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	// Verify errors are distinct
	if errors.Is(ErrClientUnavailable, ErrAuthFailed) {
		t.Error("ErrClientUnavailable should not equal ErrAuthFailed")
	}
	if errors.Is(ErrStalled, ErrTimeout) {
		t.Error("ErrStalled should not equal ErrTimeout")
	}

	// Verify error messages are non-empty
	errs := []error{
		ErrClientUnavailable, ErrAuthFailed, ErrTorrentNotFound, ErrNotTorrentFile,
		ErrDownloadFailed, ErrStalled, ErrTimeout, ErrTorrentFailed, ErrInvalidTransition,
	}
	for _, err := range errs {
		if err.Error() == "" {
			t.Errorf("error %v should have a message", err)
		}
	}

	// Wrapped errors still match
	wrapped := fmt.Errorf("torrent abc: %w", ErrStalled)
	if !errors.Is(wrapped, ErrStalled) {
		t.Error("wrapped error should match ErrStalled")
	}
}
