// internal/postprocess/errors.go
package postprocess

import "errors"

var (
	// ErrNotZip indicates the archive is not a valid ZIP file.
	ErrNotZip = errors.New("not a zip archive")

	// ErrPathTraversal indicates an archive entry or path would escape its root.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrNoVideoFile indicates no video file was found in a download.
	ErrNoVideoFile = errors.New("no video file found")

	// ErrCopyFailed indicates the file copy operation failed.
	ErrCopyFailed = errors.New("failed to copy file")

	// ErrInvalidEpub indicates the EPUB container or package document is malformed.
	ErrInvalidEpub = errors.New("invalid epub")

	// ErrEncoderUnavailable indicates the ffmpeg binary cannot be run.
	ErrEncoderUnavailable = errors.New("encoder unavailable")

	// ErrTranscodeFailed indicates ffmpeg exited with an error.
	ErrTranscodeFailed = errors.New("transcode failed")
)
