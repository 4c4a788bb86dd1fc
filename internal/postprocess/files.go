// internal/postprocess/files.go
package postprocess

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true,
	".wmv": true, ".flv": true, ".webm": true, ".m4v": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".m4a": true, ".m4b": true, ".ogg": true, ".opus": true,
	".flac": true, ".wav": true, ".aac": true, ".wma": true,
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true, ".bmp": true,
}

// IsVideoFile reports whether the path has a video extension.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsAudioFile reports whether the path has an audio extension.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsImageFile reports whether the path has an image extension.
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// FindAudioFiles returns every audio file under dir, sorted lexicographically by path.
// Unreadable entries are skipped.
func FindAudioFiles(dir string) []string {
	var files []string
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && IsAudioFile(path) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files
}

var coverBasenames = map[string]bool{
	"cover": true, "folder": true, "album": true, "front": true, "art": true,
}

// FindCoverImage picks a cover from an extracted archive.
// Preference: an exact basename such as cover.jpg, then a name containing
// "cover" or "folder", then the first image found. Returns "" when there is none.
func FindCoverImage(dir string) string {
	var images []string
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && IsImageFile(path) {
			images = append(images, path)
		}
		return nil
	})

	for _, img := range images {
		base := strings.ToLower(strings.TrimSuffix(filepath.Base(img), filepath.Ext(img)))
		if coverBasenames[base] {
			return img
		}
	}
	for _, img := range images {
		name := strings.ToLower(filepath.Base(img))
		if strings.Contains(name, "cover") || strings.Contains(name, "folder") {
			return img
		}
	}
	if len(images) > 0 {
		return images[0]
	}
	return ""
}

// FindLargestVideo finds the largest video file in a directory tree.
// Returns ErrNoVideoFile if no video files are found.
// Skips files with "sample" in the name.
func FindLargestVideo(dir string) (string, int64, error) {
	var largestPath string
	var largestSize int64

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}
		if info.IsDir() || !IsVideoFile(path) {
			return nil
		}
		if strings.Contains(strings.ToLower(info.Name()), "sample") {
			return nil
		}
		if info.Size() > largestSize {
			largestSize = info.Size()
			largestPath = path
		}
		return nil
	})
	if err != nil {
		return "", 0, fmt.Errorf("walk directory: %w", err)
	}
	if largestPath == "" {
		return "", 0, ErrNoVideoFile
	}
	return largestPath, largestSize, nil
}

// CopyFile copies src to dst, replacing any existing file.
// Creates the destination directory if it doesn't exist.
func CopyFile(src, dst string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("%w: create directory: %v", ErrCopyFailed, err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("%w: open source: %v", ErrCopyFailed, err)
	}
	defer func() { _ = srcFile.Close() }()

	dstFile, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("%w: create destination: %v", ErrCopyFailed, err)
	}
	defer func() { _ = dstFile.Close() }()

	size, err := io.Copy(dstFile, srcFile)
	if err != nil {
		_ = os.Remove(dst)
		return 0, fmt.Errorf("%w: copy content: %v", ErrCopyFailed, err)
	}
	if err := dstFile.Sync(); err != nil {
		return 0, fmt.Errorf("%w: sync: %v", ErrCopyFailed, err)
	}
	return size, nil
}
