package postprocess

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Unzip extracts archivePath into destDir and returns destDir.
// Entries that would land outside destDir are rejected with ErrPathTraversal
// before anything is written.
func Unzip(archivePath, destDir string) (string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return "", fmt.Errorf("%s: %w", archivePath, ErrNotZip)
		}
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		if err := ValidatePath(filepath.Join(destDir, f.Name), destDir); err != nil {
			return "", fmt.Errorf("entry %q: %w", f.Name, err)
		}
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("create extract dir: %w", err)
	}
	for _, f := range r.File {
		if err := extractEntry(f, filepath.Join(destDir, f.Name)); err != nil {
			return "", err
		}
	}
	return destDir, nil
}

func extractEntry(f *zip.File, target string) error {
	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create dir for %q: %w", f.Name, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %q: %w", f.Name, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create %q: %w", target, err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("extract %q: %w", f.Name, err)
	}
	return nil
}
