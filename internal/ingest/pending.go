package ingest

import (
	"os"
	"slices"
	"sync"
)

// PendingFiles tracks the paths written during an attempt. A failed attempt
// releases them; a committed one keeps them. Whichever of Release and Commit
// runs first wins, and later calls do nothing.
type PendingFiles struct {
	mu    sync.Mutex
	paths []string
	done  bool
}

// Add registers a file or directory. Register a path before writing to it so
// that a partial write is cleaned up too.
func (p *PendingFiles) Add(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done || slices.Contains(p.paths, path) {
		return
	}
	p.paths = append(p.paths, path)
}

// Drop removes path now and stops tracking it.
func (p *PendingFiles) Drop(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i := slices.Index(p.paths, path); i >= 0 {
		p.paths = slices.Delete(p.paths, i, i+1)
	}
	_ = os.RemoveAll(path)
}

// Len returns the number of tracked paths.
func (p *PendingFiles) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.paths)
}

// Commit keeps every tracked path.
func (p *PendingFiles) Commit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = true
	p.paths = nil
}

// Release removes the tracked paths, newest first, and returns how many
// existed. Only the first call removes anything.
func (p *PendingFiles) Release() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return 0
	}
	p.done = true

	removed := 0
	for _, path := range slices.Backward(p.paths) {
		if _, err := os.Lstat(path); err != nil {
			continue
		}
		if err := os.RemoveAll(path); err == nil {
			removed++
		}
	}
	p.paths = nil
	return removed
}
