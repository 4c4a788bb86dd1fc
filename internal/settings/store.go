package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmunix/mediaportal/internal/library"
)

// Store reads and writes the settings file.
// Writes patch individual keys so that keys unknown to this package survive.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewStore creates a store backed by the JSON file at path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With("component", "settings"),
	}
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the current settings. A missing or unparsable file yields
// the defaults; keys absent from the file keep their default values.
func (s *Store) Load() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() Settings {
	cfg := Defaults()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read settings, using defaults", "path", s.path, "error", err)
		}
		return cfg
	}
	// Decoding merges into an existing map, so the default weights are
	// only restored when the file has no genre_priorities key.
	cfg.GenrePriorities = nil
	if err := json.Unmarshal(data, &cfg); err != nil {
		s.logger.Warn("failed to parse settings, using defaults", "path", s.path, "error", err)
		return Defaults()
	}
	if cfg.GenrePriorities == nil {
		cfg.GenrePriorities = Defaults().GenrePriorities
	}
	return cfg
}

// ConsumeForceFlag clears the category's one-shot force flag.
// Callers proceed with the forced run even when this returns an error.
func (s *Store) ConsumeForceFlag(c library.Category) error {
	key, err := forceKey(c)
	if err != nil {
		return err
	}
	if err := s.patch(key, false); err != nil {
		s.logger.Error("failed to reset force flag", "key", key, "error", err)
		return err
	}
	return nil
}

// RequestForceRun sets the category's one-shot force flag.
func (s *Store) RequestForceRun(c library.Category) error {
	key, err := forceKey(c)
	if err != nil {
		return err
	}
	return s.patch(key, true)
}

// SetInterval stores the category's interval override in minutes.
func (s *Store) SetInterval(c library.Category, minutes int) error {
	if minutes < 1 {
		return fmt.Errorf("set %s interval to %d: %w", c, minutes, ErrInvalidInterval)
	}
	key, err := intervalKey(c)
	if err != nil {
		return err
	}
	return s.patch(key, minutes)
}

// SetEnabled toggles discovery for all categories.
func (s *Store) SetEnabled(enabled bool) error {
	return s.patch("enabled", enabled)
}

// SetGenrePriorities replaces the genre weight table.
func (s *Store) SetGenrePriorities(weights map[string]float64) error {
	return s.patch("genre_priorities", weights)
}

// patch rewrites a single top-level key, preserving every other key.
func (s *Store) patch(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := map[string]json.RawMessage{}
	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &doc); err != nil {
			// An unparsable file is replaced by defaults plus the new value.
			doc, err = defaultsDocument()
			if err != nil {
				return err
			}
		}
	case os.IsNotExist(err):
		if doc, err = defaultsDocument(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("read settings: %w", err)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	doc[key] = raw

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return writeAtomic(s.path, out)
}

func defaultsDocument() (map[string]json.RawMessage, error) {
	data, err := json.Marshal(Defaults())
	if err != nil {
		return nil, err
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// writeAtomic writes data to a temp file in the target directory and renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp settings: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
