// internal/config/error.go
package config

import (
	"fmt"
	"slices"
	"strings"
)

// sectionOrder is the order sections appear in config.toml. Problems are
// reported in the same order so they read top to bottom against the file.
var sectionOrder = []string{
	"server", "database", "storage", "logging", "sources",
	"torrent", "encoder", "discovery", "maintenance",
}

// MissingVar is a ${VAR} reference that could not be resolved.
type MissingVar struct {
	Name    string // environment variable
	Key     string // dotted key holding the reference, e.g. torrent.qbittorrent.password
	Message string // text of a ${VAR:?message} reference
}

func (m MissingVar) String() string {
	s := "$" + m.Name + " is not set"
	if m.Message != "" {
		s += ": " + m.Message
	}
	if m.Key == "" {
		return s
	}
	return m.Key + ": " + s
}

// ConfigError collects everything wrong with a config file: unresolved
// environment variables and Validate failures, grouped by section.
type ConfigError struct {
	Path    string
	Missing []MissingVar
	Errors  []string // "section.key: message", as returned by Validate
}

// Sections lists the sections with at least one problem, in file order.
// Problems outside any known section are reported under "".
func (e *ConfigError) Sections() []string {
	seen := make(map[string]bool)
	for _, p := range e.problems() {
		seen[p.section] = true
	}
	var out []string
	for _, s := range append([]string{""}, sectionOrder...) {
		if seen[s] {
			out = append(out, s)
			delete(seen, s)
		}
	}
	rest := make([]string, 0, len(seen))
	for s := range seen {
		rest = append(rest, s)
	}
	slices.Sort(rest)
	return append(out, rest...)
}

// Section returns the problems in one section, keys relative to it.
func (e *ConfigError) Section(name string) []string {
	var out []string
	for _, p := range e.problems() {
		if p.section == name {
			out = append(out, p.text)
		}
	}
	return out
}

func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "config %s:", e.Path)
	for _, s := range e.Sections() {
		if s != "" {
			fmt.Fprintf(&b, "\n[%s]", s)
		}
		for _, p := range e.Section(s) {
			fmt.Fprintf(&b, "\n  - %s", p)
		}
	}
	return b.String()
}

// HasErrors returns true if there are any errors.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}

type problem struct {
	section string
	text    string
}

// problems lists unresolved variables first, then validation failures.
func (e *ConfigError) problems() []problem {
	out := make([]problem, 0, len(e.Missing)+len(e.Errors))
	for _, m := range e.Missing {
		section, rest := splitKey(m.Key)
		m.Key = rest
		out = append(out, problem{section, m.String()})
	}
	for _, msg := range e.Errors {
		key, text, ok := strings.Cut(msg, ": ")
		if !ok {
			out = append(out, problem{"", msg})
			continue
		}
		section, rest := splitKey(key)
		if rest == "" {
			out = append(out, problem{section, text})
			continue
		}
		out = append(out, problem{section, rest + ": " + text})
	}
	return out
}

// splitKey splits "torrent.rain.url" into "torrent" and "rain.url".
// Keys outside a known section stay whole under "".
func splitKey(key string) (section, rest string) {
	head, tail, _ := strings.Cut(key, ".")
	if slices.Contains(sectionOrder, head) {
		return head, tail
	}
	return "", key
}
