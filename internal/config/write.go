// internal/config/write.go
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

//go:embed default_config.toml
var defaultConfig string

//go:embed config.toml.tmpl
var configTemplate string

// tomlEscaper escapes a value for a TOML basic string.
var tomlEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

var configTmpl = template.Must(template.New("config").Funcs(template.FuncMap{
	"str": func(s string) string { return `"` + tomlEscaper.Replace(s) + `"` },
	"dur": func(d time.Duration) string { return `"` + d.String() + `"` },
	"strs": func(ss []string) string {
		quoted := make([]string, len(ss))
		for i, s := range ss {
			quoted[i] = `"` + tomlEscaper.Replace(s) + `"`
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	},
}).Parse(configTemplate))

// WriteDefault writes the annotated default config, with its ${VAR}
// references intact, to path.
func WriteDefault(path string) error {
	return writeFileAtomic(path, []byte(defaultConfig))
}

// Render writes c as an annotated config.toml, one commented block per
// section. An unset [torrent.rain] table is emitted as a commented example.
func (c *Config) Render(w io.Writer) error {
	return configTmpl.Execute(w, c)
}

// Write renders c to path, replacing any existing file.
func (c *Config) Write(path string) error {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	return writeFileAtomic(path, buf.Bytes())
}

// Redacted returns a copy of c with credentials masked, for display.
func (c *Config) Redacted() *Config {
	cp := *c
	if c.Torrent.QBittorrent != nil {
		qb := *c.Torrent.QBittorrent
		if qb.Password != "" {
			qb.Password = "********"
		}
		cp.Torrent.QBittorrent = &qb
	}
	return &cp
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
