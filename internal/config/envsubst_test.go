package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("PORTAL_TEST_KINORUSH", "https://kinorush.example")
	t.Setenv("PORTAL_TEST_EMPTY", "")

	tests := []struct {
		name    string
		content string
		want    string
		missing []MissingVar
	}{
		{
			name:    "set variable",
			content: "[sources]\nkinorush_url = \"${PORTAL_TEST_KINORUSH}\"",
			want:    "[sources]\nkinorush_url = \"https://kinorush.example\"",
		},
		{
			name:    "default when unset",
			content: "[sources]\nflibusta_url = \"${PORTAL_TEST_UNSET_FLIBUSTA:-http://flibusta.is}\"",
			want:    "[sources]\nflibusta_url = \"http://flibusta.is\"",
		},
		{
			name:    "default when empty",
			content: "[torrent.qbittorrent]\nusername = \"${PORTAL_TEST_EMPTY:-admin}\"",
			want:    "[torrent.qbittorrent]\nusername = \"admin\"",
		},
		{
			name:    "env overrides default",
			content: "kinorush_url = \"${PORTAL_TEST_KINORUSH:-https://kinorush.online}\"",
			want:    "kinorush_url = \"https://kinorush.example\"",
		},
		{
			name:    "required and empty",
			content: "[torrent.qbittorrent]\npassword = \"${PORTAL_TEST_EMPTY:?set the Web UI password}\"",
			want:    "[torrent.qbittorrent]\npassword = \"${PORTAL_TEST_EMPTY:?set the Web UI password}\"",
			missing: []MissingVar{{
				Name:    "PORTAL_TEST_EMPTY",
				Key:     "torrent.qbittorrent.password",
				Message: "set the Web UI password",
			}},
		},
		{
			name:    "missing in second table",
			content: "[server]\nhost = \"0.0.0.0\"\n\n[torrent.rain]\ndata_dir = \"${PORTAL_TEST_UNSET_RAIN_DIR}\"",
			want:    "[server]\nhost = \"0.0.0.0\"\n\n[torrent.rain]\ndata_dir = \"${PORTAL_TEST_UNSET_RAIN_DIR}\"",
			missing: []MissingVar{{Name: "PORTAL_TEST_UNSET_RAIN_DIR", Key: "torrent.rain.data_dir"}},
		},
		{
			name:    "top-level key",
			content: "title = \"${PORTAL_TEST_UNSET_TITLE}\"",
			want:    "title = \"${PORTAL_TEST_UNSET_TITLE}\"",
			missing: []MissingVar{{Name: "PORTAL_TEST_UNSET_TITLE", Key: "title"}},
		},
		{
			name:    "comment lines skipped",
			content: "[torrent.qbittorrent]\n# password = \"${PORTAL_TEST_UNSET_COMMENTED}\"\nurl = \"${PORTAL_TEST_KINORUSH}\"",
			want:    "[torrent.qbittorrent]\n# password = \"${PORTAL_TEST_UNSET_COMMENTED}\"\nurl = \"https://kinorush.example\"",
		},
		{
			name:    "several on one line",
			content: "[discovery]\ncategories = [\"${PORTAL_TEST_UNSET_A:-books}\", \"${PORTAL_TEST_UNSET_B}\"]",
			want:    "[discovery]\ncategories = [\"books\", \"${PORTAL_TEST_UNSET_B}\"]",
			missing: []MissingVar{{Name: "PORTAL_TEST_UNSET_B", Key: "discovery.categories"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, missing := substituteEnvVars(tt.content)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.missing, missing)
		})
	}
}
