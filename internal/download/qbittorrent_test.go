package download

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQBittorrent is a minimal Web API v2 server.
type fakeQBittorrent struct {
	t        *testing.T
	mu       sync.Mutex
	logins   int
	sid      string
	torrents []map[string]any
	files    []map[string]any
	deleted  []string
	paused   []string
	uploaded []byte
}

func (f *fakeQBittorrent) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v2/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if r.FormValue("username") != "admin" || r.FormValue("password") != "secret" {
			_, _ = w.Write([]byte("Fails."))
			return
		}
		f.logins++
		f.sid = "sid-" + string(rune('0'+f.logins))
		http.SetCookie(w, &http.Cookie{Name: "SID", Value: f.sid, Path: "/"})
		_, _ = w.Write([]byte("Ok."))
	})
	mux.HandleFunc("GET /api/v2/app/version", f.authed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("v4.6.2"))
	}))
	mux.HandleFunc("POST /api/v2/torrents/add", f.authed(func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("torrents")
		require.NoError(f.t, err)
		data, _ := io.ReadAll(file)
		f.uploaded = data
		f.torrents = append(f.torrents, map[string]any{
			"hash": "abcdef0123", "name": "Film", "progress": 0.0, "state": "metaDL",
			"dlspeed": 0, "num_seeds": 0, "save_path": r.FormValue("savepath") + "/",
		})
		_, _ = w.Write([]byte("Ok."))
	}))
	mux.HandleFunc("GET /api/v2/torrents/info", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(f.t, w, f.torrents)
	}))
	mux.HandleFunc("GET /api/v2/torrents/files", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(f.t, w, f.files)
	}))
	mux.HandleFunc("POST /api/v2/torrents/pause", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.paused = append(f.paused, r.FormValue("hashes"))
	}))
	mux.HandleFunc("POST /api/v2/torrents/delete", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.deleted = append(f.deleted, r.FormValue("hashes")+":"+r.FormValue("deleteFiles"))
	}))
	return mux
}

func (f *fakeQBittorrent) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		c, err := r.Cookie("SID")
		if err != nil || c.Value != f.sid {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		h(w, r)
	}
}

func newQBittorrentTest(t *testing.T) (*fakeQBittorrent, *QBittorrentClient) {
	t.Helper()
	fake := &fakeQBittorrent{t: t}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	client := NewQBittorrentClient(server.URL+"/", "admin", "secret", testLogger())
	client.hashLookupDelay = time.Millisecond
	return fake, client
}

func TestQBittorrentClient_Ping(t *testing.T) {
	fake, client := newQBittorrentTest(t)

	require.NoError(t, client.Ping(context.Background()))
	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, 1, fake.logins, "login should happen once")
}

func TestQBittorrentClient_Ping_BadCredentials(t *testing.T) {
	_, client := newQBittorrentTest(t)
	client.password = "wrong"

	err := client.Ping(context.Background())
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestQBittorrentClient_Ping_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewQBittorrentClient(server.URL, "admin", "secret", testLogger())
	err := client.Ping(context.Background())
	assert.ErrorIs(t, err, ErrClientUnavailable)
}

func TestQBittorrentClient_ReloginOnForbidden(t *testing.T) {
	fake, client := newQBittorrentTest(t)
	require.NoError(t, client.Ping(context.Background()))

	// Server-side session expiry.
	fake.mu.Lock()
	fake.sid = "expired"
	fake.mu.Unlock()

	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, 2, fake.logins)
}

func TestQBittorrentClient_AddLocatesHashBySavePath(t *testing.T) {
	fake, client := newQBittorrentTest(t)

	hash, err := client.Add(context.Background(), []byte("d8:announce"), "/data/temp_torrents/movie_1_abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "abcdef0123", hash)
	assert.Equal(t, "d8:announce", string(fake.uploaded))
}

func TestQBittorrentClient_StatusAndFiles(t *testing.T) {
	fake, client := newQBittorrentTest(t)
	fake.torrents = []map[string]any{{
		"hash": "abcdef0123", "name": "Film", "progress": 0.42, "state": "downloading",
		"dlspeed": 1048576, "num_seeds": 12, "save_path": "/data/tmp/movie_1",
	}}
	fake.files = []map[string]any{
		{"name": "Film/Film.mkv", "size": 4000, "progress": 0.42},
		{"name": "Film/sample.mkv", "size": 10, "progress": 1},
	}

	st, err := client.Status(context.Background(), "ABCDEF0123")
	require.NoError(t, err)
	assert.InDelta(t, 42.0, st.Progress, 0.001)
	assert.Equal(t, StateDownloading, st.State)
	assert.Equal(t, int64(1048576), st.DownloadRate)
	assert.Equal(t, 12, st.Seeds)

	files, err := client.Files(context.Background(), "abcdef0123")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "/data/tmp/movie_1/Film/Film.mkv", files[0].Path)
	assert.Equal(t, int64(4000), files[0].Size)
}

func TestQBittorrentClient_StatusNotFound(t *testing.T) {
	_, client := newQBittorrentTest(t)

	_, err := client.Status(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTorrentNotFound)
}

func TestQBittorrentClient_PauseRemove(t *testing.T) {
	fake, client := newQBittorrentTest(t)

	require.NoError(t, client.Pause(context.Background(), "h1"))
	require.NoError(t, client.Remove(context.Background(), "h1", false))
	require.NoError(t, client.Remove(context.Background(), "h2", true))

	assert.Equal(t, []string{"h1"}, fake.paused)
	assert.Equal(t, []string{"h1:false", "h2:true"}, fake.deleted)
}

func TestMapQBittorrentState(t *testing.T) {
	tests := map[string]TorrentState{
		"uploading":    StateSeeding,
		"stalledUP":    StateSeeding,
		"pausedUP":     StateSeeding,
		"downloading":  StateDownloading,
		"stalledDL":    StateStalled,
		"metaDL":       StateMetadata,
		"error":        StateError,
		"pausedDL":     StatePaused,
		"somethingNew": StateUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, mapQBittorrentState(in), in)
	}
}

func TestMapRainState(t *testing.T) {
	assert.Equal(t, StateSeeding, mapRainState("Seeding"))
	assert.Equal(t, StateMetadata, mapRainState("Downloading Metadata"))
	assert.Equal(t, StatePaused, mapRainState("Stopped"))
	assert.Equal(t, StateUnknown, mapRainState(""))
}
