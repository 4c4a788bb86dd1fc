package ingest_test

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	_ "modernc.org/sqlite"

	"github.com/vmunix/mediaportal/internal/events"
	"github.com/vmunix/mediaportal/internal/ingest"
	"github.com/vmunix/mediaportal/internal/ingest/mocks"
	"github.com/vmunix/mediaportal/internal/library"
	"github.com/vmunix/mediaportal/internal/migrations"
	srcmocks "github.com/vmunix/mediaportal/internal/source/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T, category library.Category) *library.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "open db")
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)

	schema, err := migrations.ForCategory(string(category))
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err, "apply schema")
	return library.NewStore(db, category)
}

// harness wires a coordinator to mocks, an in-memory store and a bus.
type harness struct {
	adapter  *srcmocks.MockAdapter
	fetcher  *mocks.MockFetcher
	torrents *mocks.MockTorrentDownloader
	encoder  *mocks.MockTranscoder
	store    *library.Store
	events   <-chan events.Event

	root    string
	uploads string
	temp    string
	coord   *ingest.Coordinator
}

func newHarness(t *testing.T, category library.Category) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	root := t.TempDir()

	h := &harness{
		adapter:  srcmocks.NewMockAdapter(ctrl),
		fetcher:  mocks.NewMockFetcher(ctrl),
		torrents: mocks.NewMockTorrentDownloader(ctrl),
		encoder:  mocks.NewMockTranscoder(ctrl),
		store:    newStore(t, category),
		root:     root,
		uploads:  filepath.Join(root, "uploads"),
		temp:     filepath.Join(root, "temp_torrents"),
	}
	h.adapter.EXPECT().Category().Return(category).AnyTimes()

	bus := events.NewBus(nil, testLogger())
	t.Cleanup(func() { _ = bus.Close() })
	h.events = bus.SubscribeAll(128)

	coord, err := ingest.New(ingest.Config{
		UploadsDir:      h.uploads,
		TempTorrentsDir: h.temp,
	}, ingest.Deps{
		Adapter:    h.adapter,
		Store:      h.store,
		Fetcher:    h.fetcher,
		Torrents:   h.torrents,
		Transcoder: h.encoder,
		Bus:        bus,
	}, testLogger())
	require.NoError(t, err)
	h.coord = coord
	return h
}

// eventTypes drains the events published so far.
func (h *harness) eventTypes() []string {
	var types []string
	for {
		select {
		case e := <-h.events:
			types = append(types, e.EventType())
		default:
			return types
		}
	}
}

// rolledBack returns the rollback events published so far.
func (h *harness) rolledBack() []*events.RecordRolledBack {
	var out []*events.RecordRolledBack
	for {
		select {
		case e := <-h.events:
			if rb, ok := e.(*events.RecordRolledBack); ok {
				out = append(out, rb)
			}
		default:
			return out
		}
	}
}

// files lists every regular file under the uploads directory, relative to root.
func (h *harness) files(t *testing.T) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(h.uploads, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(h.root, path)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	slices.Sort(out)
	return out
}

func (h *harness) count(t *testing.T) int {
	t.Helper()
	n, err := h.store.Count()
	require.NoError(t, err)
	return n
}

// writes returns a DownloadFile stub that stores data at the destination.
func writes(data []byte) func(ctx context.Context, rawURL, destPath, referer string) error {
	return func(_ context.Context, _, destPath, _ string) error {
		return os.WriteFile(destPath, data, 0o644)
	}
}

// failsAfterPartialWrite leaves a truncated file behind and reports failure.
func failsAfterPartialWrite(ctx context.Context, rawURL, destPath, referer string) error {
	if err := os.WriteFile(destPath, []byte("partial"), 0o644); err != nil {
		return err
	}
	return fmt.Errorf("GET %s: connection reset", rawURL)
}

func zipBytes(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	slices.Sort(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(entries[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// epubBytes builds a minimal EPUB whose spine has the given number of items.
func epubBytes(t *testing.T, pages int) []byte {
	t.Helper()
	var manifest, spine strings.Builder
	for i := range pages {
		fmt.Fprintf(&manifest, `<item id="c%d" href="c%d.xhtml" media-type="application/xhtml+xml"/>`, i, i)
		fmt.Fprintf(&spine, `<itemref idref="c%d"/>`, i)
	}
	container := `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`
	opf := `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <manifest>` + manifest.String() + `</manifest>
  <spine>` + spine.String() + `</spine>
</package>`
	return zipBytes(t, map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": container,
		"OEBPS/content.opf":      opf,
	})
}
