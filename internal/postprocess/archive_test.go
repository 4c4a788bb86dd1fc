package postprocess

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnzip(t *testing.T) {
	tmp := t.TempDir()
	archive := filepath.Join(tmp, "book.zip")
	writeZip(t, archive, map[string]string{
		"Part 1/01.mp3": "one",
		"Part 1/02.mp3": "two",
		"cover.jpg":     "img",
	})

	dest := filepath.Join(tmp, "audiobook_1_Title")
	got, err := Unzip(archive, dest)
	require.NoError(t, err)
	assert.Equal(t, dest, got)

	data, err := os.ReadFile(filepath.Join(dest, "Part 1", "02.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
	assert.Len(t, FindAudioFiles(dest), 2)
	assert.Equal(t, filepath.Join(dest, "cover.jpg"), FindCoverImage(dest))
}

func TestUnzip_NotZip(t *testing.T) {
	tmp := t.TempDir()
	bogus := writeFile(t, tmp, "page.zip", "<html>not an archive</html>")

	_, err := Unzip(bogus, filepath.Join(tmp, "out"))
	assert.ErrorIs(t, err, ErrNotZip)
}

func TestUnzip_RejectsTraversal(t *testing.T) {
	tmp := t.TempDir()
	archive := filepath.Join(tmp, "evil.zip")
	writeZip(t, archive, map[string]string{
		"ok.mp3":        "fine",
		"../escaped.sh": "bad",
	}, "ok.mp3", "../escaped.sh")

	dest := filepath.Join(tmp, "out")
	_, err := Unzip(archive, dest)
	require.ErrorIs(t, err, ErrPathTraversal)

	_, statErr := os.Stat(filepath.Join(tmp, "escaped.sh"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(dest, "ok.mp3"))
	assert.True(t, os.IsNotExist(statErr), "nothing is extracted from a rejected archive")
}
