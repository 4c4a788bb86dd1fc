// internal/postprocess/sanitize_test.go
package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Normal Title", "Normal Title"},
		{"Title: Subtitle", "Title Subtitle"},
		{"../../etc/passwd", "etc passwd"},
		{"a\x00b", "ab"},
		{"Что? Где? Когда?", "Что Где Когда"},
		{"  dots... ", "dots"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "Мастер_и_Маргарита", ShortName("Мастер и Маргарита", 30))
	assert.Equal(t, "Война_и", ShortName("Война и мир", 7))
	assert.Equal(t, "a_b", ShortName("a/b", 30))
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath("/srv/uploads/books/1.epub", "/srv/uploads"))
	assert.NoError(t, ValidatePath("/srv/uploads", "/srv/uploads"))
	assert.ErrorIs(t, ValidatePath("/srv/uploads/../etc/passwd", "/srv/uploads"), ErrPathTraversal)
	assert.ErrorIs(t, ValidatePath("/srv/uploads-evil/x", "/srv/uploads"), ErrPathTraversal)
}
