package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("photo.JPG"))
	assert.True(t, IsImageFile("dir/a.webp"))
	assert.False(t, IsImageFile("notes.txt"))
	assert.False(t, IsImageFile("noext"))
	assert.Equal(t, "png", GetFileExtension("A.PNG"))
}

func TestListAndExpand(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, EnsureDir(sub))
	for _, name := range []string{"b.png", "a.jpg", "readme.md", "sub/c.webp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	files, err := ListImageFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "sub", "c.webp"),
	}, files)

	loose := filepath.Join(dir, "readme.md")
	expanded, err := ExpandInputs([]string{loose, sub})
	require.NoError(t, err)
	assert.Equal(t, []string{loose, filepath.Join(sub, "c.webp")}, expanded)

	_, err = ExpandInputs([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)

	assert.True(t, DirExists(sub))
	assert.False(t, DirExists(loose))
	assert.False(t, DirExists(filepath.Join(dir, "missing")))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	assert.True(t, DirExists(dir))
	require.NoError(t, EnsureDir(dir))

	file := filepath.Join(dir, "f.png")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.ErrorIs(t, EnsureDir(file), ErrNotDirectory)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b_c.png", SanitizeFilename("a/b:c.png"))
	assert.Equal(t, "name.jpg", SanitizeFilename("  name.jpg. "))
	// Decomposed e + combining acute becomes the single composed rune
	assert.Equal(t, "caf\u00e9.png", SanitizeFilename("cafe\u0301.png"))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KiB", FormatFileSize(1536))
	assert.Equal(t, "0 B", FormatFileSize(-1))
}
