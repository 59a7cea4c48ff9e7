package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-cropper/internal/utils"
	"github.com/menta2k/image-cropper/pkg/types"
)

func TestDirSinkPut(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewDirSink(filepath.Join(dir, "out"))
	require.NoError(t, err)

	key, err := sink.Put(context.Background(), types.Artifact{Name: "batch_1_a.png", Data: []byte("data")})
	require.NoError(t, err)
	assert.Equal(t, "batch_1_a.png", key)

	got, err := os.ReadFile(filepath.Join(dir, "out", "batch_1_a.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestDirSinkRejectsTraversal(t *testing.T) {
	sink, err := NewDirSink(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../escape.png", "a/../../escape.png"} {
		_, err := sink.Put(context.Background(), types.Artifact{Name: name})
		assert.Error(t, err, name)
	}

	key, err := sink.Put(context.Background(), types.Artifact{Name: "/abs/../x.png", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "x.png", key)
}

func TestDirSinkHonorsContext(t *testing.T) {
	sink, err := NewDirSink(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sink.Put(ctx, types.Artifact{Name: "a.png"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDirSinkRequiresPath(t *testing.T) {
	_, err := NewDirSink("  ")
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = NewDirSink(file)
	assert.ErrorIs(t, err, utils.ErrNotDirectory)
}

func TestDirSinkCreatesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewDirSink(dir)
	require.NoError(t, err)

	key, err := sink.Put(context.Background(), types.Artifact{Name: "nested/deeper/a.png", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "nested/deeper/a.png", key)
	assert.FileExists(t, filepath.Join(dir, "nested", "deeper", "a.png"))
}

func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()
	for _, name := range []string{"a", "b", "c"} {
		_, err := sink.Put(context.Background(), types.Artifact{Name: name})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "c"}, sink.Names())
	assert.Len(t, sink.Artifacts(), 3)
}

func TestSinkFunc(t *testing.T) {
	var got string
	sink := SinkFunc(func(_ context.Context, a types.Artifact) (string, error) {
		got = a.Name
		return "key", nil
	})
	key, err := sink.Put(context.Background(), types.Artifact{Name: "n"})
	require.NoError(t, err)
	assert.Equal(t, "key", key)
	assert.Equal(t, "n", got)
}
