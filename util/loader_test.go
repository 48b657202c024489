package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameFileName(t *testing.T) {
	assert.Equal(t, "frame-12.jpg", FrameFileName(12, ".jpg"))

	n, err := ParseFrameNumber("/out/frame-12.jpg")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = ParseFrameNumber("thumb-12.jpg")
	assert.Error(t, err)
	_, err = ParseFrameNumber("frame-x.jpg")
	assert.Error(t, err)
}

func TestLoadDirectoryImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame-10.jpg", "frame-2.png", "frame-1.webp", "notes.txt", "cover.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "frame-3.jpg"), 0o755))

	images, err := LoadDirectoryImageFiles(dir, true)
	require.NoError(t, err)
	require.Len(t, images, 3)

	assert.Equal(t, []int{1, 2, 10}, []int{images[0].Frame, images[1].Frame, images[2].Frame})
	assert.Equal(t, filepath.Join(dir, "frame-10.jpg"), images[2].Path)
	assert.Equal(t, []byte("frame-10.jpg"), images[2].Data)

	images, err = LoadDirectoryImageFiles(dir, false)
	require.NoError(t, err)
	assert.Nil(t, images[0].Data)

	_, err = LoadDirectoryImageFiles(filepath.Join(dir, "missing"), false)
	assert.Error(t, err)
}
