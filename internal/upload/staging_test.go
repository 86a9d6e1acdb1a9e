package upload

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	path, err := Save(dir, "paper.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "paperdigest-"))
	assert.Equal(t, ".pdf", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
}

func TestSaveDefaultsToTempDir(t *testing.T) {
	path, err := Save("", "notes.txt", strings.NewReader("x"))
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(path) })

	assert.Equal(t, filepath.Clean(os.TempDir()), filepath.Dir(path))
}

func TestSaveNoExtension(t *testing.T) {
	path, err := Save(t.TempDir(), "README", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "", filepath.Ext(path))
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestSaveRejectsOversizedUpload(t *testing.T) {
	dir := t.TempDir()

	_, err := Save(dir, "huge.bin", io.LimitReader(zeroReader{}, maxUploadBytes+10))
	require.Error(t, err)

	// The partial file must not be left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
