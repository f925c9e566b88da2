package photos_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presensi-app/presensi/internal/photos"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newStore(t *testing.T, maxBytes int64) (*photos.Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	at := time.UnixMilli(1709254801000)
	s, err := photos.NewStore(dir, maxBytes, photos.WithClock(func() time.Time { return at }))
	require.NoError(t, err)
	return s, dir
}

func TestSave_WritesImage(t *testing.T) {
	s, dir := newStore(t, 1<<20)

	ref, err := s.Save(7, "selfie.PNG", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "uploads/7-1709254801000-"), ref)
	assert.True(t, strings.HasSuffix(ref, ".png"), ref)

	got, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(ref, "uploads/")))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, got)
}

func TestSave_ExtensionFromContentWhenNameHasNone(t *testing.T) {
	s, _ := newStore(t, 0)

	ref, err := s.Save(7, "blob", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".png"), ref)
}

func TestSave_RejectsNonImage(t *testing.T) {
	s, dir := newStore(t, 1<<20)

	_, err := s.Save(7, "notes.jpg", strings.NewReader("just some text"))
	require.ErrorIs(t, err, photos.ErrNotImage)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSave_RejectsOversize(t *testing.T) {
	s, dir := newStore(t, 32)

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)
	_, err := s.Save(7, "big.png", bytes.NewReader(big))
	require.ErrorIs(t, err, photos.ErrTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemove(t *testing.T) {
	s, dir := newStore(t, 1<<20)

	ref, err := s.Save(7, "a.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	require.NoError(t, s.Remove(ref))
	require.NoError(t, s.Remove(ref), "removing twice is fine")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ErrorIs(t, s.Remove("uploads/../../etc/passwd"), photos.ErrBadRef)
	assert.ErrorIs(t, s.Remove("elsewhere/a.png"), photos.ErrBadRef)
}
